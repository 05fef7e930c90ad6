package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/crucial707/school-issues/internal/auth"
	"github.com/crucial707/school-issues/internal/config"
	"github.com/crucial707/school-issues/internal/db"
	"github.com/crucial707/school-issues/internal/issues"
	"github.com/crucial707/school-issues/internal/logging"
	"github.com/crucial707/school-issues/internal/middleware"
	"github.com/crucial707/school-issues/internal/repo"
	"github.com/crucial707/school-issues/internal/router"
	"github.com/crucial707/school-issues/internal/session"
	"github.com/crucial707/school-issues/internal/web"
)

const sweepSpec = "@every 10m"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database FIRST
	conn, dialect, err := db.Connect(ctx, db.Options{
		Driver:       cfg.DBDriver,
		Path:         cfg.DBPath,
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		Name:         cfg.DBName,
		User:         cfg.DBUser,
		Password:     cfg.DBPass,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	users := repo.NewUserRepo(conn, dialect, auth.NewHasher(cfg.PasswordPepper))
	if err := users.Init(ctx); err != nil {
		return err
	}
	log.Info("credential store ready", "driver", dialect.String())

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessions, closeSessions, err := newSessionStore(cfg, ttl, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	srv := &web.Server{
		Router:        router.New(users, issues.NewMemoryStore(), log),
		Sessions:      sessions,
		Signer:        auth.NewCookieSigner([]byte(cfg.SessionSecret), ttl),
		Log:           log,
		SecureCookies: cfg.TLSEnabled(),

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}
	if cfg.AuthRateLimitPerMin > 0 {
		limiter := middleware.AuthRateLimiter(cfg.AuthRateLimitPerMin)
		stopPrune, err := pruneLimiter(limiter, log)
		if err != nil {
			return err
		}
		defer stopPrune()
		srv.AuthLimiter = limiter
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", httpSrv.Addr, "tls", cfg.TLSEnabled())
		if cfg.TLSEnabled() {
			errCh <- httpSrv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// newSessionStore builds the configured session backend and returns a
// function releasing its resources.
func newSessionStore(cfg config.Config, ttl time.Duration, log *slog.Logger) (session.Store, func(), error) {
	if cfg.SessionBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Info("using redis sessions", "addr", cfg.RedisAddr)
		return session.NewRedisStore(rdb, ttl), func() { rdb.Close() }, nil
	}

	store := session.NewMemoryStore()
	sweeper, err := session.StartSweeper(store, ttl, sweepSpec, log)
	if err != nil {
		return nil, nil, err
	}
	return store, sweeper.Stop, nil
}

// pruneLimiter drops refilled rate limit buckets on the sweep schedule.
func pruneLimiter(l *middleware.IPRateLimiter, log *slog.Logger) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(sweepSpec, func() {
		if n := l.Prune(time.Now()); n > 0 {
			log.Info("pruned rate limit buckets", "count", n, "remaining", l.Len())
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
