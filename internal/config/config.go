package config

import (
	"errors"
	"os"
	"strconv"
)

const (
	defaultSessionSecret  = "supersecretkey"
	defaultPasswordPepper = "school-issues"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". When "prod", SESSION_SECRET and PASSWORD_PEPPER must be set.
	Env string

	// DBDriver is "sqlite" (default, file-backed at DBPath) or "postgres".
	DBDriver string
	DBPath   string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// SessionSecret signs the session cookie.
	SessionSecret string
	// SessionTTLHours is the idle lifetime of a session in hours (default 24, minimum 1).
	SessionTTLHours int
	// SessionBackend is "memory" (default) or "redis".
	SessionBackend string
	RedisAddr      string

	// PasswordPepper is the application-wide salt of the password digest.
	// Changing it invalidates every stored password.
	PasswordPepper string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// TrustProxyHeaders lets X-Forwarded-For / X-Real-IP override the client address.
	TrustProxyHeaders bool

	// AuthRateLimitPerMin caps login and signup posts per client IP. 0 disables the limiter.
	AuthRateLimitPerMin int
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8501"),
		Env:  getEnv("ENV", "dev"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBPath:   getEnv("DB_PATH", "users.db"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "schoolissues"),
		DBUser: getEnv("DB_USER", "schoolissues"),
		DBPass: getEnv("DB_PASS", "schoolissues"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		SessionSecret:   getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),
		SessionBackend:  getEnv("SESSION_BACKEND", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),

		PasswordPepper: getEnv("PASSWORD_PEPPER", defaultPasswordPepper),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		TrustProxyHeaders:   getEnv("TRUST_PROXY_HEADERS", "false") == "true",
		AuthRateLimitPerMin: getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 0),
	}
}

// Validate rejects settings that are unsafe or unusable.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return errors.New("DB_DRIVER must be sqlite or postgres")
	}
	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return errors.New("SESSION_BACKEND must be memory or redis")
	}
	if c.SessionTTLHours < 1 {
		return errors.New("SESSION_TTL_HOURS must be at least 1")
	}
	if c.DBMaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Env == "prod" {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be set in prod")
		}
		if c.PasswordPepper == defaultPasswordPepper {
			return errors.New("PASSWORD_PEPPER must be set in prod")
		}
	}
	return nil
}

// TLSEnabled reports whether both TLS files are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
