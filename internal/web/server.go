// Package web serves the issue desk pages.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/school-issues/internal/auth"
	"github.com/crucial707/school-issues/internal/middleware"
	"github.com/crucial707/school-issues/internal/router"
	"github.com/crucial707/school-issues/internal/session"
)

type Server struct {
	Router   *router.Router
	Sessions session.Store
	Signer   *auth.CookieSigner
	Log      *slog.Logger

	// SecureCookies marks the session cookie Secure and enables HSTS.
	SecureCookies bool
	// AuthLimiter, when set, rate limits login and signup posts.
	AuthLimiter *middleware.IPRateLimiter
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// Handler builds the chi route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLog(s.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(s.SecureCookies))

	// Health and metrics (no session)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(s.Sessions, s.Signer, s.SecureCookies, s.Log))

		r.Get("/", s.current)
		r.Get("/login", s.show(session.PageLogin))
		r.Get("/signup", s.show(session.PageSignup))
		r.Get("/issues/new", s.show(session.PageSubmitIssue))
		r.Get("/issues", s.show(session.PageMyIssues))

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
			r.Post("/menu", s.selectMenu)
			r.Post("/logout", s.logout)
			r.Post("/issues", s.submitIssue)

			r.Group(func(r chi.Router) {
				if s.AuthLimiter != nil {
					r.Use(s.AuthLimiter.Middleware)
				}
				r.Post("/login", s.login)
				r.Post("/signup", s.signup)
			})
		})
	})

	return r
}

// pagePaths maps each page to the URL that shows it.
var pagePaths = map[session.Page]string{
	session.PageLogin:       "/login",
	session.PageSignup:      "/signup",
	session.PageSubmitIssue: "/issues/new",
	session.PageMyIssues:    "/issues",
}

// PathFor returns the URL of page.
func PathFor(page session.Page) string {
	if p, ok := pagePaths[page]; ok {
		return p
	}
	return "/login"
}
