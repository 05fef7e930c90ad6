package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/school-issues/internal/session"
)

// responseWriter wraps http.ResponseWriter to capture status and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// RequestLog logs each request with request_id, method, path, status, duration, and size.
// Use after RequestID middleware so the ID is available. Requests served
// inside a session also carry its page and, once logged in, the username.
func RequestLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			holder := &sessionHolder{}
			next.ServeHTTP(wrap, r.WithContext(withSessionHolder(r.Context(), holder)))

			attrs := []any{
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrap.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"size", wrap.size,
			}
			if s := holder.s; s != nil {
				attrs = append(attrs, "page", string(s.Page))
				if s.LoggedIn {
					attrs = append(attrs, "username", s.Username)
				}
			}
			log.Info("request", attrs...)
		})
	}
}

// sessionHolder lets the session middleware, which runs further down the
// chain, report the session back to RequestLog.
type sessionHolder struct {
	s *session.Session
}
