package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/school-issues/internal/auth"
	"github.com/crucial707/school-issues/internal/session"
)

// CookieName is the name of the session cookie.
const CookieName = "school_issues_session"

type holderKey struct{}

func withSessionHolder(ctx context.Context, h *sessionHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// Sessions loads the caller's session from the signed cookie, or starts a
// new one on the login page, and puts it into the request context. The
// cookie is re-signed once less than half its lifetime remains, so only
// inactivity ends a session. Handlers that change the session must save it
// to the store before responding.
func Sessions(store session.Store, signer *auth.CookieSigner, secure bool, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			now := time.Now()

			s, expires := load(ctx, r, store, signer, log)
			if s == nil {
				s = session.New(now)
			}
			if expires.Sub(now) < signer.TTL()/2 {
				token, err := signer.Sign(s.ID)
				if err != nil {
					log.ErrorContext(ctx, "sign session cookie", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(signer.TTL().Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			s.LastSeen = now
			if err := store.Save(ctx, s); err != nil {
				log.ErrorContext(ctx, "save session", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if h, ok := ctx.Value(holderKey{}).(*sessionHolder); ok {
				h.s = s
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(ctx, s)))
		})
	}
}

// load returns the stored session named by a valid cookie and the cookie's
// expiry, or nil and the zero time.
func load(ctx context.Context, r *http.Request, store session.Store, signer *auth.CookieSigner, log *slog.Logger) (*session.Session, time.Time) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, time.Time{}
	}
	id, expires, err := signer.Parse(c.Value)
	if err != nil {
		return nil, time.Time{}
	}
	s, err := store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			log.ErrorContext(ctx, "load session", "error", err)
		}
		return nil, time.Time{}
	}
	return s, expires
}
