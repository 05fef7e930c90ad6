package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieSigner issues and verifies the signed token stored in the session
// cookie. The token carries only the session ID and its expiry.
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCookieSigner(secret []byte, ttl time.Duration) *CookieSigner {
	return &CookieSigner{secret: secret, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (s *CookieSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns an HS256 token for sessionID.
func (s *CookieSigner) Sign(sessionID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the session ID it carries and when the
// token expires.
func (s *CookieSigner) Parse(token string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" || claims.ExpiresAt == nil {
		return "", time.Time{}, ErrInvalidCookie
	}
	return claims.ID, claims.ExpiresAt.Time, nil
}
