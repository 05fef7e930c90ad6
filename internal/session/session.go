// Package session holds per-browser state: authentication, the visible page
// and the queue of one-shot messages waiting to be shown.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Page identifies one of the visible pages.
type Page string

const (
	PageLogin       Page = "login"
	PageSignup      Page = "signup"
	PageSubmitIssue Page = "submit"
	PageMyIssues    Page = "issues"
)

// Message levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Message is a one-shot notice shown on the next render.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type Session struct {
	ID       string    `json:"id"`
	LoggedIn bool      `json:"logged_in"`
	Username string    `json:"username,omitempty"`
	Page     Page      `json:"page"`
	Messages []Message `json:"messages,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// New returns an unauthenticated session on the login page.
func New(now time.Time) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Page:     PageLogin,
		LastSeen: now,
	}
}

// Push queues a message for the next render.
func (s *Session) Push(level, text string) {
	s.Messages = append(s.Messages, Message{Level: level, Text: text})
}

// Drain returns the queued messages and empties the queue, so every message
// is delivered exactly once.
func (s *Session) Drain() []Message {
	out := s.Messages
	s.Messages = nil
	return out
}

// Clear drops authentication and any pending messages.
func (s *Session) Clear() {
	s.LoggedIn = false
	s.Username = ""
	s.Messages = nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
