package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/crucial707/school-issues/internal/auth"
	"github.com/crucial707/school-issues/internal/issues"
	"github.com/crucial707/school-issues/internal/models"
	"github.com/crucial707/school-issues/internal/repo"
	"github.com/crucial707/school-issues/internal/session"
)

// fakeUsers is an in-memory credential store with the same contract as repo.UserRepo.
type fakeUsers struct {
	hasher *auth.Hasher
	users  map[string]models.User
	err    error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{hasher: auth.NewHasher("test"), users: map[string]models.User{}}
}

func (f *fakeUsers) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok || u.PasswordHash != f.hasher.Hash(password) {
		return nil, repo.ErrInvalidCredentials
	}
	return &u, nil
}

func (f *fakeUsers) Register(_ context.Context, reg models.Registration) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.users[reg.Username]; ok {
		return nil, repo.ErrDuplicateUsername
	}
	u := models.User{Username: reg.Username, PasswordHash: f.hasher.Hash(reg.Password), Age: reg.Age, Birthday: reg.Birthday}
	f.users[reg.Username] = u
	return &u, nil
}

var fixedNow = time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC)

func newTestRouter() (*Router, *fakeUsers, *issues.MemoryStore) {
	users := newFakeUsers()
	store := issues.NewMemoryStore()
	r := New(users, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.Now = func() time.Time { return fixedNow }
	return r, users, store
}

func signup(username, password string) SignupForm {
	return SignupForm{Username: username, Password: password, Confirm: password}
}

func lastMessage(t *testing.T, s *session.Session) session.Message {
	t.Helper()
	msgs := s.Drain()
	if len(msgs) == 0 {
		t.Fatal("expected a queued message")
	}
	return msgs[len(msgs)-1]
}

func TestRouter_EndToEnd(t *testing.T) {
	r, _, store := newTestRouter()
	ctx := context.Background()
	s := session.New(fixedNow)

	if page := r.Select(s, string(session.PageSignup)); page != session.PageSignup {
		t.Fatalf("select signup: got %q", page)
	}
	if page := r.Signup(ctx, s, signup("alice", "pw123")); page != session.PageSignup {
		t.Fatalf("signup page: got %q, want signup", page)
	}
	if m := lastMessage(t, s); m.Level != session.LevelSuccess {
		t.Fatalf("signup message: %+v", m)
	}
	if msgs := s.Drain(); len(msgs) != 0 {
		t.Fatalf("success message delivered twice: %+v", msgs)
	}

	r.Select(s, string(session.PageLogin))
	if page := r.Login(ctx, s, "alice", "pw123"); page != session.PageSubmitIssue {
		t.Fatalf("login page: got %q, want submit", page)
	}
	if !s.LoggedIn || s.Username != "alice" {
		t.Fatalf("session not authenticated: %+v", s)
	}
	s.Drain()

	page := r.SubmitIssue(ctx, s, IssueForm{
		Title:       "Broken locker",
		Category:    models.CategoryFacilities,
		Description: "Locker 42 won't open",
	})
	if page != session.PageSubmitIssue {
		t.Fatalf("submit page: got %q", page)
	}
	msgs := s.Drain()
	if len(msgs) != 2 || msgs[0].Text != MsgIssueSubmitted {
		t.Fatalf("submit messages: %+v", msgs)
	}
	if len(s.Drain()) != 0 {
		t.Fatal("submit success shown more than once")
	}

	if page := r.Select(s, string(session.PageMyIssues)); page != session.PageMyIssues {
		t.Fatalf("select my issues: got %q", page)
	}
	mine, err := r.MyIssues(ctx, s)
	if err != nil {
		t.Fatalf("MyIssues: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(mine))
	}
	got := mine[0]
	if got.Title != "Broken locker" || got.Category != "Facilities" ||
		got.Description != "Locker 42 won't open" || got.Submitter != "alice" {
		t.Errorf("unexpected issue: %+v", got)
	}
	if got.SubmittedDate() != "2026-10-18" {
		t.Errorf("submitted date: got %q", got.SubmittedDate())
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("store count: got %d, want 1", n)
	}
}

func TestRouter_LoginFailure(t *testing.T) {
	r, users, _ := newTestRouter()
	ctx := context.Background()
	s := session.New(fixedNow)
	r.Signup(ctx, s, signup("alice", "pw123"))
	s.Drain()

	for _, tc := range []struct{ user, pass string }{
		{"alice", "wrong"},
		{"nobody", "pw123"},
	} {
		if page := r.Login(ctx, s, tc.user, tc.pass); page != session.PageLogin {
			t.Errorf("login %s: got page %q, want login", tc.user, page)
		}
		if s.LoggedIn {
			t.Errorf("login %s: session authenticated", tc.user)
		}
		if m := lastMessage(t, s); m.Text != MsgLoginFailed {
			t.Errorf("login %s: message %q", tc.user, m.Text)
		}
	}

	users.err = errors.New("database is locked")
	r.Login(ctx, s, "alice", "pw123")
	if m := lastMessage(t, s); m.Text != MsgLoginFailed || s.LoggedIn {
		t.Errorf("storage failure should look like a failed login, got %q", m.Text)
	}
}

func TestRouter_FailedLoginDropsPreviousUser(t *testing.T) {
	r, _, _ := newTestRouter()
	ctx := context.Background()
	s := session.New(fixedNow)
	r.Signup(ctx, s, signup("alice", "pw123"))
	r.Login(ctx, s, "alice", "pw123")
	s.Drain()

	if page := r.Login(ctx, s, "alice", "wrong"); page != session.PageLogin {
		t.Fatalf("failed login landed on %q", page)
	}
	if s.LoggedIn || s.Username != "" {
		t.Errorf("session still carries a user: %+v", s)
	}
	if msgs := s.Drain(); len(msgs) != 1 || msgs[0].Text != MsgLoginFailed {
		t.Errorf("messages: %+v", msgs)
	}
	if mine, _ := r.MyIssues(ctx, s); mine != nil {
		t.Errorf("issues visible after failed login: %+v", mine)
	}
}

func TestRouter_SignupValidation(t *testing.T) {
	tests := []struct {
		name string
		form SignupForm
		want string
	}{
		{"missing username", SignupForm{Password: "a", Confirm: "a"}, MsgSignupRequired},
		{"missing confirm", SignupForm{Username: "bob", Password: "a"}, MsgSignupRequired},
		{"mismatch", SignupForm{Username: "bob", Password: "a", Confirm: "b"}, MsgPasswordMismatch},
		{"bad gender", SignupForm{Username: "bob", Password: "a", Confirm: "a", Gender: "?"}, MsgInvalidGender},
		{"bad birthday", SignupForm{Username: "bob", Password: "a", Confirm: "a", Birthday: "14/03/2008"}, MsgInvalidBirthday},
		{"age too high", SignupForm{Username: "bob", Password: "a", Confirm: "a", Age: "151"}, MsgInvalidAge},
		{"age negative", SignupForm{Username: "bob", Password: "a", Confirm: "a", Age: "-1"}, MsgInvalidAge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, users, _ := newTestRouter()
			s := session.New(fixedNow)
			r.Select(s, string(session.PageSignup))

			if page := r.Signup(context.Background(), s, tc.form); page != session.PageSignup {
				t.Errorf("page: got %q, want signup", page)
			}
			if m := lastMessage(t, s); m.Text != tc.want || m.Level != session.LevelError {
				t.Errorf("message: got %+v, want %q", m, tc.want)
			}
			if len(users.users) != 0 {
				t.Error("invalid signup registered a user")
			}
		})
	}
}

func TestRouter_SignupDefaults(t *testing.T) {
	r, users, _ := newTestRouter()
	s := session.New(fixedNow)
	r.Signup(context.Background(), s, signup("bob", "pw"))

	u, ok := users.users["bob"]
	if !ok {
		t.Fatal("bob not registered")
	}
	if u.Birthday != DefaultBirthday || u.Age != 0 {
		t.Errorf("unexpected defaults: %+v", u)
	}
}

func TestRouter_SignupDuplicateAndFailure(t *testing.T) {
	r, users, _ := newTestRouter()
	ctx := context.Background()
	s := session.New(fixedNow)

	r.Signup(ctx, s, signup("alice", "pw123"))
	s.Drain()

	r.Signup(ctx, s, SignupForm{Username: "alice", Password: "x", Confirm: "x", Email: "a@b.c", Age: "30"})
	if m := lastMessage(t, s); m.Text != `Username "alice" is already taken. Please choose another one.` {
		t.Errorf("duplicate message: %q", m.Text)
	}

	users.err = errors.New("disk full")
	r.Signup(ctx, s, signup("carol", "pw"))
	if m := lastMessage(t, s); m.Text != MsgSignupFailed {
		t.Errorf("failure message: %q", m.Text)
	}
}

func TestRouter_SubmitIssueValidation(t *testing.T) {
	r, _, store := newTestRouter()
	ctx := context.Background()
	s := session.New(fixedNow)
	s.LoggedIn, s.Username = true, "alice"

	long := make([]rune, models.MaxTitleLength+1)
	for i := range long {
		long[i] = 'x'
	}

	for _, f := range []IssueForm{
		{Title: "", Category: models.CategoryOther, Description: "text"},
		{Title: "title", Category: models.CategoryOther, Description: "   "},
		{Title: string(long), Category: models.CategoryOther, Description: "text"},
		{Title: "title", Category: "Cafeteria", Description: "text"},
	} {
		if page := r.SubmitIssue(ctx, s, f); page != session.PageSubmitIssue {
			t.Errorf("page: got %q", page)
		}
		if m := lastMessage(t, s); m.Level != session.LevelWarning {
			t.Errorf("expected warning for %+v, got %+v", f, m)
		}
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("invalid submissions appended %d issues", n)
	}
}

func TestRouter_IssuesAreScopedToSubmitter(t *testing.T) {
	r, _, _ := newTestRouter()
	ctx := context.Background()

	a := session.New(fixedNow)
	a.LoggedIn, a.Username = true, "alice"
	b := session.New(fixedNow)
	b.LoggedIn, b.Username = true, "bob"

	r.SubmitIssue(ctx, a, IssueForm{Title: "Broken locker", Category: models.CategoryFacilities, Description: "Locker 42"})

	mine, _ := r.MyIssues(ctx, a)
	theirs, _ := r.MyIssues(ctx, b)
	if len(mine) != 1 || len(theirs) != 0 {
		t.Errorf("alice sees %d, bob sees %d; want 1 and 0", len(mine), len(theirs))
	}
}

func TestRouter_LogoutGatesPages(t *testing.T) {
	r, _, store := newTestRouter()
	ctx := context.Background()
	s := session.New(fixedNow)
	r.Signup(ctx, s, signup("alice", "pw123"))
	r.Login(ctx, s, "alice", "pw123")

	if page := r.Select(s, ChoiceLogout); page != session.PageLogin {
		t.Fatalf("logout page: got %q", page)
	}
	if s.LoggedIn || s.Username != "" || len(s.Messages) != 0 {
		t.Fatalf("logout left state: %+v", s)
	}

	if page := r.Resolve(s, session.PageMyIssues); page != session.PageLogin {
		t.Errorf("my issues after logout resolved to %q", page)
	}
	if mine, _ := r.MyIssues(ctx, s); mine != nil {
		t.Errorf("my issues visible after logout: %+v", mine)
	}

	if page := r.SubmitIssue(ctx, s, IssueForm{Title: "t", Category: models.CategoryOther, Description: "d"}); page != session.PageLogin {
		t.Errorf("submit after logout resolved to %q", page)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Error("unauthenticated submission appended an issue")
	}
}

func TestRouter_MenuAndSelect(t *testing.T) {
	r, _, _ := newTestRouter()
	s := session.New(fixedNow)

	menu := Menu(s)
	if len(menu) != 2 || !menu[0].Selected || menu[0].Choice != "login" {
		t.Errorf("unauthenticated menu: %+v", menu)
	}

	// Logout and authenticated pages are not offered before login.
	if page := r.Select(s, ChoiceLogout); page != session.PageLogin {
		t.Errorf("logout while anonymous: got %q", page)
	}
	if page := r.Select(s, string(session.PageMyIssues)); page != session.PageLogin {
		t.Errorf("my issues while anonymous: got %q", page)
	}

	s.LoggedIn, s.Username = true, "alice"
	if page := r.Select(s, string(session.PageMyIssues)); page != session.PageMyIssues {
		t.Errorf("select my issues: got %q", page)
	}
	if !s.LoggedIn {
		t.Error("menu selection changed authentication")
	}
	menu = Menu(s)
	if len(menu) != 3 || !menu[1].Selected {
		t.Errorf("authenticated menu: %+v", menu)
	}

	if page := r.Resolve(s, session.PageLogin); page != session.PageSubmitIssue {
		t.Errorf("login while authenticated resolved to %q", page)
	}
}
