// Package router decides which page a session sees and applies form
// submissions to the credential and issue stores. Every operation mutates
// the session in place and returns the page that must be shown next.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/crucial707/school-issues/internal/issues"
	"github.com/crucial707/school-issues/internal/metrics"
	"github.com/crucial707/school-issues/internal/models"
	"github.com/crucial707/school-issues/internal/repo"
	"github.com/crucial707/school-issues/internal/session"
)

// ChoiceLogout is the sidebar entry that ends an authenticated session.
const ChoiceLogout = "logout"

// Messages shown to the user.
const (
	MsgLoginFailed      = "Login failed: check your username or password."
	MsgSignupRequired   = "Username, password and password confirmation are required."
	MsgPasswordMismatch = "Password and password confirmation do not match."
	MsgSignupFailed     = "Registration failed. Please try again later."
	MsgInvalidGender    = "Please choose a gender from the list."
	MsgInvalidBirthday  = "Birthday must be a date in YYYY-MM-DD format."
	MsgInvalidAge       = "Age must be a whole number between 0 and 150."
	MsgIssueRequired    = "Title and description are required."
	MsgIssueSubmitted   = "Your issue was submitted successfully!"
	MsgInvalidCategory  = "Please choose a category from the list."
)

// DefaultBirthday is used when the signup form leaves the birthday empty.
const DefaultBirthday = "2000-01-01"

// Credentials is the credential store as seen by the router.
type Credentials interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
}

type Router struct {
	Users  Credentials
	Issues issues.Store
	Log    *slog.Logger
	Now    func() time.Time
}

func New(users Credentials, store issues.Store, log *slog.Logger) *Router {
	return &Router{Users: users, Issues: store, Log: log, Now: time.Now}
}

// MenuItem is one entry of the sidebar menu.
type MenuItem struct {
	Choice   string
	Label    string
	Selected bool
}

// Menu returns the sidebar entries for the session's authentication state,
// with the current page selected.
func Menu(s *session.Session) []MenuItem {
	var items []MenuItem
	if s.LoggedIn {
		items = []MenuItem{
			{Choice: string(session.PageSubmitIssue), Label: "Submit Issue"},
			{Choice: string(session.PageMyIssues), Label: "My Issues"},
			{Choice: ChoiceLogout, Label: "Logout"},
		}
	} else {
		items = []MenuItem{
			{Choice: string(session.PageLogin), Label: "Login"},
			{Choice: string(session.PageSignup), Label: "Signup"},
		}
	}
	for i := range items {
		items[i].Selected = items[i].Choice == string(s.Page)
	}
	return items
}

// Resolve gates requested against the session's authentication state and
// records the result as the current page.
func (r *Router) Resolve(s *session.Session, requested session.Page) session.Page {
	page := requested
	if s.LoggedIn {
		switch requested {
		case session.PageSubmitIssue, session.PageMyIssues:
		default:
			page = session.PageSubmitIssue
		}
	} else {
		switch requested {
		case session.PageLogin, session.PageSignup:
		default:
			page = session.PageLogin
		}
	}
	s.Page = page
	return page
}

// Select applies a sidebar menu choice. Choices not offered in the current
// state leave the page unchanged.
func (r *Router) Select(s *session.Session, choice string) session.Page {
	for _, item := range Menu(s) {
		if item.Choice != choice {
			continue
		}
		if choice == ChoiceLogout {
			return r.Logout(s)
		}
		return r.Resolve(s, session.Page(choice))
	}
	return r.Resolve(s, s.Page)
}

// Login authenticates the session. Unknown users, wrong passwords and store
// failures all produce the same message, and any earlier login is dropped.
func (r *Router) Login(ctx context.Context, s *session.Session, username, password string) session.Page {
	user, err := r.Users.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, repo.ErrInvalidCredentials) {
			r.Log.ErrorContext(ctx, "authenticate", "username", username, "error", err)
		}
		metrics.IncLogin("failure")
		s.Clear()
		s.Push(session.LevelError, MsgLoginFailed)
		return r.Resolve(s, session.PageLogin)
	}

	metrics.IncLogin("success")
	s.LoggedIn = true
	s.Username = user.Username
	s.Push(session.LevelSuccess, fmt.Sprintf("Welcome, %s!", user.Username))
	r.Log.InfoContext(ctx, "user logged in", "username", user.Username)
	return r.Resolve(s, session.PageSubmitIssue)
}

// SignupForm is the raw signup submission.
type SignupForm struct {
	Username string
	Password string
	Confirm  string
	Email    string
	Gender   string
	Birthday string
	Age      string
}

// Signup validates and registers a new user. On success the session stays
// on the signup page with a one-shot confirmation.
func (r *Router) Signup(ctx context.Context, s *session.Session, f SignupForm) session.Page {
	page := r.Resolve(s, session.PageSignup)
	if page != session.PageSignup {
		return page
	}

	reg, msg := f.validate()
	if msg != "" {
		metrics.IncRegistration("invalid")
		s.Push(session.LevelError, msg)
		return page
	}

	_, err := r.Users.Register(ctx, reg)
	switch {
	case err == nil:
		metrics.IncRegistration("success")
		r.Log.InfoContext(ctx, "user registered", "username", reg.Username)
		s.Push(session.LevelSuccess,
			fmt.Sprintf("Welcome aboard, %s! Your account was created. You can now log in.", reg.Username))
	case errors.Is(err, repo.ErrDuplicateUsername):
		metrics.IncRegistration("duplicate")
		s.Push(session.LevelError,
			fmt.Sprintf("Username %q is already taken. Please choose another one.", reg.Username))
	default:
		metrics.IncRegistration("error")
		r.Log.ErrorContext(ctx, "register", "username", reg.Username, "error", err)
		s.Push(session.LevelError, MsgSignupFailed)
	}
	return page
}

func (f SignupForm) validate() (models.Registration, string) {
	if f.Username == "" || f.Password == "" || f.Confirm == "" {
		return models.Registration{}, MsgSignupRequired
	}
	if f.Password != f.Confirm {
		return models.Registration{}, MsgPasswordMismatch
	}
	if !models.ValidGender(f.Gender) {
		return models.Registration{}, MsgInvalidGender
	}

	birthday := strings.TrimSpace(f.Birthday)
	if birthday == "" {
		birthday = DefaultBirthday
	}
	if _, err := time.Parse(models.BirthdayLayout, birthday); err != nil {
		return models.Registration{}, MsgInvalidBirthday
	}

	age := 0
	if a := strings.TrimSpace(f.Age); a != "" {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 || n > models.MaxAge {
			return models.Registration{}, MsgInvalidAge
		}
		age = n
	}

	return models.Registration{
		Username: f.Username,
		Password: f.Password,
		Email:    strings.TrimSpace(f.Email),
		Gender:   f.Gender,
		Birthday: birthday,
		Age:      age,
	}, ""
}

// IssueForm is the raw issue submission.
type IssueForm struct {
	Title       string
	Category    string
	Description string
}

// SubmitIssue appends an issue attributed to the session's user. Invalid
// submissions append nothing.
func (r *Router) SubmitIssue(ctx context.Context, s *session.Session, f IssueForm) session.Page {
	page := r.Resolve(s, session.PageSubmitIssue)
	if page != session.PageSubmitIssue {
		return page
	}

	title := strings.TrimSpace(f.Title)
	description := strings.TrimSpace(f.Description)
	switch {
	case title == "" || description == "":
		s.Push(session.LevelWarning, MsgIssueRequired)
		return page
	case utf8.RuneCountInString(title) > models.MaxTitleLength:
		s.Push(session.LevelWarning,
			fmt.Sprintf("Title must be at most %d characters.", models.MaxTitleLength))
		return page
	case !models.ValidCategory(f.Category):
		s.Push(session.LevelWarning, MsgInvalidCategory)
		return page
	}

	issue := models.Issue{
		Title:       title,
		Category:    f.Category,
		Description: description,
		Submitter:   s.Username,
		SubmittedAt: r.Now(),
	}
	if err := r.Issues.Add(ctx, issue); err != nil {
		r.Log.ErrorContext(ctx, "add issue", "username", s.Username, "error", err)
		s.Push(session.LevelError, "Your issue could not be saved. Please try again.")
		return page
	}

	metrics.IncIssueSubmitted(issue.Category)
	r.Log.InfoContext(ctx, "issue submitted", "username", s.Username, "category", issue.Category)
	s.Push(session.LevelSuccess, MsgIssueSubmitted)
	s.Push(session.LevelInfo, fmt.Sprintf("Title: %s | Category: %s | Description: %s",
		issue.Title, issue.Category, issue.Description))
	return page
}

// MyIssues returns the issues submitted by the session's user. It never
// changes the page; callers gate access with Resolve first.
func (r *Router) MyIssues(ctx context.Context, s *session.Session) ([]models.Issue, error) {
	if !s.LoggedIn {
		return nil, nil
	}
	return r.Issues.ListBySubmitter(ctx, s.Username)
}

// Logout clears authentication and pending messages and returns to Login.
func (r *Router) Logout(s *session.Session) session.Page {
	s.Clear()
	return r.Resolve(s, session.PageLogin)
}
