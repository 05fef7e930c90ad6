package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/crucial707/school-issues/internal/models"
	"github.com/crucial707/school-issues/internal/router"
	"github.com/crucial707/school-issues/internal/session"
)

//go:embed templates
var templatesFS embed.FS

// pages maps a page to its parsed template set (layout + page content).
var pages = map[session.Page]*template.Template{
	session.PageLogin:       parsePage("login.html"),
	session.PageSignup:      parsePage("signup.html"),
	session.PageSubmitIssue: parsePage("submit.html"),
	session.PageMyIssues:    parsePage("issues.html"),
}

var titles = map[session.Page]string{
	session.PageLogin:       "Login",
	session.PageSignup:      "Signup",
	session.PageSubmitIssue: "Submit Issue",
	session.PageMyIssues:    "My Issues",
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
}

// view is the data every page template receives.
type view struct {
	Title    string
	Menu     []router.MenuItem
	LoggedIn bool
	Username string
	Messages []session.Message

	// Signup
	SignupDone      bool
	Genders         []string
	DefaultBirthday string

	// Submit issue
	Categories     []string
	MaxTitleLength int
	Today          string

	// My issues
	Issues []models.Issue
}

func newView(s *session.Session, msgs []session.Message) view {
	return view{
		Title:    titles[s.Page],
		Menu:     router.Menu(s),
		LoggedIn: s.LoggedIn,
		Username: s.Username,
		Messages: msgs,
	}
}

func renderTemplate(w http.ResponseWriter, log *slog.Logger, page session.Page, data view) {
	t, ok := pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Error("template execute", "page", string(page), "error", err)
	}
}
