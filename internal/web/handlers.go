package web

import (
	"net/http"
	"strings"

	"github.com/crucial707/school-issues/internal/models"
	"github.com/crucial707/school-issues/internal/router"
	"github.com/crucial707/school-issues/internal/session"
)

// current redirects to the session's current page.
func (s *Server) current(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	page := s.Router.Resolve(sess, sess.Page)
	s.redirect(w, r, sess, page)
}

// show renders requested, or redirects when the router resolves the session
// to a different page. The menu selection always follows the visible page.
func (s *Server) show(requested session.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)

		page := s.Router.Resolve(sess, requested)
		if page != requested {
			s.redirect(w, r, sess, page)
			return
		}

		data := newView(sess, sess.Drain())
		switch page {
		case session.PageSignup:
			data.Genders = models.Genders
			data.DefaultBirthday = router.DefaultBirthday
			for _, m := range data.Messages {
				if m.Level == session.LevelSuccess {
					data.SignupDone = true
				}
			}
		case session.PageSubmitIssue:
			data.Categories = models.Categories
			data.MaxTitleLength = models.MaxTitleLength
			data.Today = s.Router.Now().Format(models.SubmittedDateLayout)
		case session.PageMyIssues:
			issues, err := s.Router.MyIssues(ctx, sess)
			if err != nil {
				s.Log.ErrorContext(ctx, "list issues", "username", sess.Username, "error", err)
				data.Messages = append(data.Messages, session.Message{
					Level: session.LevelError,
					Text:  "Your issues could not be loaded.",
				})
			}
			data.Issues = issues
		}

		if !s.save(w, r, sess) {
			return
		}
		renderTemplate(w, s.Log, page, data)
	}
}

func (s *Server) selectMenu(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	page := s.Router.Select(sess, r.FormValue("choice"))
	s.redirect(w, r, sess, page)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	page := s.Router.Logout(sess)
	s.redirect(w, r, sess, page)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	page := s.Router.Login(r.Context(), sess,
		strings.TrimSpace(r.FormValue("username")),
		r.FormValue("password"))
	s.redirect(w, r, sess, page)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	page := s.Router.Signup(r.Context(), sess, router.SignupForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("password_confirm"),
		Email:    r.FormValue("email"),
		Gender:   r.FormValue("gender"),
		Birthday: r.FormValue("birthday"),
		Age:      r.FormValue("age"),
	})
	s.redirect(w, r, sess, page)
}

func (s *Server) submitIssue(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	page := s.Router.SubmitIssue(r.Context(), sess, router.IssueForm{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	})
	s.redirect(w, r, sess, page)
}

// redirect saves the session and sends the browser to page (Post/Redirect/Get).
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sess *session.Session, page session.Page) {
	if !s.save(w, r, sess) {
		return
	}
	http.Redirect(w, r, PathFor(page), http.StatusSeeOther)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := s.Sessions.Save(r.Context(), sess); err != nil {
		s.Log.ErrorContext(r.Context(), "save session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return false
	}
	return true
}
