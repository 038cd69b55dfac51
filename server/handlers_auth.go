package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/materials-admin/server/workspace"
	"github.com/jrsteele09/materials-admin/token"
	"github.com/jrsteele09/materials-admin/users"
)

// IndexHandler sends / to the dashboard; the guard takes it from there.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, RouteDashboard)
	}
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "login.html", PageData{
			Title: "Log in",
			Email: r.URL.Query().Get("email"),
		})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := s.workspaces.Create()

		creds := users.Credentials{
			Email:    strings.TrimSpace(r.FormValue("email")),
			Password: r.FormValue("password"),
		}
		if err := ws.Session.Login(r.Context(), creds); err != nil {
			s.discardWorkspace(ws)
			s.render(w, r, http.StatusUnauthorized, "login.html", PageData{
				Title: "Log in",
				Error: ws.Session.State().Error,
				Email: creds.Email,
			})
			return
		}

		s.adoptWorkspace(w, r, ws)
		redirectSuccess(w, r, RouteDashboard)
	}
}

// RegisterPageHandler displays the registration page (GET /register)
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "register.html", PageData{Title: "Register"})
	}
}

func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := s.workspaces.Create()

		reg := users.Registration{
			FullName: strings.TrimSpace(r.FormValue("fullName")),
			Email:    strings.TrimSpace(r.FormValue("email")),
			Password: r.FormValue("password"),
		}
		if err := ws.Session.Register(r.Context(), reg); err != nil {
			s.discardWorkspace(ws)
			s.render(w, r, http.StatusBadRequest, "register.html", PageData{
				Title: "Register",
				Error: ws.Session.State().Error,
				Email: reg.Email,
			})
			return
		}

		s.adoptWorkspace(w, r, ws)
		redirectSuccess(w, r, RouteDashboard)
	}
}

// LogoutHandler ends the admin session and drops the browser's workspace.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ws := workspaceFrom(r.Context()); ws != nil {
			if err := ws.Session.Logout(r.Context()); err != nil {
				s.logger.Warn().Err(err).Msg("logout")
			}
			s.discardWorkspace(ws)
		}
		s.SetWorkspaceCookie(w, r, "", -time.Second)
		redirectSuccess(w, r, RouteLogin)
	}
}

// adoptWorkspace makes ws, freshly authenticated, the browser's workspace.
// The id is always new, so a cookie planted before login never ends up
// naming an authenticated session. The cookie lives as long as the token
// says it does.
func (s *Server) adoptWorkspace(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	s.workspaces.Keep(ws)
	if prev := workspaceFrom(r.Context()); prev != nil && prev.ID != ws.ID {
		s.discardWorkspace(prev)
	}

	maxAge := s.config.GetMaxSessionAge()
	if raw, err := ws.Tokens().Get(r.Context()); err == nil {
		maxAge = token.Lifetime(raw, maxAge)
	}
	s.SetWorkspaceCookie(w, r, ws.ID, maxAge)
}

func (s *Server) discardWorkspace(ws *workspace.Workspace) {
	if err := s.workspaces.Delete(ws.ID); err != nil {
		s.logger.Warn().Err(err).Str("workspace", ws.ID).Msg("dropping workspace")
	}
}

// NotFoundHandler renders the 404 page for unknown routes
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusNotFound, "not_found.html", PageData{Title: "Not found"})
	}
}
