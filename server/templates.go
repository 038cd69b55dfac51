package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	contentTypeHTML = "text/html; charset=utf-8"
	layoutTemplate  = "layout.html"
)

var pageNames = []string{
	"login.html",
	"register.html",
	"dashboard.html",
	"materials.html",
	"clients.html",
	"reports.html",
	"not_found.html",
}

var templateFuncs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"qty":   func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, errors.Wrapf(err, "[server.parsePages] parse %s", name)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render writes page with status. Data is wrapped with the signed-in user so
// the layout can draw the navigation.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "Unknown page "+page, http.StatusInternalServerError)
		return
	}

	data.AppName = s.config.GetAppName()
	if ws := workspaceFrom(r.Context()); ws != nil {
		state := ws.Session.State()
		data.Authenticated = state.IsAuthenticated
		data.UserName = state.User.DisplayName()
	}
	if data.Error == "" {
		data.Error = r.URL.Query().Get("error")
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, page, data); err != nil {
		s.logger.Err(err).Str("page", page).Msg("Failed to render template")
	}
}

// PageData is the model every console page receives.
type PageData struct {
	AppName       string
	Title         string
	Authenticated bool
	UserName      string
	Error         string
	Email         string // Preserve email on error
	Content       any
}
