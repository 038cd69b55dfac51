// Package server is the browser console for the admin API. Every browser gets
// its own workspace (session manager and collection stores) keyed by a cookie;
// pages are rendered server side from embedded templates.
package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/materials-admin/internal/config"
	"github.com/jrsteele09/materials-admin/server/workspace"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	workspaces workspace.Repo
	logger     zerolog.Logger
	gatherer   prometheus.Gatherer
	metrics    *consoleMetrics
	pages      map[string]*template.Template
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry serves reg on /metrics and registers the console's own
// collectors on it. Without it /metrics reports the default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.gatherer = reg
		s.metrics = newConsoleMetrics(reg)
	}
}

func New(config config.Config, workspaces workspace.Repo, options ...Option) (*Server, error) {
	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		workspaces: workspaces,
		logger:     log.Logger,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range options {
		opt(s)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to parse templates")
	}
	s.pages = pages

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.logger.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if colour, ok := methodColors[method]; ok {
		return colour + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
