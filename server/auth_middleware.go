package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/materials-admin/guard"
	"github.com/jrsteele09/materials-admin/server/workspace"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyWorkspace stores the browser's workspace
	ContextKeyWorkspace ContextKey = "workspace"
)

// WorkspaceMiddleware resolves the browser's workspace from its cookie. It
// never creates one: workspaces only come into being on a successful login
// or registration.
func (s *Server) WorkspaceMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.GetSessionCookieName())
		if err != nil {
			next(w, r)
			return
		}
		ws, ok := s.workspaces.Find(r.Context(), cookie.Value)
		if !ok {
			next(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyWorkspace, ws)
		next(w, r.WithContext(ctx))
	}
}

// RequireRoute runs the route guard for meta and redirects when it refuses.
// A browser without a workspace is a guest.
func (s *Server) RequireRoute(meta guard.Meta) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Decide(meta, false)
			if ws := workspaceFrom(r.Context()); ws != nil {
				decision = ws.Guard.Check(r.Context(), meta)
			}
			if !decision.Allowed() {
				redirectSuccess(w, r, decision.Redirect)
				return
			}
			next(w, r)
		}
	}
}

func workspaceFrom(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(ContextKeyWorkspace).(*workspace.Workspace)
	return ws
}
