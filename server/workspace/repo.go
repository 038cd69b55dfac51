// Package workspace gives each console browser its own admin session: a
// session manager plus the three collection stores, all sharing one token
// slot.
package workspace

import (
	"context"
	"time"

	"github.com/jrsteele09/materials-admin/clients"
	"github.com/jrsteele09/materials-admin/guard"
	"github.com/jrsteele09/materials-admin/materials"
	"github.com/jrsteele09/materials-admin/purchases"
	"github.com/jrsteele09/materials-admin/session"
	"github.com/jrsteele09/materials-admin/tokenstore"
)

type Workspace struct {
	ID        string
	Session   *session.Manager
	Guard     *guard.Guard
	Materials *materials.Store
	Clients   *clients.Store
	Purchases *purchases.Store
	CreatedAt time.Time
}

// Tokens is the slot shared by the session manager and the stores.
func (w *Workspace) Tokens() tokenstore.Store {
	return w.Session.Tokens()
}

type Repo interface {
	// Find returns the workspace for id. An id this process does not know is
	// only adopted when its token slot already holds a token, which happens
	// after a restart with shared slots. Find never creates a workspace for an
	// id the client made up.
	Find(ctx context.Context, id string) (*Workspace, bool)
	// Create builds a workspace under a fresh server-generated id. It is not
	// kept until Keep is called.
	Create() *Workspace
	Keep(ws *Workspace)
	Get(id string) (*Workspace, error)
	// Delete forgets the workspace and releases its token slot. It also
	// releases the slot of a workspace that was created but never kept.
	Delete(id string) error
}

// TokenSlots hands out the token slot of each workspace.
// memstore.Bucket and redisstore.Slots implement it.
type TokenSlots interface {
	For(id string) tokenstore.Store
	Forget(id string)
}
