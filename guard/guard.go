// Package guard decides whether a navigation may proceed given the session's
// authentication state.
package guard

import (
	"context"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Meta is attached to each route.
type Meta struct {
	RequiresAuth  bool
	RequiresGuest bool
}

var (
	Public    = Meta{}
	AuthOnly  = Meta{RequiresAuth: true}
	GuestOnly = Meta{RequiresGuest: true}
)

// Decision is either Allow or a redirect target.
type Decision struct {
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

var Allow = Decision{}

// Decide maps route metadata and the current authentication flag to a
// decision. Auth-only pages send guests to the login page; guest-only pages
// send signed in users to the dashboard.
func Decide(meta Meta, authenticated bool) Decision {
	switch {
	case meta.RequiresAuth && !authenticated:
		return Decision{Redirect: LoginPath}
	case meta.RequiresGuest && authenticated:
		return Decision{Redirect: DashboardPath}
	}
	return Allow
}

// Session is the part of session.Manager the guard needs.
type Session interface {
	EnsureChecked(ctx context.Context)
	IsAuthenticated() bool
}

type Guard struct {
	session Session
}

func New(session Session) *Guard {
	return &Guard{session: session}
}

// Check validates the stored session once, if that has not happened yet, and
// then decides.
func (g *Guard) Check(ctx context.Context, meta Meta) Decision {
	g.session.EnsureChecked(ctx)
	return Decide(meta, g.session.IsAuthenticated())
}
