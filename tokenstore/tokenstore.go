// Package tokenstore holds the bearer token of one admin session.
//
// A Store is a single slot: the session manager writes it on login and clears
// it on logout or failed validation, resource stores only read it. Callers
// receive the Store explicitly; nothing in this module reads ambient storage.
package tokenstore

import (
	"context"

	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
)

// ErrNoToken is returned by Get when the slot is empty.
var ErrNoToken = apperrors.ErrNoToken

// Reader is the read side used by resource stores.
type Reader interface {
	Get(ctx context.Context) (string, error)
}

// Store persists a single session token.
type Store interface {
	Reader
	Set(ctx context.Context, token string) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// Present reports whether r currently holds a token. Errors other than
// ErrNoToken are returned to the caller.
func Present(ctx context.Context, r Reader) (bool, error) {
	_, err := r.Get(ctx)
	if err == nil {
		return true, nil
	}
	if apperrors.Is(err, ErrNoToken) {
		return false, nil
	}
	return false, err
}
