// Package token reads what it can from a session token without verifying it.
//
// The admin API issues bearer tokens it does not document. When a token
// happens to be a JWT its registered claims are used to size cookie lifetimes
// and to tell the operator when the session ends. Opaque tokens are reported
// as such; nothing here is used for authorisation.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/internal/utils"
	"github.com/pkg/errors"
)

// ErrOpaque is returned for tokens that are not JWTs.
var ErrOpaque = errors.New("token is not a JWT")

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Introspection is the unverified view of a token.
type Introspection struct {
	Sub   *string `json:"sub,omitempty"`   // Subject, usually the user id
	Iss   *string `json:"iss,omitempty"`   // Issuer
	Exp   *int64  `json:"exp,omitempty"`   // Expiration
	Iat   *int64  `json:"iat,omitempty"`   // Issued at time
	Email *string `json:"email,omitempty"` // Some issuers include it
}

// Inspect parses raw without checking its signature.
func Inspect(raw string) (*Introspection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.ErrNoToken
	}
	if strings.Count(raw, ".") != 2 {
		return nil, ErrOpaque
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(ErrOpaque, err.Error())
	}

	info := &Introspection{}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Sub = utils.Ptr(sub)
	}
	if iss, err := claims.GetIssuer(); err == nil && iss != "" {
		info.Iss = utils.Ptr(iss)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.Exp = utils.Ptr(exp.Unix())
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.Iat = utils.Ptr(iat.Unix())
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		info.Email = utils.Ptr(email)
	}
	return info, nil
}

// ExpiresAt returns the expiry, if the token carries one.
func (i *Introspection) ExpiresAt() (time.Time, bool) {
	if i == nil || i.Exp == nil {
		return time.Time{}, false
	}
	return time.Unix(utils.Value(i.Exp), 0), true
}

// Expired is false for tokens without an expiry.
func (i *Introspection) Expired() bool {
	exp, ok := i.ExpiresAt()
	return ok && !NowTimeFunc().Before(exp)
}

// Subject returns the sub claim or "".
func (i *Introspection) Subject() string {
	if i == nil {
		return ""
	}
	return utils.Value(i.Sub)
}

// Lifetime returns how long the token remains valid, capped at ceiling. Tokens
// without an expiry get ceiling.
func Lifetime(raw string, ceiling time.Duration) time.Duration {
	info, err := Inspect(raw)
	if err != nil {
		return ceiling
	}
	exp, ok := info.ExpiresAt()
	if !ok {
		return ceiling
	}
	remaining := exp.Sub(NowTimeFunc())
	if remaining < 0 {
		return 0
	}
	if remaining > ceiling {
		return ceiling
	}
	return remaining
}
