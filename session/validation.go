package session

import (
	"github.com/jrsteele09/materials-admin/apiclient"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/users"
)

// Reason says why a stored session was rejected.
type Reason int

const (
	ReasonNone     Reason = iota
	ReasonNoToken         // nothing stored
	ReasonRejected        // server answered 401/403
	ReasonInvalid         // server answered but not with a user
	ReasonNetwork         // transport failure or other server error
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoToken:
		return "no token"
	case ReasonRejected:
		return "rejected"
	case ReasonInvalid:
		return "invalid response"
	case ReasonNetwork:
		return "unreachable"
	}
	return "unknown"
}

// Validation is the outcome of CheckAuth: either a user or a reason.
type Validation struct {
	user   *users.User
	reason Reason
	err    error
}

func Valid(user *users.User) Validation {
	return Validation{user: user}
}

func Invalid(reason Reason, err error) Validation {
	return Validation{reason: reason, err: err}
}

func (v Validation) OK() bool {
	return v.user != nil
}

// User is nil unless OK.
func (v Validation) User() *users.User {
	return v.user
}

func (v Validation) Reason() Reason {
	return v.reason
}

// Err is the underlying failure, for logging.
func (v Validation) Err() error {
	return v.err
}

func reasonFor(err error) Reason {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidSessionResponse), apiclient.IsKind(err, apiclient.KindDecode):
		return ReasonInvalid
	case apiclient.IsKind(err, apiclient.KindAuth):
		return ReasonRejected
	}
	return ReasonNetwork
}
