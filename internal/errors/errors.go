package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin client
var (
	// Session errors
	ErrNoToken                = errors.New("no session token")
	ErrUnauthenticated        = errors.New("not authenticated")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrRegistrationFailed     = errors.New("registration failed")
	ErrInvalidSessionResponse = errors.New("invalid session response")

	// Resource errors
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported operation")

	// Transport errors
	ErrInvalidResponse = errors.New("invalid response")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
