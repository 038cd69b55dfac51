package cli

import (
	"github.com/jrsteele09/materials-admin/apiclient"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
)

const notLoggedIn = `not logged in, run "adminctl login" first`

// usageError reports a local problem and returns the matching ExitError.
func usageError(out *OutputFormatter, message string, err error) error {
	_ = out.Error(ErrCodeUsage, message, nil)
	return WrapExitError(ExitCommandError, message, err)
}

// remoteError reports a failed API call. message is what the user sees,
// normally the store or session error field.
func remoteError(out *OutputFormatter, err error, message string) error {
	switch {
	case apperrors.Is(err, apperrors.ErrNoToken):
		_ = out.Error(ErrCodeAuth, notLoggedIn, nil)
		return WrapExitError(ExitAuth, notLoggedIn, err)
	case apperrors.Is(err, apperrors.ErrUnsupported):
		return usageError(out, message, err)
	case apiclient.IsKind(err, apiclient.KindAuth):
		_ = out.Error(ErrCodeAuth, message, nil)
		return WrapExitError(ExitAuth, message, err)
	}

	var details any
	if out.Verbose {
		details = err.Error()
	}
	_ = out.Error(ErrCodeRemote, message, details)
	return WrapExitError(ExitFailure, message, err)
}
