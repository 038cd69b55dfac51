package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
)

// Kind classifies why a remote call failed.
type Kind int

const (
	KindTransport Kind = iota + 1 // request never produced a response
	KindAuth                      // 401/403, or no token to send
	KindServer                    // any other non-2xx answer
	KindDecode                    // 2xx answer we could not read
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is returned for every failed remote call.
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int    // zero for transport failures
	Message    string // server-supplied message, if any
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s error", e.Method, e.Path, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (%d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MessageOr returns the server-supplied message carried by err, or fallback
// when there is none.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return apperrors.As(err, &apiErr) && apiErr.Kind == kind
}

func kindForStatus(status int) Kind {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return KindAuth
	}
	return KindServer
}

// serverMessage digs the human readable message out of an error body.
// The backend answers {"message": "..."}; some proxies use {"error": "..."}.
func serverMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}
