// Package csrf issues and validates the per-session synchronizer token used
// to reject cross-site state-changing requests.
package csrf

import (
	"crypto/subtle"
	"errors"

	"github.com/GoProfilePortal/GoProfilePortal/internal/uniuri"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/session"
)

const (
	// FormField is the form field carrying the token on state-changing requests.
	FormField = "csrf_token"

	// tokenLen over uniuri's 62-character alphabet gives ~190 bits of entropy.
	tokenLen = 32
)

// ErrTokenInvalid is returned when the submitted token is missing, empty or
// doesn't match the session's token.
var ErrTokenInvalid = errors.New("invalid csrf token")

// GetOrCreate returns the session's token, generating and storing one the
// first time. An existing token is returned verbatim and is never rotated
// within a session's lifetime. The second return reports whether a token was
// created, in which case the caller must re-issue the session cookie so the
// client holds the latest signed state.
func GetOrCreate(data *session.Data) (string, bool) {
	if data.CSRFToken != "" {
		return data.CSRFToken, false
	}

	data.CSRFToken = uniuri.NewLen(tokenLen)

	return data.CSRFToken, true
}

// Validate checks a submitted token against the session. It fails unless the
// session holds a non-empty token that exactly matches the submitted value.
// The comparison is constant-time to close the timing side-channel.
func Validate(data *session.Data, submitted string) error {
	if data.CSRFToken == "" || submitted == "" {
		return ErrTokenInvalid
	}

	if subtle.ConstantTimeCompare([]byte(data.CSRFToken), []byte(submitted)) != 1 {
		return ErrTokenInvalid
	}

	return nil
}
