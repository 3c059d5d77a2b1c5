package upstream

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the records API explicitly rejects the
// caller's credential. Transport failures are never mapped to this error.
var ErrUnauthorized = errors.New("upstream: unauthorized")

// CredentialError carries the API's rejection message for a login or
// registration attempt. It is recoverable and meant to be shown to the user.
type CredentialError struct {
	Message string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("upstream: credentials rejected: %s", e.Message)
}

// IsUnauthorized reports whether err is an explicit auth rejection from the
// API, as opposed to a transport failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsCredentialError reports whether err is a rejected login or registration,
// and returns the user-facing message.
func IsCredentialError(err error) (string, bool) {
	var ce *CredentialError
	if errors.As(err, &ce) {
		return ce.Message, true
	}
	return "", false
}
