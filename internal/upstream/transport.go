package upstream

import (
	"context"
	"net/http"
)

type ctxKey string

const sessionIDKey ctxKey = "upstream.session_id"

// WithSessionID tags a request context with the portal session the call is
// made on behalf of.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext extracts the session id if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(sessionIDKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

// TokenSource yields the bearer token currently stored for a session.
type TokenSource interface {
	Token(ctx context.Context, sessionID string) (string, error)
}

// Invalidator is notified when the API rejects a session's token.
type Invalidator interface {
	Invalidate(ctx context.Context, sessionID, reason string)
}

// AuthTransport injects the session's bearer token into every outgoing request
// and invalidates the session when the API answers 401. The response itself
// still propagates to the caller; navigation is decided a layer up.
type AuthTransport struct {
	Base        http.RoundTripper
	Tokens      TokenSource
	Invalidator Invalidator
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	sessionID, ok := SessionIDFromContext(req.Context())
	if ok && t.Tokens != nil {
		// The token is read from the store on every call so a session
		// refreshed elsewhere is picked up immediately.
		token, err := t.Tokens.Token(req.Context(), sessionID)
		if err == nil && token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && ok && t.Invalidator != nil {
		t.Invalidator.Invalidate(req.Context(), sessionID, "upstream rejected token")
	}
	return resp, nil
}
