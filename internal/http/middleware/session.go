package middleware

import (
	"context"
	"net/http"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/auth"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/session"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/upstream"
)

type contextKey string

const sessionStateKey contextKey = "sessionState"

// WithSession resolves the session cookie, hydrates session state through the
// manager, and stores a snapshot in the request context. Requests without a
// valid cookie pass through unauthenticated; the guard decides what that means
// for the route.
func WithSession(mgr *session.Manager, cookies *auth.CookieManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := cookies.SessionID(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			state := mgr.Hydrate(r.Context(), sessionID)
			ctx := context.WithValue(r.Context(), sessionStateKey, state)
			ctx = upstream.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StateFromContext returns the session snapshot if the request carried one.
func StateFromContext(ctx context.Context) (session.State, bool) {
	state, ok := ctx.Value(sessionStateKey).(session.State)
	return state, ok
}

// WithState stores a snapshot directly; used by tests and the guard.
func WithState(ctx context.Context, state session.State) context.Context {
	return context.WithValue(ctx, sessionStateKey, state)
}
