package middleware

import (
	"net/http"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/auth"
)

// RequireRoles gates a route on session state. Four outcomes, checked in order:
// hydration still loading renders a neutral placeholder (never a redirect);
// no user redirects to the login page; a non-empty allow set that excludes the
// user's role redirects to the application root; otherwise the route renders.
// An empty allow set admits any authenticated user.
func RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := StateFromContext(r.Context())
			if ok && state.Loading {
				writeLoadingPlaceholder(w)
				return
			}
			if !ok || !state.Authenticated() {
				http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
				return
			}
			if len(allowed) > 0 {
				if _, permitted := allowed[state.Role()]; !permitted {
					http.Redirect(w, r, auth.RootPath, http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultRoute redirects the root and unmatched paths to the session's
// role-appropriate landing page, or to login when there is no session or the
// role is unrecognized.
func DefaultRoute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := StateFromContext(r.Context())
		if !ok || !state.Authenticated() {
			http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, auth.DashboardPath(state.Role()), http.StatusSeeOther)
	}
}

func writeLoadingPlaceholder(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"loading"}`))
}
