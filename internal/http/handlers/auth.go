package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/auth"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/compliance"
	httpmiddleware "github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/http/middleware"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/observability/metrics"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/session"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/upstream"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

// AuthHandler owns the login/register/logout/profile surface.
type AuthHandler struct {
	manager *session.Manager
	api     *upstream.Client
	cookies *auth.CookieManager
	audit   *compliance.AuditService
	metrics *metrics.PortalMetrics
	logger  *logging.Logger
}

// NewAuthHandler wires the auth surface. audit and metrics may be nil.
func NewAuthHandler(manager *session.Manager, api *upstream.Client, cookies *auth.CookieManager, audit *compliance.AuditService, m *metrics.PortalMetrics, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{
		manager: manager,
		api:     api,
		cookies: cookies,
		audit:   audit,
		metrics: m,
		logger:  logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authSuccessResponse struct {
	User     json.RawMessage `json:"user"`
	Redirect string          `json:"redirect"`
}

// Login handles POST /auth/login. A rejection is a result, not a failure:
// the API's message comes back with a 401 and nothing is stored.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	sessionID := uuid.NewString()
	profile, err := h.manager.Login(r.Context(), sessionID, req.Email, req.Password)
	if err != nil {
		if msg, ok := upstream.IsCredentialError(err); ok {
			h.metrics.ObserveAuth("login", "rejected")
			_ = h.audit.LogLogin(r.Context(), sessionID, "", req.Email, "", false)
			writeError(w, http.StatusUnauthorized, msg)
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusBadGateway, "records service unavailable")
		return
	}

	if err := h.cookies.Issue(w, sessionID); err != nil {
		h.logger.Error("failed to issue session cookie", "error", err)
		writeError(w, http.StatusInternalServerError, "could not establish session")
		return
	}

	h.metrics.ObserveAuth("login", "success")
	_ = h.audit.LogLogin(r.Context(), sessionID, profile.ID, profile.Email, profile.Role, true)
	h.logger.Info("user logged in", "user_id", profile.ID, "role", profile.Role)

	writeJSON(w, http.StatusOK, authSuccessResponse{
		User:     profile.JSON(),
		Redirect: auth.DashboardPath(profile.Role),
	})
}

// Register handles POST /auth/register. The profile document, including
// role-specific fields, is forwarded opaquely.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := uuid.NewString()
	profile, err := h.manager.Register(r.Context(), sessionID, body)
	if err != nil {
		if msg, ok := upstream.IsCredentialError(err); ok {
			h.metrics.ObserveAuth("register", "rejected")
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		h.logger.Error("registration failed", "error", err)
		writeError(w, http.StatusBadGateway, "records service unavailable")
		return
	}

	if err := h.cookies.Issue(w, sessionID); err != nil {
		h.logger.Error("failed to issue session cookie", "error", err)
		writeError(w, http.StatusInternalServerError, "could not establish session")
		return
	}

	h.metrics.ObserveAuth("register", "success")
	_ = h.audit.LogRegistration(r.Context(), sessionID, profile.ID, profile.Email, profile.Role)

	writeJSON(w, http.StatusCreated, authSuccessResponse{
		User:     profile.JSON(),
		Redirect: auth.DashboardPath(profile.Role),
	})
}

// Logout handles POST /auth/logout: clears store and cookie synchronously,
// no upstream call.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	state, ok := httpmiddleware.StateFromContext(r.Context())
	if ok {
		if err := h.manager.Logout(r.Context(), state.SessionID); err != nil {
			h.logger.Error("logout store clear failed", "session_id", state.SessionID, "error", err)
		}
		userID := ""
		if state.Profile != nil {
			userID = state.Profile.ID
		}
		_ = h.audit.LogLogout(r.Context(), state.SessionID, userID)
		h.metrics.ObserveAuth("logout", "success")
	}
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": auth.LoginPath})
}

// Profile handles GET /profile from the in-memory snapshot; no upstream call.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	state, ok := httpmiddleware.StateFromContext(r.Context())
	if !ok || !state.Authenticated() {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(state.Profile.JSON())
}

// UpdateProfile handles PUT /profile: writes through to the records API,
// then refreshes the stored snapshot so a reload sees the new profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	state, ok := httpmiddleware.StateFromContext(r.Context())
	if !ok || !state.Authenticated() {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	fields, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(fields) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.api.UpdateProfile(r.Context(), state.Token, fields)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			h.manager.Invalidate(r.Context(), state.SessionID, "profile update rejected")
			http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
			return
		}
		h.logger.Error("profile update failed", "error", err)
		writeError(w, http.StatusBadGateway, "records service unavailable")
		return
	}

	profile, err := h.manager.UpdateUser(r.Context(), state.SessionID, updated)
	if err != nil {
		h.logger.Error("profile snapshot refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not persist profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(profile.JSON())
}

// LoginPage handles GET /login for redirect targets; the SPA shell renders
// the actual form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"page": "login"})
}
