package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/auth"
	httpmiddleware "github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/http/middleware"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/session"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/upstream"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

type authFixture struct {
	handler *AuthHandler
	manager *session.Manager
	store   *session.InMemoryStore
	cookies *auth.CookieManager
}

// newAuthFixture wires the auth handler against a stub records API.
func newAuthFixture(t *testing.T, api http.HandlerFunc) *authFixture {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger := logging.Default()
	store := session.NewInMemoryStore()
	client := upstream.NewClient(srv.URL, logger)
	manager := session.NewManager(store, client, session.NewInvalidationBus(), logger)
	cookies := auth.NewCookieManager("portal_session", "test-secret", time.Hour, false)

	return &authFixture{
		handler: NewAuthHandler(manager, client, cookies, nil, nil, logger),
		manager: manager,
		store:   store,
		cookies: cookies,
	}
}

func (f *authFixture) sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "portal_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("expected session cookie")
	return nil
}

func TestLoginSuccess(t *testing.T) {
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc","user":{"id":"u1","name":"Pat","email":"pat@example.com","role":"patient"}}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"pat@example.com","password":"pw"}`))
	rec := httptest.NewRecorder()
	fix.handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"`+auth.PatientDashboardPath+`"`)

	cookie := fix.sessionCookie(t, rec)
	sessionID, err := fix.cookies.SessionID(cookieRequest(cookie))
	require.NoError(t, err)

	assert.True(t, fix.manager.IsAuthenticated(sessionID))
	assert.True(t, fix.manager.HasRole(sessionID, auth.RolePatient))

	recStored, err := fix.store.Load(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "abc", recStored.Token)
}

func TestLoginRejected(t *testing.T) {
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid email or password"}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"pat@example.com","password":"bad"}`))
	rec := httptest.NewRecorder()
	fix.handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")

	// Never stores partial state.
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, "portal_session", c.Name)
	}
}

func TestLoginUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection failure
	logger := logging.Default()
	client := upstream.NewClient(srv.URL, logger)
	manager := session.NewManager(session.NewInMemoryStore(), client, session.NewInvalidationBus(), logger)
	cookies := auth.NewCookieManager("portal_session", "test-secret", time.Hour, false)
	handler := NewAuthHandler(manager, client, cookies, nil, nil, logger)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.c","password":"pw"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLoginBadBody(t *testing.T) {
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	fix.handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterCreatesSession(t *testing.T) {
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"t2","user":{"id":"u2","role":"doctor","department":"cardiology"}}`))
	})

	body := `{"name":"Dr. Ng","email":"ng@example.com","password":"pw","role":"doctor","department":"cardiology"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	fix.handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"`+auth.DoctorDashboardPath+`"`)
	fix.sessionCookie(t, rec)
}

func TestLogoutClearsSession(t *testing.T) {
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"abc","user":{"id":"u1","role":"patient"}}`))
	})

	ctx := context.Background()
	profile, err := fix.manager.Login(ctx, "sess-1", "pat@example.com", "pw")
	require.NoError(t, err)

	state := session.State{SessionID: "sess-1", Token: "abc", Profile: profile}
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(httpmiddleware.WithState(req.Context(), state))
	rec := httptest.NewRecorder()
	fix.handler.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, fix.manager.IsAuthenticated("sess-1"))
	_, err = fix.store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Cookie is expired on the response.
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "portal_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected expiring cookie")
}

func TestUpdateProfileRefreshesSnapshot(t *testing.T) {
	updated := `{"id":"u1","name":"Pat Updated","email":"pat@example.com","role":"patient"}`
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/auth/login":
			_, _ = w.Write([]byte(`{"token":"abc","user":{"id":"u1","name":"Pat","email":"pat@example.com","role":"patient"}}`))
		case r.URL.Path == "/api/auth/profile" && r.Method == http.MethodPut:
			require.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(updated))
		default:
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()
	profile, err := fix.manager.Login(ctx, "sess-1", "pat@example.com", "pw")
	require.NoError(t, err)

	state := session.State{SessionID: "sess-1", Token: "abc", Profile: profile}
	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"name":"Pat Updated"}`))
	req = req.WithContext(httpmiddleware.WithState(req.Context(), state))
	rec := httptest.NewRecorder()
	fix.handler.UpdateProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, updated, rec.Body.String())

	// The store sees the new snapshot, so a reload reproduces it.
	stored, err := fix.store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.JSONEq(t, updated, string(stored.Profile))
}

func TestUpdateProfileTokenRejected(t *testing.T) {
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"token":"abc","user":{"id":"u1","role":"patient"}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	ctx := context.Background()
	profile, err := fix.manager.Login(ctx, "sess-1", "pat@example.com", "pw")
	require.NoError(t, err)

	state := session.State{SessionID: "sess-1", Token: "abc", Profile: profile}
	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"name":"x"}`))
	req = req.WithContext(httpmiddleware.WithState(req.Context(), state))
	rec := httptest.NewRecorder()
	fix.handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
	assert.False(t, fix.manager.IsAuthenticated("sess-1"))
}

func TestProfileUnauthenticated(t *testing.T) {
	fix := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	fix.handler.Profile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func cookieRequest(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	return req
}
