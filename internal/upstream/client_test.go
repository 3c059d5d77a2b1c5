package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "pat@example.com" {
			t.Errorf("unexpected email: %s", body["email"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc","user":{"id":"u1","role":"patient"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, logging.Default())
	token, user, err := client.Login(context.Background(), "pat@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "abc" {
		t.Errorf("expected token abc, got %s", token)
	}
	if string(user) != `{"id":"u1","role":"patient"}` {
		t.Errorf("unexpected user snapshot: %s", user)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid email or password"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, logging.Default())
	_, _, err := client.Login(context.Background(), "pat@example.com", "wrong")
	msg, ok := IsCredentialError(err)
	if !ok {
		t.Fatalf("expected credential error, got %v", err)
	}
	if msg != "invalid email or password" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestLoginTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection failure

	client := NewClient(srv.URL, logging.Default())
	_, _, err := client.Login(context.Background(), "a@b.c", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := IsCredentialError(err); ok {
		t.Fatal("transport failure must not be a credential error")
	}
}

func TestRegisterPassesProfileThrough(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"t","user":{"id":"u2","role":"doctor","department":"cardiology"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, logging.Default())
	profile := json.RawMessage(`{"name":"Dr. Ng","email":"ng@example.com","password":"pw","role":"doctor","department":"cardiology"}`)
	token, user, err := client.Register(context.Background(), profile)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token != "t" {
		t.Errorf("expected token t, got %s", token)
	}
	if string(got) != string(profile) {
		t.Errorf("profile not passed through opaquely: %s", got)
	}
	if string(user) == "" {
		t.Error("expected user snapshot")
	}
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantUnauth bool
		wantErr    bool
	}{
		{"valid token", http.StatusOK, false, false},
		{"expired token", http.StatusUnauthorized, true, true},
		{"forbidden token", http.StatusForbidden, true, true},
		{"server error", http.StatusInternalServerError, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer tok" {
					t.Errorf("missing bearer header")
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, logging.Default())
			err := client.ValidateToken(context.Background(), "tok")
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := IsUnauthorized(err); got != tt.wantUnauth {
				t.Errorf("IsUnauthorized = %v, want %v", got, tt.wantUnauth)
			}
		})
	}
}

func TestValidateTokenNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, logging.Default())
	err := client.ValidateToken(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	// A network blip must not look like a bad token.
	if IsUnauthorized(err) {
		t.Fatal("transport failure classified as unauthorized")
	}
}

func TestUpdateProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","name":"New Name","role":"patient"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, logging.Default())
	updated, err := client.UpdateProfile(context.Background(), "tok", json.RawMessage(`{"name":"New Name"}`))
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if string(updated) != `{"id":"u1","name":"New Name","role":"patient"}` {
		t.Errorf("unexpected snapshot: %s", updated)
	}
}

func TestUpdateProfileUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, logging.Default())
	_, err := client.UpdateProfile(context.Background(), "tok", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDoForwardsQueryAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/appointments" || r.URL.Query().Get("status") != "pending" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, logging.Default())
	resp, err := client.Do(context.Background(), http.MethodGet, "/api/appointments", map[string][]string{"status": {"pending"}}, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
