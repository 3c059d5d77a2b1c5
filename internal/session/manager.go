package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/upstream"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

const (
	validateTimeout = 10 * time.Second

	// Cached states are evicted once they sit unused past the state TTL;
	// the sweep runs at most this often.
	defaultStateTTL    = 24 * time.Hour
	stateSweepInterval = time.Minute
)

// AuthAPI is the slice of the records API the manager depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, json.RawMessage, error)
	Register(ctx context.Context, profile json.RawMessage) (string, json.RawMessage, error)
	ValidateToken(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, token string, fields json.RawMessage) (json.RawMessage, error)
}

// State is a point-in-time view of one session, safe to hand to guards.
type State struct {
	SessionID string
	Loading   bool
	Token     string
	Profile   *Profile
}

// Authenticated reports whether the session has a user.
func (s State) Authenticated() bool {
	return s.Profile != nil
}

// Role returns the session's role, or "" when unauthenticated.
func (s State) Role() string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

// HasRole compares the session's role by exact string match.
func (s State) HasRole(role string) bool {
	return s.Profile != nil && s.Profile.Role == role
}

type sessionState struct {
	mu      sync.RWMutex
	loading bool
	token   string
	profile *Profile
	expires time.Time
}

func (st *sessionState) snapshot(sessionID string) State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return State{
		SessionID: sessionID,
		Loading:   st.loading,
		Token:     st.token,
		Profile:   st.profile,
	}
}

func (st *sessionState) set(token string, profile *Profile) {
	st.mu.Lock()
	st.token = token
	st.profile = profile
	st.loading = false
	st.mu.Unlock()
}

func (st *sessionState) expired(now time.Time) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return now.After(st.expires)
}

func (st *sessionState) touch(ttl time.Duration) {
	st.mu.Lock()
	st.expires = time.Now().Add(ttl)
	st.mu.Unlock()
}

// Manager is the single source of truth for who is logged in on each portal
// session. It is constructed once and handed to the router, guard, and
// transport by reference; there is no ambient global.
type Manager struct {
	store    Store
	api      AuthAPI
	bus      *InvalidationBus
	logger   *logging.Logger
	stateTTL time.Duration

	mu        sync.RWMutex
	states    map[string]*sessionState
	lastSweep time.Time
}

// ManagerOption tweaks optional manager behavior.
type ManagerOption func(*Manager)

// WithStateTTL bounds how long a session's in-memory state may outlive its
// last use. Pair it with the store TTL so a record that lapses in Redis does
// not linger here with its bearer token.
func WithStateTTL(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.stateTTL = d
		}
	}
}

// NewManager creates a session manager over the given store and API client.
func NewManager(store Store, api AuthAPI, bus *InvalidationBus, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	if bus == nil {
		bus = NewInvalidationBus()
	}
	m := &Manager{
		store:    store,
		api:      api,
		bus:      bus,
		logger:   logger,
		stateTTL: defaultStateTTL,
		states:   make(map[string]*sessionState),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bus exposes the invalidation bus for subscribers.
func (m *Manager) Bus() *InvalidationBus {
	return m.bus
}

// Hydrate loads the session from the store, optimistically trusting the
// snapshot so the first response renders without a network round trip, then
// validates the token in the background. Validation failure clears the
// session silently; a transport failure keeps the optimistic session, since
// an unreachable API says nothing about the token.
func (m *Manager) Hydrate(ctx context.Context, sessionID string) State {
	now := time.Now()
	m.mu.Lock()
	m.sweepLocked(now)
	st, ok := m.states[sessionID]
	if ok && !st.expired(now) {
		m.mu.Unlock()
		st.touch(m.stateTTL)
		return st.snapshot(sessionID)
	}
	st = &sessionState{loading: true, expires: now.Add(m.stateTTL)}
	m.states[sessionID] = st
	m.mu.Unlock()

	rec, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("session store read failed", "session_id", sessionID, "error", err)
		}
		st.set("", nil)
		m.drop(sessionID, st)
		return st.snapshot(sessionID)
	}

	profile, err := ParseProfile(rec.Profile)
	if err != nil {
		// Unparseable snapshot: treat as logged out and drop the record.
		m.logger.Warn("clearing malformed session record", "session_id", sessionID)
		_ = m.store.Delete(ctx, sessionID)
		st.set("", nil)
		m.drop(sessionID, st)
		return st.snapshot(sessionID)
	}

	st.set(rec.Token, profile)

	go m.validateInBackground(sessionID, st, rec.Token)

	return st.snapshot(sessionID)
}

// drop removes the entry only if it still points at st, so a login that raced
// in between is not discarded.
func (m *Manager) drop(sessionID string, st *sessionState) {
	m.mu.Lock()
	if m.states[sessionID] == st {
		delete(m.states, sessionID)
	}
	m.mu.Unlock()
}

// sweepLocked evicts every expired state. Amortized: it runs at most once per
// stateSweepInterval, so sessions never hydrated again still get collected.
// Caller holds m.mu.
func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < stateSweepInterval {
		return
	}
	m.lastSweep = now
	for id, st := range m.states {
		if st.expired(now) {
			delete(m.states, id)
		}
	}
}

// validateInBackground checks the stored token against the API. Runs detached
// from the request that triggered hydration.
func (m *Manager) validateInBackground(sessionID string, st *sessionState, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()

	err := m.api.ValidateToken(ctx, token)
	switch {
	case err == nil:
		return
	case upstream.IsUnauthorized(err):
		// Routine expiry: silent logout, no user-visible error.
		if m.current(sessionID) == st {
			m.Invalidate(ctx, sessionID, "stored token rejected")
		}
	default:
		m.logger.Warn("token validation unreachable, keeping session",
			"session_id", sessionID, "error", err)
	}
}

func (m *Manager) current(sessionID string) *sessionState {
	m.mu.RLock()
	st := m.states[sessionID]
	m.mu.RUnlock()
	if st != nil && st.expired(time.Now()) {
		m.drop(sessionID, st)
		return nil
	}
	return st
}

// Login exchanges credentials for a session. Rejected credentials surface as
// an upstream.CredentialError value; no partial state is ever stored.
func (m *Manager) Login(ctx context.Context, sessionID, email, password string) (*Profile, error) {
	token, raw, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.adopt(ctx, sessionID, token, raw)
}

// Register creates an account and starts a session, same contract as Login.
func (m *Manager) Register(ctx context.Context, sessionID string, profile json.RawMessage) (*Profile, error) {
	token, raw, err := m.api.Register(ctx, profile)
	if err != nil {
		return nil, err
	}
	return m.adopt(ctx, sessionID, token, raw)
}

// adopt persists and activates a token+user pair. Store write happens first;
// memory only changes once the pair is durable.
func (m *Manager) adopt(ctx context.Context, sessionID, token string, raw json.RawMessage) (*Profile, error) {
	profile, err := ParseProfile(raw)
	if err != nil {
		return nil, fmt.Errorf("session: bad profile from API: %w", err)
	}
	if err := m.store.Save(ctx, sessionID, Record{Token: token, Profile: profile.JSON()}); err != nil {
		return nil, err
	}

	st := &sessionState{expires: time.Now().Add(m.stateTTL)}
	st.set(token, profile)
	m.mu.Lock()
	m.states[sessionID] = st
	m.mu.Unlock()

	return profile, nil
}

// Logout clears store and memory synchronously. No upstream call. A stale
// background validation for the old state finds its pointer replaced and
// cannot resurrect the session.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.states, sessionID)
	m.mu.Unlock()
	return m.store.Delete(ctx, sessionID)
}

// UpdateUser overwrites the profile snapshot and re-persists it alongside the
// existing token. The token is not re-validated.
func (m *Manager) UpdateUser(ctx context.Context, sessionID string, raw json.RawMessage) (*Profile, error) {
	profile, err := ParseProfile(raw)
	if err != nil {
		return nil, err
	}

	st := m.current(sessionID)
	if st == nil {
		return nil, ErrNotFound
	}
	st.mu.RLock()
	token := st.token
	st.mu.RUnlock()
	if token == "" {
		return nil, ErrNotFound
	}

	if err := m.store.Save(ctx, sessionID, Record{Token: token, Profile: profile.JSON()}); err != nil {
		return nil, err
	}
	st.set(token, profile)
	st.touch(m.stateTTL)
	return profile, nil
}

// Invalidate force-clears a session and announces it on the bus. Used when
// the API rejects the session's token mid-flight.
func (m *Manager) Invalidate(ctx context.Context, sessionID, reason string) {
	m.mu.Lock()
	_, existed := m.states[sessionID]
	delete(m.states, sessionID)
	m.mu.Unlock()

	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.logger.Error("failed to clear invalidated session", "session_id", sessionID, "error", err)
	}
	if existed {
		m.logger.Info("session invalidated", "session_id", sessionID, "reason", reason)
	}
	m.bus.Publish(Invalidation{SessionID: sessionID, Reason: reason})
}

// Token implements upstream.TokenSource: the bearer token is read from the
// store on every outgoing call.
func (m *Manager) Token(ctx context.Context, sessionID string) (string, error) {
	rec, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.Token, nil
}

// Snapshot returns the in-memory view without hydrating.
func (m *Manager) Snapshot(sessionID string) State {
	st := m.current(sessionID)
	if st == nil {
		return State{SessionID: sessionID}
	}
	return st.snapshot(sessionID)
}

// IsAuthenticated reports whether the session currently has a user.
func (m *Manager) IsAuthenticated(sessionID string) bool {
	return m.Snapshot(sessionID).Authenticated()
}

// HasRole compares the session's role by exact string match.
func (m *Manager) HasRole(sessionID, role string) bool {
	return m.Snapshot(sessionID).HasRole(role)
}
