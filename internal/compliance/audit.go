// Package compliance records auth activity for healthcare audit requirements.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEventType represents the type of audited auth event.
type AuditEventType string

const (
	// EventLoginSucceeded is logged on a successful credential exchange.
	EventLoginSucceeded AuditEventType = "auth.login_succeeded"
	// EventLoginRejected is logged when the records API rejects credentials.
	EventLoginRejected AuditEventType = "auth.login_rejected"
	// EventRegistered is logged when an account is created through the portal.
	EventRegistered AuditEventType = "auth.registered"
	// EventLogout is logged on explicit logout.
	EventLogout AuditEventType = "auth.logout"
	// EventSessionInvalidated is logged when a session is force-cleared after
	// the records API rejected its token.
	EventSessionInvalidated AuditEventType = "auth.session_invalidated"
)

// AuditEvent is an immutable auth audit record.
type AuditEvent struct {
	ID        string          `json:"id"`
	EventType AuditEventType  `json:"event_type"`
	SessionID string          `json:"session_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Email     string          `json:"email,omitempty"`
	Role      string          `json:"role,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditService handles auth audit logging. A nil service drops events, so
// callers do not need to branch on whether auditing is configured.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// LogEvent records an auth audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if s == nil || s.db == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO auth_audit_events (
			id, event_type, session_id, user_id, email, role, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		nullString(event.SessionID),
		nullString(event.UserID),
		nullString(event.Email),
		nullString(event.Role),
		event.Details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}
	return nil
}

// LogLogin records a login attempt outcome.
func (s *AuditService) LogLogin(ctx context.Context, sessionID, userID, email, role string, succeeded bool) error {
	eventType := EventLoginSucceeded
	if !succeeded {
		eventType = EventLoginRejected
	}
	return s.LogEvent(ctx, AuditEvent{
		EventType: eventType,
		SessionID: sessionID,
		UserID:    userID,
		Email:     email,
		Role:      role,
	})
}

// LogRegistration records a successful account creation.
func (s *AuditService) LogRegistration(ctx context.Context, sessionID, userID, email, role string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventRegistered,
		SessionID: sessionID,
		UserID:    userID,
		Email:     email,
		Role:      role,
	})
}

// LogLogout records an explicit logout.
func (s *AuditService) LogLogout(ctx context.Context, sessionID, userID string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventLogout,
		SessionID: sessionID,
		UserID:    userID,
	})
}

// LogSessionInvalidated records a forced session clear with its reason.
func (s *AuditService) LogSessionInvalidated(ctx context.Context, sessionID, reason string) error {
	details, _ := json.Marshal(map[string]string{"reason": reason})
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventSessionInvalidated,
		SessionID: sessionID,
		Details:   details,
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
