package events

import (
	"time"

	"github.com/spec-kit/hr-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionCreated         EventType = "session_created"
	EventSessionRevoked         EventType = "session_revoked"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.SubjectType `json:"type"`
	SubjectID string             `json:"subject_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     *Actor      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionCreatedPayload payload.
type SessionCreatedPayload struct {
	SessionUUID string `json:"session_uuid"`
	UserAgent   string `json:"user_agent"`
	IPAddress   string `json:"ip_address"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	SessionUUID string `json:"session_uuid"`
}

// PasswordResetRequestedPayload payload. Token is the encrypted reset token
// embedded into the emailed link; the raw secret is never published.
type PasswordResetRequestedPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Email string `json:"email"`
}
