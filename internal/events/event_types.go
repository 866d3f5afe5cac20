package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered          EventType = "user_registered"
	EventVerificationCodeIssued  EventType = "verification_code_issued"
	EventPasswordResetCodeIssued EventType = "password_reset_code_issued"
	EventEmailVerified           EventType = "email_verified"
	EventPasswordChanged         EventType = "password_changed"
)

// Event represents an account lifecycle event emitted by services.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	SubjectID int64          `json:"subject_id"`
	Email     string         `json:"email"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}
