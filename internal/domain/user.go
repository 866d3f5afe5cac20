package domain

import "time"

// User is the authoritative account record. The EmailVerified flag gates
// access to protected endpoints; a denormalized copy of it lives in the
// user-state cache and must be invalidated whenever the record mutates.
type User struct {
	UID           int64
	Username      string
	Email         string
	EmailVerified bool
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Identity is the accepted outcome of an authorization decision.
type Identity struct {
	SubjectID int64
}
