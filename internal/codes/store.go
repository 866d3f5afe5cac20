package codes

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Purpose scopes a one-time code to the flow that issued it. A subject has
// at most one active code per purpose.
type Purpose string

const (
	PurposeEmailVerify   Purpose = "email_verify"
	PurposePasswordReset Purpose = "password_reset"
)

const (
	// DefaultWindow is the total validity of an issued code.
	DefaultWindow = 10 * time.Minute
	// DefaultCooldownBuffer is how much of the window must have elapsed
	// before a replacement code may be requested.
	DefaultCooldownBuffer = time.Minute
)

// RetryAfterError rejects code issuance while a previous code is still in
// its cool-down. Wait is the remaining time before a retry can succeed.
type RetryAfterError struct {
	Wait time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("please wait %s before requesting a new code", e.Wait.Round(time.Second))
}

// Store issues, validates and expires short numeric codes keyed by subject
// and purpose.
//
// Two concurrent Issue calls for the same key may both observe no pending
// code and both write; the last write wins and is the one a later Consume
// will match. That race is accepted at this scale.
type Store interface {
	// Issue returns a fresh 6-digit code, or *RetryAfterError while the
	// previous code's cool-down has not elapsed.
	Issue(ctx context.Context, subjectID int64, purpose Purpose) (string, error)
	// Peek returns the pending code if one exists and has not expired.
	// Expired entries are evicted on read.
	Peek(ctx context.Context, subjectID int64, purpose Purpose) (string, bool, error)
	// Consume deletes the entry and returns true iff the submitted code
	// matches the pending one. A mismatch leaves the entry in place so the
	// subject may retry within the window.
	Consume(ctx context.Context, subjectID int64, purpose Purpose, submitted string) (bool, error)
	// Delete drops the pending code, if any.
	Delete(ctx context.Context, subjectID int64, purpose Purpose) error
}

// generateCode draws a 6-digit code from crypto/rand. The 900,000-value
// space resists guessing within the validity window.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
