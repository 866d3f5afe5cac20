package auth

import (
	"errors"
	"fmt"
)

// Definitive denial reasons. These are authorization verdicts: the token or
// the subject is invalid and retrying the same request cannot succeed.
var (
	// ErrTokenMalformed covers bad structure and bad signatures alike, so a
	// caller cannot tell a tampered token from a garbled one.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired means the cryptographic expiry has passed, regardless
	// of allow-list state.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked means the token is well-formed and unexpired but its
	// issuance id is no longer on the allow-list.
	ErrTokenRevoked = errors.New("token revoked")

	ErrEmailNotVerified = errors.New("email not verified")
	ErrUnknownSubject   = errors.New("unknown subject")
)

// StorageError reports that a dependent system failed while the decision was
// being made. It is not an authorization verdict and callers must surface it
// as a retryable failure rather than collapsing it into a denial.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
