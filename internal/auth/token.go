package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

// Claims describes the signed session payload. The jti lives in
// RegisteredClaims.ID and doubles as the revocation handle.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies signed sessions. A token is only honored
// while its issuance id is present on the persisted allow-list, so sessions
// can be revoked independently of their cryptographic expiry.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	tokens repository.TokenRepository
}

// NewTokenIssuer builds an issuer with the given session lifetime.
func NewTokenIssuer(secret string, ttl time.Duration, tokens repository.TokenRepository) *TokenIssuer {
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, tokens: tokens}
}

// Issue mints a session for the subject. The allow-list row is written
// before the token is signed and returned; a token without a durable row
// would fail every later verification, so a storage failure here aborts
// issuance entirely.
func (ti *TokenIssuer) Issue(ctx context.Context, subjectID int64) (*domain.SignedSession, error) {
	entry := &domain.AllowListEntry{
		IssuanceID: uuid.NewString(),
		SubjectID:  subjectID,
		ExpiresAt:  time.Now().Add(ti.ttl),
	}

	if err := ti.tokens.Insert(ctx, entry); err != nil {
		return nil, newStorageError("allow-list insert", err)
	}

	claims := &Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        entry.IssuanceID,
			ExpiresAt: jwt.NewNumericDate(entry.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return nil, err
	}

	return &domain.SignedSession{
		Token:      signed,
		SubjectID:  subjectID,
		IssuanceID: entry.IssuanceID,
		ExpiresAt:  entry.ExpiresAt,
	}, nil
}

// Verify checks signature, expiry and allow-list membership, in that order.
// Signature and expiry are evaluated before any storage access, so a
// tampered token cannot be told apart from a revoked one by timing the
// database round trip.
func (ti *TokenIssuer) Verify(ctx context.Context, raw string) (*domain.SignedSession, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}

	active, err := ti.tokens.ListActiveBySubject(ctx, claims.UserID)
	if err != nil {
		return nil, newStorageError("allow-list lookup", err)
	}

	valid := false
	for _, jti := range active {
		if jti == claims.ID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrTokenRevoked
	}

	return &domain.SignedSession{
		Token:      raw,
		SubjectID:  claims.UserID,
		IssuanceID: claims.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

// RevokeAll invalidates every outstanding session for the subject. Used on
// password change ("log out everywhere").
func (ti *TokenIssuer) RevokeAll(ctx context.Context, subjectID int64) error {
	if err := ti.tokens.DeleteAllBySubject(ctx, subjectID); err != nil {
		return newStorageError("allow-list revocation", err)
	}
	return nil
}
