package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/cache"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

// Authority turns an inbound bearer token into an authorization decision.
// Per-subject user state is served from a bounded LRU cache so the hot path
// of every authenticated request costs at most one allow-list round trip.
type Authority struct {
	issuer *TokenIssuer
	users  repository.UserRepository
	cache  *cache.Cache[int64, domain.User]
}

// NewAuthority builds the authority around an issuer and a user cache.
func NewAuthority(issuer *TokenIssuer, users repository.UserRepository, userCache *cache.Cache[int64, domain.User]) *Authority {
	return &Authority{issuer: issuer, users: users, cache: userCache}
}

// Authorize verifies the token and enforces the verified-email policy.
// It returns one of the package sentinels on denial, or *StorageError when
// a dependency failed and no verdict could be reached.
func (a *Authority) Authorize(ctx context.Context, raw string) (*domain.Identity, error) {
	session, err := a.issuer.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	user, err := a.loadUser(ctx, session.SubjectID)
	if err != nil {
		return nil, err
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return &domain.Identity{SubjectID: user.UID}, nil
}

func (a *Authority) loadUser(ctx context.Context, uid int64) (*domain.User, error) {
	if cached, ok := a.cache.Get(uid); ok {
		return &cached, nil
	}

	user, err := a.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownSubject
		}
		return nil, newStorageError("user lookup", err)
	}

	a.cache.Insert(uid, *user)
	return user, nil
}

// InvalidateUser drops the cached state for a subject. Every write that
// changes a cached field calls this before acknowledging success, so a
// subsequent Authorize never observes the old value.
func (a *Authority) InvalidateUser(uid int64) {
	a.cache.Remove(uid)
}

// Issuer exposes the underlying token issuer for flows that mint sessions.
func (a *Authority) Issuer() *TokenIssuer {
	return a.issuer
}
