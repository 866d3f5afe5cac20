package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/cache"
	"github.com/spec-kit/account-service/internal/domain"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[int64]domain.User
	reads   int
	failing bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.UID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, uid int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errRepoDown
	}
	r.reads++
	user, ok := r.users[uid]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) SetEmailVerified(_ context.Context, uid int64, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerified = verified
	user.UpdatedAt = time.Now()
	r.users[uid] = user
	return nil
}

func (r *fakeUserRepo) SetPasswordHash(_ context.Context, uid int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	r.users[uid] = user
	return nil
}

func (r *fakeUserRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func newTestAuthority(t *testing.T, users *fakeUserRepo) (*Authority, *TokenIssuer) {
	t.Helper()
	issuer := NewTokenIssuer("test-secret", time.Hour, &fakeTokenRepo{})
	userCache, err := cache.New[int64, domain.User](16)
	require.NoError(t, err)
	return NewAuthority(issuer, users, userCache), issuer
}

func TestAuthorizeVerifiedUser(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	users.users[42] = domain.User{UID: 42, Email: "a@b.c", EmailVerified: true}
	authority, issuer := newTestAuthority(t, users)

	session, err := issuer.Issue(context.Background(), 42)
	require.NoError(t, err)

	identity, err := authority.Authorize(context.Background(), session.Token)
	require.NoError(t, err)
	require.Equal(t, int64(42), identity.SubjectID)
}

func TestAuthorizeUnverifiedEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	users.users[7] = domain.User{UID: 7, Email: "a@b.c", EmailVerified: false}
	authority, issuer := newTestAuthority(t, users)

	session, err := issuer.Issue(context.Background(), 7)
	require.NoError(t, err)

	_, err = authority.Authorize(context.Background(), session.Token)
	require.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestAuthorizeUnknownSubject(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	authority, issuer := newTestAuthority(t, users)

	session, err := issuer.Issue(context.Background(), 99)
	require.NoError(t, err)

	_, err = authority.Authorize(context.Background(), session.Token)
	require.ErrorIs(t, err, ErrUnknownSubject)
}

func TestAuthorizeServesRepeatLookupsFromCache(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	users.users[1] = domain.User{UID: 1, EmailVerified: true}
	authority, issuer := newTestAuthority(t, users)

	session, err := issuer.Issue(context.Background(), 1)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := authority.Authorize(context.Background(), session.Token)
		require.NoError(t, err)
	}
	require.Equal(t, 1, users.readCount(), "only the first authorize should hit the store")
}

func TestInvalidationIsObservedByNextAuthorize(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	users.users[5] = domain.User{UID: 5, EmailVerified: false}
	authority, issuer := newTestAuthority(t, users)

	session, err := issuer.Issue(context.Background(), 5)
	require.NoError(t, err)

	_, err = authority.Authorize(context.Background(), session.Token)
	require.ErrorIs(t, err, ErrEmailNotVerified)

	// Write path: flip the flag, then invalidate before acknowledging.
	require.NoError(t, users.SetEmailVerified(context.Background(), 5, true))
	authority.InvalidateUser(5)

	identity, err := authority.Authorize(context.Background(), session.Token)
	require.NoError(t, err)
	require.Equal(t, int64(5), identity.SubjectID)
}

func TestAuthorizeStorageFailure(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	users.users[3] = domain.User{UID: 3, EmailVerified: true}
	authority, issuer := newTestAuthority(t, users)

	session, err := issuer.Issue(context.Background(), 3)
	require.NoError(t, err)

	users.failing = true

	_, err = authority.Authorize(context.Background(), session.Token)
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	require.False(t, errors.Is(err, ErrUnknownSubject))
}
