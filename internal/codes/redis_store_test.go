package codes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, DefaultWindow, DefaultCooldownBuffer), mr
}

func TestRedisIssueAndConsume(t *testing.T) {
	store, _ := newRedisStore(t)

	code, err := store.Issue(context.Background(), 42, PurposeEmailVerify)
	require.NoError(t, err)
	require.Len(t, code, 6)

	got, ok, err := store.Peek(context.Background(), 42, PurposeEmailVerify)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, code, got)

	ok, err = store.Consume(context.Background(), 42, PurposeEmailVerify, code)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.Peek(context.Background(), 42, PurposeEmailVerify)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisIssueWithinCooldownIsThrottled(t *testing.T) {
	store, mr := newRedisStore(t)

	_, err := store.Issue(context.Background(), 42, PurposeEmailVerify)
	require.NoError(t, err)

	_, err = store.Issue(context.Background(), 42, PurposeEmailVerify)
	var retryErr *RetryAfterError
	require.ErrorAs(t, err, &retryErr)
	require.Greater(t, retryErr.Wait, time.Duration(0))

	mr.FastForward(2 * time.Minute)
	code, err := store.Issue(context.Background(), 42, PurposeEmailVerify)
	require.NoError(t, err)
	require.Len(t, code, 6)
}

func TestRedisCodeExpiresWithWindow(t *testing.T) {
	store, mr := newRedisStore(t)

	_, err := store.Issue(context.Background(), 7, PurposePasswordReset)
	require.NoError(t, err)

	mr.FastForward(11 * time.Minute)

	_, ok, err := store.Peek(context.Background(), 7, PurposePasswordReset)
	require.NoError(t, err)
	require.False(t, ok)

	// Expired means gone, not pending, so reissue is immediate.
	_, err = store.Issue(context.Background(), 7, PurposePasswordReset)
	require.NoError(t, err)
}

func TestRedisConsumeMismatchKeepsCode(t *testing.T) {
	store, _ := newRedisStore(t)

	code, err := store.Issue(context.Background(), 9, PurposeEmailVerify)
	require.NoError(t, err)

	ok, err := store.Consume(context.Background(), 9, PurposeEmailVerify, "000000")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Consume(context.Background(), 9, PurposeEmailVerify, code)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisKeysAreScopedByPurpose(t *testing.T) {
	store, _ := newRedisStore(t)

	verify, err := store.Issue(context.Background(), 5, PurposeEmailVerify)
	require.NoError(t, err)
	reset, err := store.Issue(context.Background(), 5, PurposePasswordReset)
	require.NoError(t, err)

	ok, err := store.Consume(context.Background(), 5, PurposePasswordReset, verify)
	require.NoError(t, err)
	if verify != reset {
		require.False(t, ok)
	}
}
