package codes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps pending codes in Redis with the validity window as the
// key TTL, so expiry needs no sweep at all. The cool-down is derived from
// the remaining TTL of the existing key.
type RedisStore struct {
	client *redis.Client
	window time.Duration
	buffer time.Duration
}

// NewRedisStore builds a Redis-backed store. Non-positive window or buffer
// fall back to the defaults.
func NewRedisStore(client *redis.Client, window, buffer time.Duration) *RedisStore {
	if window <= 0 {
		window = DefaultWindow
	}
	if buffer <= 0 || buffer >= window {
		buffer = DefaultCooldownBuffer
	}
	return &RedisStore{client: client, window: window, buffer: buffer}
}

func (s *RedisStore) key(subjectID int64, purpose Purpose) string {
	return "otc:" + string(purpose) + ":" + strconv.FormatInt(subjectID, 10)
}

func (s *RedisStore) Issue(ctx context.Context, subjectID int64, purpose Purpose) (string, error) {
	key := s.key(subjectID, purpose)

	remaining, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("code store unavailable: %w", err)
	}
	if remaining > s.window-s.buffer {
		return "", &RetryAfterError{Wait: remaining - (s.window - s.buffer)}
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, key, code, s.window).Err(); err != nil {
		return "", fmt.Errorf("code store unavailable: %w", err)
	}
	return code, nil
}

func (s *RedisStore) Peek(ctx context.Context, subjectID int64, purpose Purpose) (string, bool, error) {
	code, err := s.client.Get(ctx, s.key(subjectID, purpose)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("code store unavailable: %w", err)
	}
	return code, true, nil
}

func (s *RedisStore) Consume(ctx context.Context, subjectID int64, purpose Purpose, submitted string) (bool, error) {
	code, ok, err := s.Peek(ctx, subjectID, purpose)
	if err != nil || !ok || code != submitted {
		return false, err
	}
	if err := s.client.Del(ctx, s.key(subjectID, purpose)).Err(); err != nil {
		return false, fmt.Errorf("code store unavailable: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Delete(ctx context.Context, subjectID int64, purpose Purpose) error {
	if err := s.client.Del(ctx, s.key(subjectID, purpose)).Err(); err != nil {
		return fmt.Errorf("code store unavailable: %w", err)
	}
	return nil
}
