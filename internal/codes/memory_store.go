package codes

import (
	"context"
	"sync"
	"time"
)

type memoryKey struct {
	subjectID int64
	purpose   Purpose
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore keeps pending codes in process memory behind a single mutex.
// Expired entries are evicted lazily when read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[memoryKey]memoryEntry
	window  time.Duration
	buffer  time.Duration

	now func() time.Time
}

// NewMemoryStore builds an in-memory store. Non-positive window or buffer
// fall back to the defaults.
func NewMemoryStore(window, buffer time.Duration) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	if buffer <= 0 || buffer >= window {
		buffer = DefaultCooldownBuffer
	}
	return &MemoryStore{
		entries: make(map[memoryKey]memoryEntry),
		window:  window,
		buffer:  buffer,
		now:     time.Now,
	}
}

func (s *MemoryStore) Issue(_ context.Context, subjectID int64, purpose Purpose) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{subjectID: subjectID, purpose: purpose}
	now := s.now()

	if entry, ok := s.entries[key]; ok && now.Before(entry.expiresAt) {
		remaining := entry.expiresAt.Sub(now)
		if remaining > s.window-s.buffer {
			return "", &RetryAfterError{Wait: remaining - (s.window - s.buffer)}
		}
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	s.entries[key] = memoryEntry{code: code, expiresAt: now.Add(s.window)}
	return code, nil
}

func (s *MemoryStore) Peek(_ context.Context, subjectID int64, purpose Purpose) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.peekLocked(memoryKey{subjectID: subjectID, purpose: purpose})
	return code, ok, nil
}

func (s *MemoryStore) Consume(_ context.Context, subjectID int64, purpose Purpose, submitted string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{subjectID: subjectID, purpose: purpose}
	code, ok := s.peekLocked(key)
	if !ok || code != submitted {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, subjectID int64, purpose Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, memoryKey{subjectID: subjectID, purpose: purpose})
	return nil
}

func (s *MemoryStore) peekLocked(key memoryKey) (string, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return entry.code, true
}
