package revocation

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu           sync.Mutex
	records      map[string]time.Time
	now          func() time.Time
	lastCleanup  time.Time
	cleanupEvery time.Duration
}

// NewMemory returns an in-process store. Expired records are dropped on
// lookup and by a full pass at most once per cleanupEvery.
func NewMemory(cleanupEvery time.Duration) *Memory {
	return &Memory{
		records:      map[string]time.Time{},
		now:          time.Now,
		lastCleanup:  time.Now(),
		cleanupEvery: cleanupEvery,
	}
}

func (m *Memory) Exists(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.maybeCleanup(now)

	exp, ok := m.records[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(now) {
		delete(m.records, jti)
		return false, nil
	}
	return true, nil
}

func (m *Memory) Upsert(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.maybeCleanup(now)

	if !expiresAt.After(now) {
		return nil
	}
	m.records[jti] = expiresAt
	return nil
}

func (m *Memory) DeleteExpiredBefore(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.sweep(now)
	m.lastCleanup = now
	return n, nil
}

// Len reports the number of records held, swept or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *Memory) maybeCleanup(now time.Time) {
	if m.cleanupEvery <= 0 || now.Sub(m.lastCleanup) < m.cleanupEvery {
		return
	}
	m.sweep(now)
	m.lastCleanup = now
}

func (m *Memory) sweep(now time.Time) int64 {
	var n int64
	for k, exp := range m.records {
		if !exp.After(now) {
			delete(m.records, k)
			n++
		}
	}
	return n
}
