package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory holds counters in process memory; a restart clears them.
type Memory struct {
	mu           sync.Mutex
	limit        int
	window       time.Duration
	entries      map[string]*entry
	lastCleanup  time.Time
	cleanupEvery time.Duration
}

type entry struct {
	count int
	reset time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:        limit,
		window:       window,
		entries:      map[string]*entry{},
		cleanupEvery: window,
	}
}

func (l *Memory) Allow(_ context.Context, key string, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastCleanup.IsZero() {
		l.lastCleanup = now
	}
	if now.Sub(l.lastCleanup) >= l.cleanupEvery {
		for k, v := range l.entries {
			if !now.Before(v.reset) {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	e, ok := l.entries[key]
	if !ok || !now.Before(e.reset) {
		e = &entry{count: 1, reset: now.Add(l.window)}
		l.entries[key] = e
		return Decision{Allowed: true, ResetAt: e.reset}, nil
	}

	if e.count >= l.limit {
		return Decision{Allowed: false, ResetAt: e.reset}, nil
	}

	e.count++
	return Decision{Allowed: true, ResetAt: e.reset}, nil
}
