// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is a goroutine-safe in-memory Store.
// A zero quota means unlimited.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]string
	quota    int
	disabled bool
}

func NewMemory(quota int) *Memory {
	return &Memory{data: make(map[string]string), quota: quota}
}

// Disable makes every operation fail with ErrUnavailable, like a browser with
// storage turned off.
func (m *Memory) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = true
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disabled {
		return "", false, ErrUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return ErrUnavailable
	}

	if m.quota > 0 {
		used := 0
		for k, v := range m.data {
			if k != key {
				used += entrySize(k, v)
			}
		}
		if used+entrySize(key, value) > m.quota {
			return ErrQuotaExceeded
		}
	}

	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disabled {
		return nil, ErrUnavailable
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return ErrUnavailable
	}
	m.data = make(map[string]string)
	return nil
}

// DefaultSessionIdle is how long an unused session store is kept. The
// session cookie has no MaxAge, so this bounds its server side lifetime.
const DefaultSessionIdle = 12 * time.Hour

type sessionEntry struct {
	store    *Memory
	lastSeen time.Time
}

// Sessions hands out one Memory store per browser session id. Stores unused
// for longer than idle are dropped; a zero idle keeps them forever.
type Sessions struct {
	mu        sync.Mutex
	stores    map[string]*sessionEntry
	quota     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewSessions(quota int, idle time.Duration) *Sessions {
	return &Sessions{
		stores: make(map[string]*sessionEntry),
		quota:  quota,
		idle:   idle,
		now:    time.Now,
	}
}

// Get returns the store for sessionID, creating it on first use
func (s *Sessions) Get(sessionID string) *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	e, ok := s.stores[sessionID]
	if !ok {
		e = &sessionEntry{store: NewMemory(s.quota)}
		s.stores[sessionID] = e
	}
	e.lastSeen = now
	return e.store
}

// sweep drops idle stores, at most once per quarter of the idle time
func (s *Sessions) sweep(now time.Time) {
	if s.idle <= 0 || now.Sub(s.lastSweep) < s.idle/4 {
		return
	}
	s.lastSweep = now
	for id, e := range s.stores {
		if now.Sub(e.lastSeen) >= s.idle {
			delete(s.stores, id)
		}
	}
}

// Drop forgets a session's store
func (s *Sessions) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, sessionID)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
