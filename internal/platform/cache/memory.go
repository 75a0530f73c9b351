// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// Memory is a process-local [Cache]. Values are stored JSON encoded so
// callers never share mutable state with the cache.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[Scope]map[string]memoryEntry

	// generations counts the invalidations of each scope.
	generations map[Scope]uint64
}

// NewMemory creates a [Memory] cache. A zero ttl keeps entries until the
// scope is invalidated.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:         time.Now,
		entries:     make(map[Scope]map[string]memoryEntry),
		generations: make(map[Scope]uint64),
	}
}

func (m *Memory) Get(_ context.Context, scope Scope, key string, dest any) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[scope][key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, scope Scope, key string, value any) error {
	entry, err := m.entry(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(scope, key, entry)
	return nil
}

func (m *Memory) Generation(_ context.Context, scope Scope) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generations[scope], nil
}

func (m *Memory) SetIfGeneration(_ context.Context, scope Scope, generation uint64, key string, value any) (bool, error) {
	entry, err := m.entry(value)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generations[scope] != generation {
		return false, nil
	}
	m.store(scope, key, entry)
	return true, nil
}

func (m *Memory) Invalidate(_ context.Context, scope Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, scope)
	m.generations[scope]++
	return nil
}

// Len reports the number of live entries in a scope.
func (m *Memory) Len(scope Scope) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[scope])
}

func (m *Memory) entry(value any) (memoryEntry, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return memoryEntry{}, err
	}

	entry := memoryEntry{raw: raw}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	return entry, nil
}

// store writes entry; the caller holds mu.
func (m *Memory) store(scope Scope, key string, entry memoryEntry) {
	if m.entries[scope] == nil {
		m.entries[scope] = make(map[string]memoryEntry)
	}
	m.entries[scope][key] = entry
}
