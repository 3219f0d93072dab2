package store

import (
	"context"
	"sync"
)

// Memory keeps events in a slice guarded by a mutex.
type Memory struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{events: []Event{}}
}

// Append inserts evt at index 0. It never fails.
func (m *Memory) Append(_ context.Context, evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{})
	copy(m.events[1:], m.events)
	m.events[0] = evt
	return nil
}

// ListAll returns a snapshot of the stored events, newest first.
func (m *Memory) ListAll(_ context.Context) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

// Len returns the number of stored events.
func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events), nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
