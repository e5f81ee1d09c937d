// Package cache memoizes parsed messages by message ID so sources do not
// decode the same message twice.
package cache

import (
	"context"
	gosync "sync"

	"github.com/nhle/mailtasks/internal/model"
)

// MessageCache maps a message ID to its parsed content.
type MessageCache interface {
	// Get returns the cached message and whether it was present.
	Get(ctx context.Context, id string) (model.Message, bool, error)

	// Put stores msg under msg.ID, replacing any previous entry.
	Put(ctx context.Context, msg model.Message) error
}

// Memory is an in-process MessageCache. The zero value is not usable; use
// NewMemory.
type Memory struct {
	mu      gosync.RWMutex
	entries map[string]model.Message
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]model.Message)}
}

func (m *Memory) Get(_ context.Context, id string) (model.Message, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.entries[id]
	return msg, ok, nil
}

func (m *Memory) Put(_ context.Context, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[msg.ID] = msg
	return nil
}

// Len returns the number of cached messages.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
