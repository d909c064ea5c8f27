package db

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Backend.Load when nothing is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// Backend persists serialized collections by key. Save must apply every entry
// or none of them where the underlying storage allows it.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, entries map[string][]byte) error
	Close() error
}

// MemoryBackend keeps everything in process. Used by tests and --storage=memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Save(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
