package authstate

import (
	"context"
	"sync"
)

// DefaultTokenKey is the storage key the token lives under.
const DefaultTokenKey = "authToken"

// Storage is the persistent key/value store holding the token. A missing
// key is reported with found == false, never as an error.
type Storage interface {
	GetItemAsString(ctx context.Context, key string) (value string, found bool, err error)
	RemoveItem(ctx context.Context, key string) error
}

// WritableStorage is a Storage that can also store values.
type WritableStorage interface {
	Storage
	SetItemAsString(ctx context.Context, key, value string) error
}

// MemoryStorage keeps items in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

var _ WritableStorage = (*MemoryStorage)(nil)

// NewMemoryStorage returns a MemoryStorage seeded with items.
func NewMemoryStorage(items map[string]string) *MemoryStorage {
	m := &MemoryStorage{items: make(map[string]string, len(items))}
	for k, v := range items {
		m.items[k] = v
	}
	return m
}

// GetItemAsString implements Storage.
func (m *MemoryStorage) GetItemAsString(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItemAsString implements WritableStorage.
func (m *MemoryStorage) SetItemAsString(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string]string{}
	}
	m.items[key] = value
	return nil
}

// RemoveItem implements Storage.
func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
