// Package memstore provides an in-memory session storage implementation.
//
// It is suitable for tests and single-process use. Nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-commerce-session/session"
)

var _ session.Storage = (*MemStore)(nil)

// MemStore is an in-memory key/value storage. It is safe for concurrent use.
type MemStore struct {
	data map[string][]byte
	lock sync.RWMutex
}

// New creates an empty MemStore.
func New() *MemStore {
	return &MemStore{
		data: make(map[string][]byte),
	}
}

// Get returns a copy of the bytes stored under key.
func (m *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of data under key.
func (m *MemStore) Set(_ context.Context, key string, data []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key.
func (m *MemStore) Delete(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemStore) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.data)
}
