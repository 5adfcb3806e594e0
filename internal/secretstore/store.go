// Package secretstore persists small secrets such as the exchange API key
// pair. It is the only durable storage in the application.
package secretstore

import "sync"

// Store is an opaque key-value secret store. Get reports false when no
// value exists under the key; Delete of a missing key succeeds.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Memory is an in-memory Store, used in tests and as a fallback when no
// durable store is configured.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
