// Package tokenstore persists session credentials for the planner client.
//
// The browser frontend this client descends from kept everything in
// localStorage; KV is the equivalent abstraction here, with in-memory, file
// and redis backends. A Store wraps a KV with the fixed keys the backend's
// web clients already use, so a Go client and a browser client pointed at
// the same state agree on layout.
package tokenstore

import "sync"

// KV is the minimal key/value contract a Store needs. Implementations must
// be safe for concurrent use.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

var _ KV = (*MemKV)(nil)

// MemKV is an in-memory KV. It is the default backend for tests and for
// short-lived processes that have no business persisting credentials.
type MemKV struct {
	values map[string]string
	lock   sync.RWMutex
}

// NewMemKV creates an empty in-memory KV.
func NewMemKV() *MemKV {
	return &MemKV{values: make(map[string]string)}
}

func (m *MemKV) Get(key string) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemKV) Set(key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemKV) Delete(key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.values, key)
	return nil
}
