package typeutil

import (
	"sync"
	"weak"
)

// WeakMap maps pointers to values without keeping the keys alive. Entries
// whose key has been collected are dropped lazily. A value that refers
// back to its own key keeps that key alive.
type WeakMap[K any, V any] struct {
	mu      sync.Mutex
	entries map[weak.Pointer[K]]V
	sweepAt int
}

// NewWeakMap creates an empty map.
func NewWeakMap[K any, V any]() *WeakMap[K, V] {
	return &WeakMap[K, V]{entries: make(map[weak.Pointer[K]]V)}
}

func (m *WeakMap[K, V]) Set(key *K, v V) {
	if key == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[weak.Make(key)] = v
	if len(m.entries) >= m.sweepAt {
		m.sweepLocked()
		m.sweepAt = 2*len(m.entries) + 16
	}
}

func (m *WeakMap[K, V]) Get(key *K) (V, bool) {
	var zero V
	if key == nil {
		return zero, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[weak.Make(key)]
	return v, ok
}

// Delete removes key and reports whether it was present.
func (m *WeakMap[K, V]) Delete(key *K) bool {
	if key == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	wp := weak.Make(key)
	_, ok := m.entries[wp]
	delete(m.entries, wp)
	return ok
}

// Len sweeps collected keys and returns the number of live entries.
func (m *WeakMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.entries)
}

// Range calls fn for each live entry until fn returns false. fn must not
// modify the map.
func (m *WeakMap[K, V]) Range(fn func(key *K, v V) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for wp, v := range m.entries {
		k := wp.Value()
		if k == nil {
			delete(m.entries, wp)
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Clear removes every entry.
func (m *WeakMap[K, V]) Clear() {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
}

func (m *WeakMap[K, V]) sweepLocked() {
	for wp := range m.entries {
		if wp.Value() == nil {
			delete(m.entries, wp)
		}
	}
}
