package lnutils

import "sync"

// SyncMap is a typed view over sync.Map so callers never deal with type
// assertions.
type SyncMap[K comparable, V any] struct {
	m sync.Map
}

// Store sets the value for key.
func (s *SyncMap[K, V]) Store(key K, value V) {
	s.m.Store(key, value)
}

// Load returns the value for key and whether it was present.
func (s *SyncMap[K, V]) Load(key K) (V, bool) {
	v, ok := s.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}

	return v.(V), true
}

// LoadOrStore returns the existing value for key if there is one. Otherwise
// it stores value and returns it. The boolean is true if the value was
// already present.
func (s *SyncMap[K, V]) LoadOrStore(key K, value V) (V, bool) {
	v, loaded := s.m.LoadOrStore(key, value)

	return v.(V), loaded
}

// Delete removes key.
func (s *SyncMap[K, V]) Delete(key K) {
	s.m.Delete(key)
}

// Range calls visit for every entry until it returns false.
func (s *SyncMap[K, V]) Range(visit func(K, V) bool) {
	s.m.Range(func(k, v any) bool {
		return visit(k.(K), v.(V))
	})
}

// Len counts the entries. It walks the whole map.
func (s *SyncMap[K, V]) Len() int {
	n := 0
	s.Range(func(K, V) bool {
		n++
		return true
	})

	return n
}
