// Package observer holds the observer sets and the wiring table that
// connects components to each other.
package observer

import (
	"reflect"
	"sync"
)

// Set is an insertion-ordered set of observers safe for concurrent use.
// Observers are matched with ==, so T is normally an interface satisfied by
// pointer types. An observer whose dynamic type cannot be compared is
// refused by Add.
type Set[T comparable] struct {
	mu    sync.RWMutex
	items []T
}

// NewSet returns a set seeded with the given observers. Duplicates are
// dropped.
func NewSet[T comparable](initial ...T) *Set[T] {
	s := &Set[T]{}
	for _, o := range initial {
		s.Add(o)
	}
	return s
}

// Add inserts o. It returns false if o was already present or cannot be
// compared.
func (s *Set[T]) Add(o T) bool {
	if !isComparable(o) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing == o {
			return false
		}
	}
	s.items = append(s.items, o)
	return true
}

// isComparable reports whether v's dynamic type supports ==. Only such
// values are stored, so comparisons in Remove never panic.
func isComparable(v any) bool {
	t := reflect.TypeOf(v)
	return t == nil || t.Comparable()
}

// Remove deletes o. It returns false if o was not present.
func (s *Set[T]) Remove(o T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if existing == o {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of observers.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot returns a copy of the observers in insertion order.
func (s *Set[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Notify calls fn for every observer. The set is not locked while fn runs,
// so observers may add or remove themselves.
func (s *Set[T]) Notify(fn func(T)) {
	for _, o := range s.Snapshot() {
		fn(o)
	}
}
