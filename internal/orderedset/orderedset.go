// Package orderedset provides a set that remembers insertion order.
package orderedset

// Set is a sequence plus a membership index. The zero value is not usable;
// call New.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// New creates an empty set
func New[T comparable]() *Set[T] {
	return &Set[T]{index: make(map[T]struct{})}
}

// Add appends v unless it is already present. It reports whether v was added.
func (s *Set[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is in the set
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of items
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the items in insertion order
func (s *Set[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Head returns at most n items in insertion order
func (s *Set[T]) Head(n int) []T {
	if n > len(s.items) {
		n = len(s.items)
	}
	if n < 0 {
		n = 0
	}
	out := make([]T, n)
	copy(out, s.items[:n])
	return out
}
