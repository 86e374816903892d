// Package storage implements the sparse store described in SPEC_FULL.md
// §2 item 1: a grow-only, dense-indexed array of optional values, one
// per registered component type.
//
// It is deliberately index-agnostic (plain uint64, not ecs.EntityID) so
// it has no import-cycle dependency on package ecs; the ecs package
// converts EntityID<->uint64 at its boundary.
package storage

// Store is a grow-only sequence of optional T, indexed by a dense
// integer id. Unlike the teacher's entity-only SparseSet, Store carries
// the component value itself in each slot, since the runtime's sparse
// store must hold component *data*, not just membership.
type Store[T any] struct {
	slots   []T
	present []bool
	size    int // count of present slots, for Len()
}

// New creates an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{}
}

// InsertAt grows the backing arrays with empty slots as needed and sets
// slot index to value, replacing the slot if already present.
func (s *Store[T]) InsertAt(index uint64, value T) {
	s.growTo(index)
	if !s.present[index] {
		s.size++
	}
	s.slots[index] = value
	s.present[index] = true
}

// EmplaceAt is equivalent to InsertAt for Go (no separate placement-new).
func (s *Store[T]) EmplaceAt(index uint64, value T) {
	s.InsertAt(index, value)
}

// Erase clears slot index without shrinking the backing array.
func (s *Store[T]) Erase(index uint64) bool {
	if index >= uint64(len(s.present)) || !s.present[index] {
		return false
	}
	var zero T
	s.slots[index] = zero
	s.present[index] = false
	s.size--
	return true
}

// Get returns a pointer to the value at index and whether it is present.
// The pointer is valid until the next InsertAt/EmplaceAt call that grows
// the backing array.
func (s *Store[T]) Get(index uint64) (*T, bool) {
	if index >= uint64(len(s.present)) || !s.present[index] {
		return nil, false
	}
	return &s.slots[index], true
}

// Has reports whether index holds a present slot.
func (s *Store[T]) Has(index uint64) bool {
	return index < uint64(len(s.present)) && s.present[index]
}

// Len returns the number of occupied slots.
func (s *Store[T]) Len() int {
	return s.size
}

// Cap returns the current backing-array length (highest index + 1 the
// store has ever grown to).
func (s *Store[T]) Cap() int {
	return len(s.present)
}

// ForEach visits every occupied slot in ascending index order. fn must
// not mutate the store's shape (InsertAt growing it); Erase is safe.
func (s *Store[T]) ForEach(fn func(index uint64, value *T)) {
	for i := range s.slots {
		if s.present[i] {
			fn(uint64(i), &s.slots[i])
		}
	}
}

func (s *Store[T]) growTo(index uint64) {
	if index < uint64(len(s.present)) {
		return
	}
	newLen := index + 1
	if cap(s.slots) >= int(newLen) {
		s.slots = s.slots[:newLen]
		s.present = s.present[:newLen]
		return
	}
	grown := make([]T, newLen)
	copy(grown, s.slots)
	s.slots = grown
	presentGrown := make([]bool, newLen)
	copy(presentGrown, s.present)
	s.present = presentGrown
}

// GetIndex performs the linear search the spec calls out as tooling-only
// (§4.1 "used only by tooling"): the first index whose slot pointer
// equals the one returned by Get, or false.
func (s *Store[T]) GetIndex(want *T) (uint64, bool) {
	for i := range s.slots {
		if s.present[i] && &s.slots[i] == want {
			return uint64(i), true
		}
	}
	return 0, false
}
