package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Store_CreateAndInitialize(t *testing.T) {
	// Arrange & Act
	s := New[int]()

	// Assert
	assert.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
}

func Test_Store_InsertAtAndGet(t *testing.T) {
	// Arrange
	s := New[string]()

	// Act
	s.InsertAt(5, "hello")

	// Assert
	v, ok := s.Get(5)
	assert.True(t, ok)
	assert.Equal(t, "hello", *v)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has(5))
	assert.False(t, s.Has(4))
}

func Test_Store_InsertAtReplacesExistingSlot(t *testing.T) {
	// Arrange
	s := New[int]()
	s.InsertAt(2, 10)

	// Act
	s.InsertAt(2, 20)

	// Assert
	v, ok := s.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 20, *v)
	assert.Equal(t, 1, s.Len())
}

func Test_Store_Erase(t *testing.T) {
	// Arrange
	s := New[int]()
	s.InsertAt(3, 42)

	// Act
	ok := s.Erase(3)

	// Assert
	assert.True(t, ok)
	assert.False(t, s.Has(3))
	assert.Equal(t, 0, s.Len())
}

func Test_Store_EraseMissingSlotReturnsFalse(t *testing.T) {
	// Arrange
	s := New[int]()

	// Act
	ok := s.Erase(9)

	// Assert
	assert.False(t, ok)
}

func Test_Store_ForEachVisitsOnlyPresentSlots(t *testing.T) {
	// Arrange
	s := New[int]()
	s.InsertAt(0, 1)
	s.InsertAt(4, 2)
	s.Erase(0)

	// Act
	seen := map[uint64]int{}
	s.ForEach(func(index uint64, value *int) {
		seen[index] = *value
	})

	// Assert
	assert.Len(t, seen, 1)
	assert.Equal(t, 2, seen[4])
}
