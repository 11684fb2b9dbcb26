package simplefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocator__FindFreeDoesNotMutate(t *testing.T) {
	a := newAllocator(4)

	first, ok := a.findFree()
	assert.True(t, ok)
	assert.EqualValues(t, 0, first)

	// Calling findFree again without allocate() must return the same index.
	second, ok := a.findFree()
	assert.True(t, ok)
	assert.EqualValues(t, first, second)
}

func TestAllocator__AllocateIsFirstFit(t *testing.T) {
	a := newAllocator(4)

	first, ok := a.allocate()
	assert.True(t, ok)
	assert.EqualValues(t, 0, first)

	second, ok := a.allocate()
	assert.True(t, ok)
	assert.EqualValues(t, 1, second)

	assert.True(t, a.inUse(0))
	assert.True(t, a.inUse(1))
	assert.False(t, a.inUse(2))
}

func TestAllocator__MarkFreeReopensSlot(t *testing.T) {
	a := newAllocator(2)

	first, _ := a.allocate()
	a.markFree(first)

	assert.False(t, a.inUse(first))

	again, ok := a.allocate()
	assert.True(t, ok)
	assert.Equal(t, first, again)
}

func TestAllocator__ExhaustionReportsFalse(t *testing.T) {
	a := newAllocator(2)

	_, ok := a.allocate()
	assert.True(t, ok)
	_, ok = a.allocate()
	assert.True(t, ok)

	_, ok = a.allocate()
	assert.False(t, ok, "allocate() past capacity should fail, not panic")
}

func TestAllocator__FreeCount(t *testing.T) {
	a := newAllocator(5)
	assert.Equal(t, 5, a.freeCount())

	a.markUsed(2)
	assert.Equal(t, 4, a.freeCount())

	a.markFree(2)
	assert.Equal(t, 5, a.freeCount())
}

func TestAllocator__OutOfRangeIndicesAreIgnored(t *testing.T) {
	a := newAllocator(2)
	a.markUsed(99)
	assert.False(t, a.inUse(99), "inUse on an out-of-range index should just report false")
	assert.Equal(t, 2, a.freeCount(), "marking an out-of-range index must not affect capacity")
}
