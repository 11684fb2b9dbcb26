package simplefs

import bitmap "github.com/boljen/go-bitmap"

// allocator is an in-memory bitmap tracking which of a fixed number of
// indexed units (data blocks, or inode slots) are currently in use. It is
// never persisted: both the free-block and free-inode bitmaps are rebuilt
// from a disk scan on every mount (see scanInodeTable) and discarded on
// unmount.
//
// A set bit means "in use"; a clear bit means "free". This is the opposite
// sense of the boolean free_blocks[]/free_inodes[] arrays spec.md describes,
// chosen because go-bitmap (like the teacher's own block allocator) defaults
// a freshly created bitmap to all-clear, which is the right starting point
// for "nothing is allocated yet" without an extra initialization pass.
type allocator struct {
	bits  bitmap.Bitmap
	total uint32
}

func newAllocator(total uint32) *allocator {
	return &allocator{bits: bitmap.New(int(total)), total: total}
}

// inUse reports whether index i is currently allocated.
func (a *allocator) inUse(i uint32) bool {
	if i >= a.total {
		return false
	}
	return a.bits.Get(int(i))
}

// markUsed flips index i to allocated. Indices out of range are ignored, so
// an out-of-range pointer read from disk during scanInodeTable is dropped.
func (a *allocator) markUsed(i uint32) {
	if i < a.total {
		a.bits.Set(int(i), true)
	}
}

// markFree flips index i to unallocated.
func (a *allocator) markFree(i uint32) {
	if i < a.total {
		a.bits.Set(int(i), false)
	}
}

// findFree returns the lowest-indexed free unit without allocating it. Used
// by Create, which must not flip the bitmap until the corresponding disk
// write has actually succeeded.
func (a *allocator) findFree() (uint32, bool) {
	for i := uint32(0); i < a.total; i++ {
		if !a.bits.Get(int(i)) {
			return i, true
		}
	}
	return 0, false
}

// allocate finds the lowest-indexed free unit and marks it used in one step,
// first-fit, matching the teacher's own AllocateBlock.
func (a *allocator) allocate() (uint32, bool) {
	i, ok := a.findFree()
	if ok {
		a.bits.Set(int(i), true)
	}
	return i, ok
}

// freeCount returns the number of currently-unallocated units.
func (a *allocator) freeCount() int {
	count := 0
	for i := uint32(0); i < a.total; i++ {
		if !a.bits.Get(int(i)) {
			count++
		}
	}
	return count
}
