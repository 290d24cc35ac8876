package pool

import (
	"fmt"

	"github.com/joshuapare/poolkit/arena"
)

// Checked wraps an Allocator with an out-of-band allocated bitmap (one bit
// per block slot) so that double frees and frees of references the
// allocator never handed out are rejected with an error instead of
// silently corrupting the freelist.
//
// The bitmap costs one bit per block and one extra bounds computation per
// operation; the underlying allocator is unchanged and remains reachable
// through Unwrap for callers that mix checked and unchecked use at their
// own risk.
type Checked struct {
	al *Allocator

	// bits has one bit per block slot, set while the block is allocated.
	bits []uint64

	outstanding int
}

// NewChecked creates a checked allocator over a fresh heap-backed arena.
func NewChecked(blockSizes []int, opts *Options) (*Checked, error) {
	al, err := New(blockSizes, opts)
	if err != nil {
		return nil, err
	}
	return &Checked{al: al, bits: newBitmap(al)}, nil
}

// NewCheckedWithArena creates a checked allocator over a caller-supplied
// arena.
func NewCheckedWithArena(a *arena.Arena, blockSizes []int) (*Checked, error) {
	al, err := NewWithArena(a, blockSizes)
	if err != nil {
		return nil, err
	}
	return &Checked{al: al, bits: newBitmap(al)}, nil
}

func newBitmap(al *Allocator) []uint64 {
	return make([]uint64, (al.slotCount()+63)/64)
}

// Init re-partitions the underlying allocator and resets the bitmap. Same
// validation and no-mutation-on-failure contract as Allocator.Init.
func (c *Checked) Init(blockSizes []int) error {
	if err := c.al.Init(blockSizes); err != nil {
		return err
	}
	c.bits = newBitmap(c.al)
	c.outstanding = 0
	return nil
}

// Alloc allocates a block and marks its slot allocated.
func (c *Checked) Alloc(n int) (BlockRef, []byte, error) {
	ref, buf, err := c.al.Alloc(n)
	if err != nil {
		return ref, buf, err
	}
	slot, _ := c.al.slot(ref)
	c.bits[slot/64] |= 1 << (slot % 64)
	c.outstanding++
	return ref, buf, nil
}

// Free validates ref against the bitmap before forwarding to the
// underlying allocator. It returns ErrForeignRef for references that are
// not block boundaries of this allocator and ErrDoubleFree for blocks that
// are already free.
func (c *Checked) Free(ref BlockRef) error {
	slot, ok := c.al.slot(ref)
	if !ok {
		return fmt.Errorf("%w: %#x", ErrForeignRef, ref)
	}
	mask := uint64(1) << (slot % 64)
	if c.bits[slot/64]&mask == 0 {
		return fmt.Errorf("%w: %#x", ErrDoubleFree, ref)
	}
	c.bits[slot/64] &^= mask
	c.outstanding--
	c.al.Free(ref)
	return nil
}

// NeedFree returns the number of blocks allocated but not yet freed.
func (c *Checked) NeedFree() int {
	return c.outstanding
}

// Stats returns the underlying allocator's snapshot.
func (c *Checked) Stats() Stats {
	return c.al.Stats()
}

// Unwrap returns the underlying allocator. Frees performed directly on it
// bypass the bitmap and desynchronize the checker.
func (c *Checked) Unwrap() *Allocator {
	return c.al
}
