package pool

import (
	"fmt"
	"os"

	"github.com/joshuapare/poolkit/arena"
	"github.com/joshuapare/poolkit/internal/format"
)

// Runtime debug flag for allocation logging - controlled by POOLKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("POOLKIT_LOG_ALLOC") != ""

// Allocator is a segregated-size pool allocator over a fixed arena.
//
// The arena is split at initialization into len(blockSizes) equal regions,
// each carved into blocks of one configured size. Layout is immutable
// until the next Init call. The zero value is not usable; construct with
// New or NewWithArena.
type Allocator struct {
	arena *arena.Arena
	data  []byte

	// pools is ordered by ascending block size and ascending address.
	// Empty until the first successful Init.
	pools []poolState

	stats counters
}

// poolState is the per-pool bookkeeping. start/end/blockSize are fixed at
// Init; bump and freeHead move as blocks are handed out and returned.
type poolState struct {
	blockSize uint32
	start     uint32 // offset of the first block
	end       uint32 // offset of the last block (a block slot, not one-past-the-end)

	// bump is the next never-yet-allocated block. Strictly greater than
	// end once the virgin region is spent.
	bump uint32

	// freeHead is the most-recently-freed block, format.NilRef when the
	// freelist is empty. Free blocks chain through their first 4 bytes.
	freeHead uint32

	capacity int
	inUse    int
	waste    int // trailing region bytes too small to hold a whole block
}

// New creates an allocator over a fresh heap-backed arena and partitions
// it per blockSizes. See Init for the validation rules.
func New(blockSizes []int, opts *Options) (*Allocator, error) {
	size := format.DefaultArenaSize
	if opts != nil && opts.ArenaSize != 0 {
		size = opts.ArenaSize
	}
	a, err := arena.New(size)
	if err != nil {
		return nil, err
	}
	return NewWithArena(a, blockSizes)
}

// NewWithArena creates an allocator over a caller-supplied arena, letting
// callers pick an mmap-backed or differently sized region. The allocator
// takes exclusive ownership of the arena's bytes until it is discarded.
func NewWithArena(a *arena.Arena, blockSizes []int) (*Allocator, error) {
	al := &Allocator{arena: a, data: a.Bytes()}
	if err := al.Init(blockSizes); err != nil {
		return nil, err
	}
	return al, nil
}

// Init partitions the arena into one pool per block size. Sizes must be
// ascending (ties allowed), between 1 and 4 of them, each at least
// MinBlockSize, and each small enough that its region (arena size divided
// by the pool count) holds at least one block. On failure no state is
// mutated: a previously initialized allocator keeps serving its old
// layout, a fresh one stays unusable.
//
// Init may be called again to re-partition from scratch. All outstanding
// blocks are abandoned; callers must not re-initialize while prior
// allocations are still in use.
func (al *Allocator) Init(blockSizes []int) error {
	if len(blockSizes) < 1 || len(blockSizes) > format.MaxPools {
		return ErrPoolCount
	}
	regionSize := len(al.data) / len(blockSizes)
	for i, s := range blockSizes {
		if s < format.LinkSize {
			return fmt.Errorf("%w: %d", ErrBlockTooSmall, s)
		}
		if i > 0 && s < blockSizes[i-1] {
			return ErrUnordered
		}
		if regionSize/s < 1 {
			return fmt.Errorf("%w: %d", ErrBlockTooLarge, s)
		}
	}

	pools := make([]poolState, len(blockSizes))
	off := 0
	for i, s := range blockSizes {
		count := regionSize / s
		pools[i] = poolState{
			blockSize: uint32(s),
			start:     uint32(off),
			end:       uint32(off + (count-1)*s),
			bump:      uint32(off),
			freeHead:  format.NilRef,
			capacity:  count,
			waste:     regionSize - count*s,
		}
		off += regionSize
	}
	al.pools = pools
	al.stats = counters{}
	return nil
}

// Alloc returns a block whose capacity is at least n bytes, routed to the
// smallest pool that fits and still has a block. The returned slice is the
// block's full payload window, at least n and at most the pool's block
// size, and stays valid until the block is freed.
func (al *Allocator) Alloc(n int) (BlockRef, []byte, error) {
	al.stats.allocCalls++
	if len(al.pools) == 0 {
		al.stats.allocFails++
		return NilRef, nil, ErrUninitialized
	}
	if n <= 0 {
		al.stats.allocFails++
		return NilRef, nil, ErrBadSize
	}
	if n > int(al.pools[len(al.pools)-1].blockSize) {
		al.stats.allocFails++
		return NilRef, nil, ErrTooLarge
	}

	// Pools are ordered by ascending block size: the first pool that fits
	// and has capacity is the smallest fit, and exhausted pools spill into
	// the next larger one.
	for i := range al.pools {
		p := &al.pools[i]
		if n > int(p.blockSize) {
			continue
		}
		off, ok := p.take(al.data)
		if !ok {
			continue
		}
		p.inUse++
		if logAlloc {
			fmt.Fprintf(os.Stderr, "poolkit: alloc n=%d pool=%d ref=%#x\n", n, i, off)
		}
		return off, al.data[off : off+p.blockSize], nil
	}
	al.stats.allocFails++
	return NilRef, nil, ErrNoSpace
}

// Free returns a block to its owning pool's freelist. The most-recently-
// freed block is the next one that pool hands out.
//
// NilRef, references outside every pool, and references that do not land
// on a block boundary are ignored. Freeing the same block twice, or an
// in-range boundary the allocator never handed out, is NOT detected and
// corrupts the freelist; see Checked for a guarded variant.
func (al *Allocator) Free(ref BlockRef) {
	al.stats.freeCalls++
	p := al.owner(ref)
	if p == nil {
		al.stats.ignoredFrees++
		return
	}
	// LIFO push: the block records the previous head in its link bytes
	// and becomes the head.
	format.PutU32(al.data, int(ref), p.freeHead)
	p.freeHead = ref
	p.inUse--
	if logAlloc {
		fmt.Fprintf(os.Stderr, "poolkit: free ref=%#x\n", ref)
	}
}

// ArenaSize returns the size of the backing arena in bytes.
func (al *Allocator) ArenaSize() int {
	return len(al.data)
}

// NumPools returns the number of configured pools, zero before the first
// successful Init.
func (al *Allocator) NumPools() int {
	return len(al.pools)
}

// take hands out the next available block: the most-recently-freed one if
// the freelist is non-empty, otherwise the bump pointer. Reports false
// once the pool is exhausted.
func (p *poolState) take(data []byte) (uint32, bool) {
	if p.freeHead != format.NilRef {
		off := p.freeHead
		p.freeHead = format.ReadU32(data, int(off))
		return off, true
	}
	if p.bump <= p.end {
		off := p.bump
		p.bump += p.blockSize
		return off, true
	}
	return 0, false
}

// owner returns the pool whose block range contains ref, or nil when ref
// is outside every pool or off a block boundary.
func (al *Allocator) owner(ref BlockRef) *poolState {
	for i := range al.pools {
		p := &al.pools[i]
		if ref < p.start || ref > p.end {
			continue
		}
		if (ref-p.start)%p.blockSize != 0 {
			return nil
		}
		return p
	}
	return nil
}

// slot maps ref to its global block index, counting blocks across pools in
// layout order. ok is false for any ref Free would ignore.
func (al *Allocator) slot(ref BlockRef) (int, bool) {
	base := 0
	for i := range al.pools {
		p := &al.pools[i]
		if ref >= p.start && ref <= p.end {
			if (ref-p.start)%p.blockSize != 0 {
				return 0, false
			}
			return base + int((ref-p.start)/p.blockSize), true
		}
		base += p.capacity
	}
	return 0, false
}

// slotCount returns the total number of blocks across all pools.
func (al *Allocator) slotCount() int {
	total := 0
	for i := range al.pools {
		total += al.pools[i].capacity
	}
	return total
}
