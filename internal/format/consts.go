package format

// Layout constants for the pool allocator.
//
// The arena size and pool cap are compile-time defaults in the original
// design; here the arena size is a per-instance choice while the pool cap
// stays fixed so allocation remains O(1) with a bounded number of pool
// probes.
const (
	// DefaultArenaSize is the default backing arena size in bytes.
	DefaultArenaSize = 65536

	// MaxPools is the maximum number of size-segregated pools an arena
	// can be partitioned into.
	MaxPools = 4

	// LinkSize is the width of an intrusive freelist link in bytes.
	// A free block's first LinkSize bytes hold the offset of the next
	// free block in its pool, so no block may be smaller than this.
	LinkSize = 4

	// MaxArenaSize is the largest supported arena. Block offsets are
	// uint32 and exhaustion checks rely on bump offsets never wrapping,
	// so arenas are capped below 2GB.
	MaxArenaSize = 0x7FFFFFFF
)

// NilRef is the sentinel block offset meaning "no block". It terminates
// freelists and is returned by failed allocations. It never collides with
// a real offset because arenas are capped at MaxArenaSize.
const NilRef = ^uint32(0)
