package pool

import "github.com/joshuapare/poolkit/internal/format"

// BlockRef is a block address: a uint32 byte offset from the start of the
// arena. A reference returned by Alloc is stable until the block is freed.
type BlockRef = uint32

// NilRef is the reference returned by failed allocations. Freeing it is a
// no-op.
const NilRef = format.NilRef

// Re-exported layout constants for callers and tools.
const (
	// DefaultArenaSize is the arena size New uses when Options does not
	// override it.
	DefaultArenaSize = format.DefaultArenaSize

	// MaxPools is the maximum number of block sizes per allocator.
	MaxPools = format.MaxPools

	// MinBlockSize is the smallest configurable block size, set by the
	// width of the intrusive freelist link.
	MinBlockSize = format.LinkSize
)

// Options configures a new allocator. A nil *Options means defaults.
type Options struct {
	// ArenaSize is the backing arena size in bytes. Zero means
	// DefaultArenaSize.
	ArenaSize int
}
