package pool

import "errors"

var (
	// ErrPoolCount indicates an initialization with zero or more than 4
	// block sizes (a nil or empty slice counts as zero).
	ErrPoolCount = errors.New("pool: block size count must be between 1 and 4")

	// ErrBlockTooSmall indicates a configured block size smaller than the
	// 4-byte intrusive freelist link.
	ErrBlockTooSmall = errors.New("pool: block size below freelist link width")

	// ErrUnordered indicates block sizes that are not in ascending order.
	ErrUnordered = errors.New("pool: block sizes must be non-decreasing")

	// ErrBlockTooLarge indicates a block size too large for even one block
	// to fit in its region.
	ErrBlockTooLarge = errors.New("pool: block size too large for its region")

	// ErrUninitialized indicates an allocation attempt before a successful
	// initialization.
	ErrUninitialized = errors.New("pool: allocator not initialized")

	// ErrBadSize indicates an allocation request for zero or negative bytes.
	ErrBadSize = errors.New("pool: allocation size must be positive")

	// ErrTooLarge indicates a request exceeding the largest configured
	// block size; no pool can ever satisfy it.
	ErrTooLarge = errors.New("pool: allocation exceeds largest block size")

	// ErrNoSpace indicates that every pool able to hold the request is
	// exhausted. The caller may free blocks and retry.
	ErrNoSpace = errors.New("pool: no free block large enough")

	// ErrDoubleFree indicates a Checked free of a block that is already
	// free.
	ErrDoubleFree = errors.New("pool: block already free")

	// ErrForeignRef indicates a Checked free of a reference that is not a
	// block boundary handed out by this allocator.
	ErrForeignRef = errors.New("pool: ref is not an allocatable block")
)
