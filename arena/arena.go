// Package arena provides the fixed-size backing memory region managed by a
// pool allocator.
//
// An Arena is a contiguous, zero-initialized byte region whose size never
// changes after creation. It can be backed by ordinary Go heap memory
// (New) or by an anonymous private memory mapping (NewMmap), which keeps
// the region out of the Go heap entirely and returns it to the OS on Close.
//
// The arena owns nothing about block layout; partitioning into pools and
// blocks is the pool package's job. Each Arena is exclusively owned by at
// most one allocator at a time.
package arena

import (
	"errors"
	"fmt"

	"github.com/joshuapare/poolkit/internal/format"
)

var (
	// ErrBadSize indicates an arena size outside (0, MaxArenaSize].
	ErrBadSize = errors.New("arena: size must be positive and below 2GB")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)

// Arena is a fixed-size contiguous byte region.
type Arena struct {
	data []byte

	// release returns the region to its backing store. Nil for
	// heap-backed arenas, where the garbage collector does the work.
	release func([]byte) error
}

// New creates a heap-backed arena of the given size. The region is
// zero-initialized.
func New(size int) (*Arena, error) {
	if size <= 0 || size > format.MaxArenaSize {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	return &Arena{data: make([]byte, size)}, nil
}

// Bytes returns the backing region. The slice stays valid until Close.
func (a *Arena) Bytes() []byte {
	return a.data
}

// Size returns the arena size in bytes.
func (a *Arena) Size() int {
	return len(a.data)
}

// Close releases the backing region. For heap-backed arenas this only
// drops the reference; for mapped arenas it unmaps the region. Using the
// arena (or any allocator over it) after Close is invalid.
func (a *Arena) Close() error {
	if a.data == nil {
		return ErrClosed
	}
	data := a.data
	a.data = nil
	if a.release != nil {
		return a.release(data)
	}
	return nil
}
