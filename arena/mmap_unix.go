//go:build linux || freebsd || darwin

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/poolkit/internal/format"
)

// NewMmap creates an arena backed by an anonymous private memory mapping.
// The kernel hands the region back zero-filled, satisfying the same
// zero-initialization guarantee as New. Close unmaps the region.
func NewMmap(size int) (*Arena, error) {
	if size <= 0 || size > format.MaxArenaSize {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	data, err := unix.Mmap(
		-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap failed: %w", err)
	}
	return &Arena{data: data, release: unix.Munmap}, nil
}
