//go:build !linux && !freebsd && !darwin

package arena

import "errors"

// ErrMmapUnsupported indicates that anonymous mappings are not available
// on this platform.
var ErrMmapUnsupported = errors.New("arena: mmap not supported on this platform")

// NewMmap is unavailable on this platform; use New instead.
func NewMmap(size int) (*Arena, error) {
	return nil, ErrMmapUnsupported
}
