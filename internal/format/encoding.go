package format

import "encoding/binary"

// Binary encoding utilities for little-endian integers.
//
// Freelist links are stored in-place in the first LinkSize bytes of free
// blocks, always little-endian regardless of host byte order so that an
// arena dump reads the same everywhere.
//
// Implementation: Uses encoding/binary.LittleEndian. Modern Go compilers
// inline and optimize these calls well enough that unsafe alternatives buy
// nothing.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}
