// Package pool implements a fixed-capacity, segregated-size memory pool
// allocator over a single statically sized backing arena.
//
// # Overview
//
// An Allocator partitions its arena into up to 4 equal-sized regions, one
// per configured block size, and carves each region into homogeneous
// fixed-size blocks. Requests are routed to the smallest pool whose block
// size fits; when that pool runs dry the request spills into the next
// larger pool. Allocation and deallocation are O(1), bounded by the fixed
// pool cap, which makes the allocator suitable for latency-sensitive
// workloads where object sizes cluster into a few known classes.
//
// # Usage Example
//
//	al, err := pool.New([]int{32, 64, 547, 1238}, nil)
//	if err != nil {
//	    return err
//	}
//
//	ref, buf, err := al.Alloc(40) // served from the 64-byte pool
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Later, return the block for reuse
//	al.Free(ref)
//
// # Block References
//
// Block references (BlockRef) are uint32 byte offsets from the start of
// the arena. A returned reference is stable until freed. NilRef is the
// sentinel returned by failed allocations.
//
// # Freelists
//
// Each pool keeps an intrusive LIFO freelist: a free block's first 4 bytes
// hold the offset of the next free block. The most-recently-freed block is
// always the next one handed out. Blocks never before allocated are served
// by a per-pool bump pointer instead, so a fresh pool needs no freelist
// setup at all. The 4-byte link imposes the only size floor: block sizes
// below 4 bytes are rejected at initialization.
//
// # Safety Boundary
//
// Free tolerates nil and out-of-range references as silent no-ops. It does
// NOT detect double frees or frees of in-range addresses that were never
// handed out; both silently corrupt the freelist and leave subsequent
// behavior undefined. Callers that want these caught should use Checked,
// which maintains an out-of-band allocated bitmap and rejects bad frees
// with an error.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally. Multiple independent instances are fine.
//
// # Related Packages
//
//   - github.com/joshuapare/poolkit/arena: heap- and mmap-backed arenas
//   - github.com/joshuapare/poolkit/internal/format: layout constants and
//     link encoding
package pool
