package pool

// counters holds the allocator's internal operation counters.
type counters struct {
	allocCalls   int
	allocFails   int
	freeCalls    int
	ignoredFrees int
}

// Stats is a snapshot of allocator activity and per-pool occupancy.
type Stats struct {
	AllocCalls   int // total Alloc calls
	AllocFails   int // Alloc calls that returned an error
	FreeCalls    int // total Free calls
	IgnoredFrees int // Free calls dropped as invalid references

	Pools []PoolStats
}

// PoolStats describes one pool's layout and occupancy.
type PoolStats struct {
	BlockSize   int      // payload bytes per block
	Start       BlockRef // offset of the first block
	End         BlockRef // offset of the last block
	Capacity    int      // total blocks in the pool
	InUse       int      // blocks currently allocated
	WastedBytes int      // trailing region bytes unusable as whole blocks
}

// Stats returns a snapshot of the allocator's counters and pool table.
// Counters reset on Init. InUse is meaningless after an undetected double
// free, like everything else.
func (al *Allocator) Stats() Stats {
	s := Stats{
		AllocCalls:   al.stats.allocCalls,
		AllocFails:   al.stats.allocFails,
		FreeCalls:    al.stats.freeCalls,
		IgnoredFrees: al.stats.ignoredFrees,
		Pools:        make([]PoolStats, len(al.pools)),
	}
	for i := range al.pools {
		p := &al.pools[i]
		s.Pools[i] = PoolStats{
			BlockSize:   int(p.blockSize),
			Start:       p.start,
			End:         p.end,
			Capacity:    p.capacity,
			InUse:       p.inUse,
			WastedBytes: p.waste,
		}
	}
	return s
}
