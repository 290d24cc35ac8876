package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classicSizes mirrors the canonical 4-pool configuration: with the
// default 64KB arena each pool gets a 16384-byte region, giving
// capacities 512, 256, 29 and 13.
var classicSizes = []int{32, 64, 547, 1238}

// mustNew builds an allocator over the default arena or fails the test.
func mustNew(t *testing.T, sizes []int) *Allocator {
	t.Helper()
	al, err := New(sizes, nil)
	require.NoError(t, err)
	return al
}

// poolRange reports whether ref lies inside pool i's block range.
func poolRange(t *testing.T, al *Allocator, i int, ref BlockRef) bool {
	t.Helper()
	p := al.Stats().Pools[i]
	return ref >= p.Start && ref <= p.End
}

func TestInit_RejectsBadCount(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrPoolCount)

	_, err = New([]int{}, nil)
	require.ErrorIs(t, err, ErrPoolCount)

	_, err = New([]int{8, 8, 8, 8, 8}, nil)
	require.ErrorIs(t, err, ErrPoolCount)
}

func TestInit_RejectsTinyBlocks(t *testing.T) {
	_, err := New([]int{3}, nil)
	require.ErrorIs(t, err, ErrBlockTooSmall)

	_, err = New([]int{32, 2}, nil)
	require.ErrorIs(t, err, ErrBlockTooSmall)
}

func TestInit_RejectsUnorderedSizes(t *testing.T) {
	_, err := New([]int{64, 32}, nil)
	require.ErrorIs(t, err, ErrUnordered)

	// Ties are fine - two pools of the same size just spill into each other.
	al, err := New([]int{32, 32}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, al.NumPools())
}

func TestInit_RejectsBlockLargerThanRegion(t *testing.T) {
	// Two pools split 65536 into 32768-byte regions; 85536 cannot fit.
	_, err := New([]int{32, 85536}, nil)
	require.ErrorIs(t, err, ErrBlockTooLarge)

	// A single pool gets the whole arena but 70000 still does not fit.
	_, err = New([]int{70000}, nil)
	require.ErrorIs(t, err, ErrBlockTooLarge)

	// Boundary: exactly one block per region succeeds.
	al, err := New([]int{16384, 16384, 16384, 16384}, nil)
	require.NoError(t, err)
	for _, p := range al.Stats().Pools {
		assert.Equal(t, 1, p.Capacity)
	}
}

func TestInit_Partitioning(t *testing.T) {
	al := mustNew(t, classicSizes)
	st := al.Stats()
	require.Len(t, st.Pools, 4)

	wantCap := []int{512, 256, 29, 13}
	region := DefaultArenaSize / len(classicSizes)

	prevEnd := -1
	for i, p := range st.Pools {
		assert.Equal(t, classicSizes[i], p.BlockSize, "pool %d block size", i)
		assert.Equal(t, wantCap[i], p.Capacity, "pool %d capacity", i)
		assert.Equal(t, region-wantCap[i]*classicSizes[i], p.WastedBytes, "pool %d waste", i)

		// Regions are laid out back to back in configuration order.
		assert.Equal(t, BlockRef(i*region), p.Start, "pool %d start", i)
		assert.Equal(t, p.Start+BlockRef((p.Capacity-1)*p.BlockSize), p.End, "pool %d end", i)

		// Disjoint, ascending ranges inside the arena.
		assert.Greater(t, int(p.Start), prevEnd, "pool %d overlaps its predecessor", i)
		assert.Less(t, int(p.End)+p.BlockSize, DefaultArenaSize+1, "pool %d spills past the arena", i)
		prevEnd = int(p.End) + p.BlockSize - 1
	}
}

func TestInit_ReinitRederivesLayout(t *testing.T) {
	al := mustNew(t, []int{32})

	ref, _, err := al.Alloc(32)
	require.NoError(t, err)
	require.Equal(t, BlockRef(0), ref)

	// Re-init abandons the outstanding block and starts over.
	require.NoError(t, al.Init([]int{64, 128}))
	st := al.Stats()
	require.Len(t, st.Pools, 2)
	assert.Zero(t, st.AllocCalls, "counters reset on re-init")

	ref, _, err = al.Alloc(64)
	require.NoError(t, err)
	assert.Equal(t, BlockRef(0), ref, "fresh layout starts allocating from the front")
}

func TestInit_FailedReinitKeepsOldLayout(t *testing.T) {
	al := mustNew(t, []int{32, 64})
	_, _, err := al.Alloc(10)
	require.NoError(t, err)

	before := al.Stats()

	require.ErrorIs(t, al.Init([]int{64, 32}), ErrUnordered)
	require.ErrorIs(t, al.Init(nil), ErrPoolCount)

	after := al.Stats()
	assert.Equal(t, before, after, "failed re-init must not mutate state")

	// The old layout keeps serving.
	ref, _, err := al.Alloc(10)
	require.NoError(t, err)
	assert.True(t, poolRange(t, al, 0, ref))
}

func TestAlloc_SizeBoundaries(t *testing.T) {
	al := mustNew(t, classicSizes)

	_, _, err := al.Alloc(0)
	require.ErrorIs(t, err, ErrBadSize)

	_, _, err = al.Alloc(-5)
	require.ErrorIs(t, err, ErrBadSize)

	_, _, err = al.Alloc(1239)
	require.ErrorIs(t, err, ErrTooLarge)

	_, _, err = al.Alloc(5000)
	require.ErrorIs(t, err, ErrTooLarge)

	// Largest exact fit is fine.
	_, buf, err := al.Alloc(1238)
	require.NoError(t, err)
	assert.Len(t, buf, 1238)
}

func TestAlloc_SmallestFitRouting(t *testing.T) {
	al := mustNew(t, classicSizes)

	cases := []struct {
		n    int
		pool int
	}{
		{1, 0},
		{32, 0},
		{33, 1},
		{64, 1},
		{65, 2},
		{200, 2},
		{547, 2},
		{548, 3},
		{1238, 3},
	}
	for _, tc := range cases {
		ref, buf, err := al.Alloc(tc.n)
		require.NoError(t, err, "Alloc(%d)", tc.n)
		assert.True(t, poolRange(t, al, tc.pool, ref),
			"Alloc(%d) returned %#x, want a block in pool %d", tc.n, ref, tc.pool)
		assert.GreaterOrEqual(t, len(buf), tc.n, "payload window covers the request")
		assert.Equal(t, classicSizes[tc.pool], len(buf), "payload window is the block size")
	}
}

func TestAlloc_ExhaustionSpillsToLargerPool(t *testing.T) {
	// 256-byte arena, two pools: 4 blocks of 32 and 2 blocks of 64.
	al, err := New([]int{32, 64}, &Options{ArenaSize: 256})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		ref, _, allocErr := al.Alloc(32)
		require.NoError(t, allocErr)
		assert.True(t, poolRange(t, al, 0, ref), "block %d from the 32-byte pool", i)
	}

	// The 32-byte pool is spent; same-size requests spill into the 64s.
	for i := 0; i < 2; i++ {
		ref, _, allocErr := al.Alloc(32)
		require.NoError(t, allocErr)
		assert.True(t, poolRange(t, al, 1, ref), "spill block %d from the 64-byte pool", i)
	}

	// Everything is spent now.
	_, _, err = al.Alloc(32)
	require.ErrorIs(t, err, ErrNoSpace)
	_, _, err = al.Alloc(64)
	require.ErrorIs(t, err, ErrNoSpace)
}

func TestAlloc_LargestPoolExhaustion(t *testing.T) {
	al := mustNew(t, classicSizes)

	// (65536/4)/1238 = 13 blocks, then the largest pool is dry and there
	// is nowhere to spill.
	for i := 0; i < 13; i++ {
		_, _, err := al.Alloc(1238)
		require.NoError(t, err, "block %d", i)
	}
	_, _, err := al.Alloc(1238)
	require.ErrorIs(t, err, ErrNoSpace)

	// Smaller requests are still served by the other pools.
	_, _, err = al.Alloc(200)
	require.NoError(t, err)
	_, _, err = al.Alloc(34)
	require.NoError(t, err)
}

func TestFree_LIFOReuse(t *testing.T) {
	al := mustNew(t, []int{16})

	x, _, err := al.Alloc(16)
	require.NoError(t, err)
	y, _, err := al.Alloc(16)
	require.NoError(t, err)
	require.NotEqual(t, x, y)

	// Free y then x: x is most-recently-freed, so it comes back first.
	al.Free(y)
	al.Free(x)

	got, _, err := al.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, x, got, "most-recently-freed block is reused first")

	got, _, err = al.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, y, got, "then the next one down the freelist")

	// Reversed free order reverses the reuse order.
	al.Free(x)
	al.Free(y)
	got, _, err = al.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, y, got)
}

func TestFree_DrainedFreelistResumesBumpPointer(t *testing.T) {
	al := mustNew(t, []int{16})

	a, _, err := al.Alloc(16)
	require.NoError(t, err)
	b, _, err := al.Alloc(16)
	require.NoError(t, err)

	al.Free(a)

	got, _, err := al.Alloc(16)
	require.NoError(t, err)
	require.Equal(t, a, got)

	// Freelist is empty again; the next block is virgin territory past b.
	got, _, err = al.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, b+16, got)
}

func TestFree_InvalidRefsAreSafeNoOps(t *testing.T) {
	al := mustNew(t, classicSizes)

	ref, _, err := al.Alloc(32)
	require.NoError(t, err)

	before := al.Stats()

	al.Free(NilRef)
	al.Free(BlockRef(1 << 30))        // far beyond the arena
	al.Free(ref + 1)                  // inside a pool but off the block grid
	al.Free(BlockRef(64546 + 100))    // make sure big offsets in waste areas don't match either

	st := al.Stats()
	assert.Equal(t, before.FreeCalls+4, st.FreeCalls)
	assert.Equal(t, before.IgnoredFrees+4, st.IgnoredFrees)
	assert.Equal(t, before.Pools, st.Pools, "pool state untouched by invalid frees")

	// The allocator still works.
	al.Free(ref)
	got, _, err := al.Alloc(32)
	require.NoError(t, err)
	assert.Equal(t, ref, got)
}

func TestPayload_Integrity(t *testing.T) {
	al := mustNew(t, []int{32})

	_, buf1, err := al.Alloc(32)
	require.NoError(t, err)
	_, buf2, err := al.Alloc(32)
	require.NoError(t, err)

	for i := range buf1 {
		buf1[i] = 0xAA
	}
	for i := range buf2 {
		buf2[i] = 0xBB
	}

	for i := range buf1 {
		require.Equal(t, byte(0xAA), buf1[i], "block 1 corrupted at offset %d", i)
	}
	for i := range buf2 {
		require.Equal(t, byte(0xBB), buf2[i], "block 2 corrupted at offset %d", i)
	}
}

func TestAlloc_AllRefsStayInsidePoolRanges(t *testing.T) {
	al := mustNew(t, classicSizes)
	st := al.Stats()

	total := 0
	for _, p := range st.Pools {
		total += p.Capacity
	}

	seen := make(map[BlockRef]bool)
	for {
		ref, _, err := al.Alloc(4)
		if err != nil {
			require.ErrorIs(t, err, ErrNoSpace)
			break
		}
		require.False(t, seen[ref], "ref %#x handed out twice", ref)
		seen[ref] = true

		owned := false
		for i := range st.Pools {
			if poolRange(t, al, i, ref) {
				owned = true
				break
			}
		}
		require.True(t, owned, "ref %#x outside every pool", ref)
	}

	// A 4-byte request can drain the entire arena, pool by pool.
	assert.Equal(t, total, len(seen))
}

func TestStats_Counters(t *testing.T) {
	al := mustNew(t, []int{32})

	ref, _, err := al.Alloc(8)
	require.NoError(t, err)
	_, _, err = al.Alloc(0)
	require.ErrorIs(t, err, ErrBadSize)
	al.Free(ref)
	al.Free(NilRef)

	st := al.Stats()
	assert.Equal(t, 2, st.AllocCalls)
	assert.Equal(t, 1, st.AllocFails)
	assert.Equal(t, 2, st.FreeCalls)
	assert.Equal(t, 1, st.IgnoredFrees)
	assert.Equal(t, 0, st.Pools[0].InUse)
}
