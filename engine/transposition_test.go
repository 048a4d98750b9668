package engine

import (
	"testing"

	"github.com/matryer/is"

	"chessbot/rules"
)

var e2e4 = rules.Move{From: rules.SquareAt(4, 1), To: rules.SquareAt(4, 3)}

func TestLookupNeverReturnsShallowerEntry(t *testing.T) {
	for _, policy := range []Replacement{FullClear, DepthPreferred, LRU} {
		tt := NewTransTable(64, policy)
		tt.Store(1, 3, 10, Exact, e2e4)

		for depth := 0; depth <= 6; depth++ {
			entry, ok := tt.Lookup(1, depth, -Infinity, Infinity)
			if ok != (depth <= 3) {
				t.Fatalf("%s: lookup at depth %d returned ok=%v", policy, depth, ok)
			}
			if ok && entry.Depth < depth {
				t.Fatalf("%s: entry depth %d shallower than requested %d", policy, entry.Depth, depth)
			}
		}
	}
}

func TestLookupBoundRules(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(64, FullClear)

	tt.Store(1, 4, 50, Lower, e2e4)
	_, ok := tt.Lookup(1, 4, 0, 40)
	is.True(ok) // lower bound at or above beta cuts
	_, ok = tt.Lookup(1, 4, 0, 60)
	is.True(!ok) // lower bound below beta says nothing

	tt.Store(2, 4, -20, Upper, e2e4)
	_, ok = tt.Lookup(2, 4, -10, 100)
	is.True(ok) // upper bound at or below alpha cuts
	_, ok = tt.Lookup(2, 4, -30, 100)
	is.True(!ok)

	tt.Store(3, 4, 7, Exact, e2e4)
	entry, ok := tt.Lookup(3, 2, 100, 200)
	is.True(ok) // exact entries are always usable
	is.Equal(entry.Score, 7)
	is.Equal(entry.Move, e2e4)

	_, ok = tt.Lookup(4, 0, -Infinity, Infinity)
	is.True(!ok) // unknown key
}

func TestBestMoveIgnoresDepthAndBound(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(64, LRU)
	tt.Store(9, 1, -500, Upper, e2e4)

	move, ok := tt.BestMove(9)
	is.True(ok)
	is.Equal(move, e2e4)

	tt.Store(10, 5, 0, Exact, rules.NoMove)
	_, ok = tt.BestMove(10)
	is.True(!ok)
}

func TestFullClearPastCapacity(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(2, FullClear)

	tt.Store(1, 1, 0, Exact, e2e4)
	tt.Store(2, 1, 0, Exact, e2e4)
	tt.Store(3, 1, 0, Exact, e2e4)
	is.Equal(tt.Len(), 3) // the table may sit one past capacity

	tt.Store(4, 1, 0, Exact, e2e4)
	is.Equal(tt.Len(), 1)
	_, ok := tt.Lookup(1, 0, -Infinity, Infinity)
	is.True(!ok)
	_, ok = tt.Lookup(4, 0, -Infinity, Infinity)
	is.True(ok)

	// Overwriting an existing key stores the newest result.
	tt.Store(4, 2, 33, Lower, e2e4)
	entry, ok := tt.Lookup(4, 2, 0, 10)
	is.True(ok)
	is.Equal(entry.Score, 33)
}

func TestFullClearDoesNotReallocate(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(1<<26, FullClear)
	tt.Store(1, 1, 0, Exact, e2e4)

	allocs := testing.AllocsPerRun(10, tt.Clear)
	is.Equal(allocs, 0.0)
	is.Equal(tt.Len(), 0)

	// the cleared table keeps taking entries through several overflows
	small := NewTransTable(2, FullClear)
	for key := uint64(1); key <= 20; key++ {
		small.Store(key, 1, 0, Exact, e2e4)
		is.True(small.Len() <= 3)
		_, ok := small.Lookup(key, 1, -Infinity, Infinity)
		is.True(ok)
	}
}

func TestDepthPreferredEvictsShallowest(t *testing.T) {
	is := is.New(t)
	// a single cluster, so every key competes for the same slots
	tt := NewTransTable(clusterSize, DepthPreferred)

	depths := map[uint64]int{1: 5, 2: 1, 3: 4, 4: 3}
	for key := uint64(1); key <= 4; key++ {
		tt.Store(key, depths[key], 0, Exact, e2e4)
	}
	is.Equal(tt.Len(), 4)

	tt.Store(5, 2, 0, Exact, e2e4)
	is.Equal(tt.Len(), 4)

	_, ok := tt.Lookup(2, 0, -Infinity, Infinity)
	is.True(!ok) // depth 1 was the shallowest
	for _, key := range []uint64{1, 3, 4, 5} {
		_, ok := tt.Lookup(key, 0, -Infinity, Infinity)
		is.True(ok)
	}

	tt.Clear()
	is.Equal(tt.Len(), 0)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(2, LRU)

	tt.Store(1, 1, 0, Exact, e2e4)
	tt.Store(2, 1, 0, Exact, e2e4)
	_, ok := tt.Lookup(1, 1, -Infinity, Infinity)
	is.True(ok)

	tt.Store(3, 1, 0, Exact, e2e4)
	is.Equal(tt.Len(), 2)
	_, ok = tt.Lookup(2, 0, -Infinity, Infinity)
	is.True(!ok) // key 2 was the least recently used
	_, ok = tt.Lookup(1, 0, -Infinity, Infinity)
	is.True(ok)
}

func TestMateScoresAreStoredRelativeToNode(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(DefaultOptions())

	// A mate found 3 plies below a node sitting at ply 2 of the search.
	root := MateScore - 5
	s.storeEntry(42, 3, 2, root, Exact, e2e4)

	// The same position reached at ply 4 is two plies further from mate.
	entry, ok := s.probe(42, 3, 4, -Infinity, Infinity)
	is.True(ok)
	is.Equal(entry.Score, MateScore-7)
	is.True(IsMateScore(entry.Score))
	is.Equal(MateIn(MateScore-1), 1)
	is.Equal(MateIn(-MateScore+2), -1)
}
