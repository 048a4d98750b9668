package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"chessbot/rules"
)

// Bound says how a cached score relates to the true value of the node.
type Bound int8

const (
	// Exact: the score is the minimax value at the stored depth.
	Exact Bound = iota
	// Lower: the search failed high, the true value is >= score.
	Lower
	// Upper: the search failed low, the true value is <= score.
	Upper
)

func (b Bound) String() string {
	switch b {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	}
	return "exact"
}

type Entry struct {
	Depth int
	Score int
	Bound Bound
	Move  rules.Move
}

// replacer is the storage and eviction strategy behind a TransTable.
type replacer interface {
	probe(key uint64) (Entry, bool)
	// peek reads without touching any recency bookkeeping.
	peek(key uint64) (Entry, bool)
	store(key uint64, e Entry)
	len() int
	clear()
}

// TransTable caches search results by position key.
type TransTable struct {
	entries  replacer
	capacity int

	lookups uint64
	hits    uint64
	stores  uint64
}

// NewTransTable builds a table holding roughly capacity entries.
func NewTransTable(capacity int, policy Replacement) *TransTable {
	capacity = Max(capacity, 1)
	tt := &TransTable{capacity: capacity}
	switch policy {
	case DepthPreferred:
		tt.entries = newClusterTable(capacity)
	case LRU:
		tt.entries = newLRUTable(capacity)
	default:
		tt.entries = &fullClearTable{entries: make(map[uint64]Entry), capacity: capacity}
	}
	return tt
}

// Store overwrites whatever is cached for key.
func (tt *TransTable) Store(key uint64, depth int, score int, bound Bound, move rules.Move) {
	tt.stores++
	tt.entries.store(key, Entry{Depth: depth, Score: score, Bound: bound, Move: move})
}

// Lookup returns the entry for key only if it is at least as deep as depth
// and its bound still decides the outcome inside the (alpha, beta) window.
func (tt *TransTable) Lookup(key uint64, depth int, alpha int, beta int) (Entry, bool) {
	tt.lookups++
	entry, found := tt.entries.probe(key)
	if !found || entry.Depth < depth {
		return Entry{}, false
	}
	usable := false
	switch entry.Bound {
	case Exact:
		usable = true
	case Lower:
		usable = entry.Score >= beta
	case Upper:
		usable = entry.Score <= alpha
	}
	if !usable {
		return Entry{}, false
	}
	tt.hits++
	return entry, true
}

// BestMove returns the recorded best move for key regardless of depth or
// bound.
func (tt *TransTable) BestMove(key uint64) (rules.Move, bool) {
	entry, found := tt.entries.peek(key)
	if !found || entry.Move.IsNone() {
		return rules.NoMove, false
	}
	return entry.Move, true
}

func (tt *TransTable) Len() int      { return tt.entries.len() }
func (tt *TransTable) Capacity() int { return tt.capacity }

func (tt *TransTable) Clear() {
	tt.entries.clear()
	tt.lookups, tt.hits, tt.stores = 0, 0, 0
}

// fullClearTable drops everything once it has grown past capacity. Cheap,
// and good enough when a table fill spans many moves.
type fullClearTable struct {
	entries  map[uint64]Entry
	capacity int
}

func (t *fullClearTable) probe(key uint64) (Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

func (t *fullClearTable) peek(key uint64) (Entry, bool) { return t.probe(key) }

func (t *fullClearTable) store(key uint64, e Entry) {
	if len(t.entries) > t.capacity {
		t.clear()
	}
	t.entries[key] = e
}

func (t *fullClearTable) len() int { return len(t.entries) }

func (t *fullClearTable) clear() { clear(t.entries) }

const clusterSize = 4

type clusterSlot struct {
	key  uint64
	used bool
	Entry
}

// clusterTable is a fixed array of hash-indexed clusters. A store updates
// the matching slot, else takes an empty one, else replaces the shallowest
// entry in the cluster.
type clusterTable struct {
	slots        []clusterSlot
	clusterCount uint64
	count        int
}

func newClusterTable(capacity int) *clusterTable {
	clusterCount := uint64(Max(capacity/clusterSize, 1))
	return &clusterTable{
		slots:        make([]clusterSlot, clusterCount*clusterSize),
		clusterCount: clusterCount,
	}
}

func (t *clusterTable) cluster(key uint64) []clusterSlot {
	base := (key % t.clusterCount) * clusterSize
	return t.slots[base : base+clusterSize]
}

func (t *clusterTable) probe(key uint64) (Entry, bool) {
	for _, slot := range t.cluster(key) {
		if slot.used && slot.key == key {
			return slot.Entry, true
		}
	}
	return Entry{}, false
}

func (t *clusterTable) peek(key uint64) (Entry, bool) { return t.probe(key) }

func (t *clusterTable) store(key uint64, e Entry) {
	cluster := t.cluster(key)
	target := -1

	// Prefer updating the existing entry
	for i := range cluster {
		if cluster[i].used && cluster[i].key == key {
			target = i
			break
		}
	}

	// Next look for an empty slot
	if target == -1 {
		for i := range cluster {
			if !cluster[i].used {
				target = i
				t.count++
				break
			}
		}
	}

	// Otherwise replace the shallowest entry in the cluster
	if target == -1 {
		target = 0
		for i := 1; i < len(cluster); i++ {
			if cluster[i].Depth < cluster[target].Depth {
				target = i
			}
		}
	}

	cluster[target] = clusterSlot{key: key, used: true, Entry: e}
}

func (t *clusterTable) len() int { return t.count }

func (t *clusterTable) clear() {
	for i := range t.slots {
		t.slots[i] = clusterSlot{}
	}
	t.count = 0
}

type lruTable struct {
	cache *lru.Cache[uint64, Entry]
}

func newLRUTable(capacity int) *lruTable {
	// lru.New only fails for a non-positive size.
	cache, err := lru.New[uint64, Entry](Max(capacity, 1))
	if err != nil {
		panic(err)
	}
	return &lruTable{cache: cache}
}

func (t *lruTable) probe(key uint64) (Entry, bool) { return t.cache.Get(key) }
func (t *lruTable) peek(key uint64) (Entry, bool)  { return t.cache.Peek(key) }
func (t *lruTable) store(key uint64, e Entry)      { t.cache.Add(key, e) }
func (t *lruTable) len() int                       { return t.cache.Len() }
func (t *lruTable) clear()                         { t.cache.Purge() }
