package engine

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ResetPolicy decides when killer moves and history counters are cleared.
type ResetPolicy int

const (
	// ResetNever keeps heuristic state for the whole engine lifetime.
	ResetNever ResetPolicy = iota
	// ResetPerGame clears killers, history and the transposition table on a
	// new game.
	ResetPerGame
	// DecayPerMove resets per game and additionally halves history and
	// clears killers before every engine move.
	DecayPerMove
)

var resetPolicyNames = map[ResetPolicy]string{
	ResetNever:   "never",
	ResetPerGame: "pergame",
	DecayPerMove: "decay",
}

func (p ResetPolicy) String() string { return resetPolicyNames[p] }

func ParseResetPolicy(s string) (ResetPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for policy, name := range resetPolicyNames {
		if name == s {
			return policy, nil
		}
	}
	return 0, errors.Errorf("unknown reset policy %q", s)
}

// Replacement selects the transposition table eviction strategy.
type Replacement int

const (
	// FullClear empties the whole table once it grows past capacity.
	FullClear Replacement = iota
	// DepthPreferred keeps the deeper entry within a hash cluster.
	DepthPreferred
	// LRU evicts the least recently probed or stored entry.
	LRU
)

var replacementNames = map[Replacement]string{
	FullClear:      "fullclear",
	DepthPreferred: "depth",
	LRU:            "lru",
}

func (r Replacement) String() string { return replacementNames[r] }

func ParseReplacement(s string) (Replacement, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range replacementNames {
		if name == s {
			return r, nil
		}
	}
	return 0, errors.Errorf("unknown replacement policy %q", s)
}

// Options configures a Searcher.
type Options struct {
	// TableSize is the transposition table capacity in entries.
	TableSize   int
	Replacement Replacement
	ResetPolicy ResetPolicy
	// KillerSlots is the number of search depths that track a killer move.
	KillerSlots int
	// QuiescenceMaxPly bounds the capture-only extension.
	QuiescenceMaxPly int
	MaxDepth         int
	MoveTime         time.Duration
}

func DefaultOptions() Options {
	return Options{
		TableSize:        100000,
		Replacement:      FullClear,
		ResetPolicy:      ResetPerGame,
		KillerSlots:      5,
		QuiescenceMaxPly: 30,
		MaxDepth:         6,
		MoveTime:         5 * time.Second,
	}
}

// entrySizeBytes approximates the memory one cached position costs, used to
// turn a UCI "Hash" size in MB into an entry count.
const entrySizeBytes = 48

// TableSizeFromMB converts a memory budget into a table capacity.
func TableSizeFromMB(mb int) int {
	if mb < 1 {
		mb = 1
	}
	return mb * 1024 * 1024 / entrySizeBytes
}

// TableSizeToMB is the inverse of TableSizeFromMB, rounded down to at least
// one megabyte.
func TableSizeToMB(entries int) int {
	return Max(1, entries*entrySizeBytes/(1024*1024))
}
