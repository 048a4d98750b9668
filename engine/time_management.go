package engine

import (
	"sync/atomic"
	"time"

	"chessbot/rules"
)

// TimeHandler tracks the wall-clock budget of one iterative deepening run.
type TimeHandler struct {
	start    time.Time
	limit    time.Duration
	deadline time.Time
	// set from another goroutine by Searcher.Stop
	stop atomic.Bool
}

// StartTime begins a new budget. A non-positive limit means the budget is
// already spent once the first iteration is done.
func (th *TimeHandler) StartTime(limit time.Duration) {
	th.start = time.Now()
	th.limit = limit
	th.deadline = th.start.Add(limit)
}

func (th *TimeHandler) Elapsed() time.Duration { return time.Since(th.start) }

func (th *TimeHandler) Deadline() time.Time { return th.deadline }

// BudgetExceeded is the check made before starting another depth.
func (th *TimeHandler) BudgetExceeded() bool {
	return th.stop.Load() || th.Elapsed() >= th.limit
}

/*
  - True if the deadline is set and passed, or a stop was requested
  - False if we still got time
*/
func (th *TimeHandler) TimeStatus(deadline time.Time) bool {
	if th.stop.Load() {
		return true
	}
	return !deadline.IsZero() && !time.Now().Before(deadline)
}

// AllocateMoveTime turns a UCI clock (remaining time and increment, both in
// milliseconds) into a budget for the next move.
func AllocateMoveTime(pos rules.Position, remainingMs int, incrementMs int) time.Duration {
	// Engine-side safety knobs
	const overheadMs = 30      // reserve for UCI/IO jitter
	const minMoveMs = 5        // never less than this
	const maxFrac = 0.7        // never spend >70% of remaining time
	const panicThreshMs = 1000 // below this we live off the increment
	const panicFrac = 0.90

	movesLeft := estimateMovesRemaining(piecePhase(pos))
	rem, inc := remainingMs, incrementMs

	var moveTime int
	if inc > 0 {
		if rem < panicThreshMs {
			moveTime = int(float64(inc) * panicFrac)
		} else {
			moveTime = rem/movesLeft + inc
		}
	} else {
		moveTime = rem / 40
	}

	if moveTime > int(float64(rem)*maxFrac) {
		moveTime = int(float64(rem) * maxFrac)
	}
	if moveTime > rem-overheadMs {
		moveTime = rem - overheadMs
	}
	if moveTime < minMoveMs {
		moveTime = minMoveMs
	}
	return time.Duration(moveTime) * time.Millisecond
}

// piecePhase is 24 with all minor and major pieces on the board, 0 with
// none.
func piecePhase(pos rules.Position) int {
	weights := [7]int{rules.Knight: 1, rules.Bishop: 1, rules.Rook: 2, rules.Queen: 4}
	phase := 0
	for sq := rules.Square(0); sq < 64; sq++ {
		if p, ok := pos.PieceAt(sq); ok {
			phase += weights[p.Kind]
		}
	}
	return Min(phase, 24)
}

func estimateMovesRemaining(phase int) int {
	// Linearly interpolate between 20 (endgame) and 45 (opening/midgame)
	return (phase*25)/24 + 20
}
