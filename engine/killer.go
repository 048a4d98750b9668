package engine

import "chessbot/rules"

// KillerTable remembers, per remaining search depth, the last quiet or
// tactical move that caused a beta cutoff there.
type KillerTable struct {
	moves []rules.Move
}

func NewKillerTable(slots int) *KillerTable {
	return &KillerTable{moves: make([]rules.Move, Max(slots, 0))}
}

// Insert records move as the killer at depth. Depths past the tracked
// range are ignored.
func (k *KillerTable) Insert(move rules.Move, depth int) {
	if depth >= 0 && depth < len(k.moves) {
		k.moves[depth] = move
	}
}

func (k *KillerTable) IsKiller(move rules.Move, depth int) bool {
	return depth >= 0 && depth < len(k.moves) && !move.IsNone() && k.moves[depth] == move
}

func (k *KillerTable) Get(depth int) rules.Move {
	if depth < 0 || depth >= len(k.moves) {
		return rules.NoMove
	}
	return k.moves[depth]
}

// Clear the killer moves table.
func (k *KillerTable) Clear() {
	for i := range k.moves {
		k.moves[i] = rules.NoMove
	}
}

// HistoryTable counts beta cutoffs by the origin square of the move that
// caused them.
type HistoryTable [8][8]int

// Increment the history count for the origin square of move.
func (h *HistoryTable) Increment(move rules.Move) {
	h[move.From.Rank()][move.From.File()]++
}

func (h *HistoryTable) Score(move rules.Move) int {
	return h[move.From.Rank()][move.From.File()]
}

// Age the values in the history table by halving them.
func (h *HistoryTable) Age() {
	for rank := range h {
		for file := range h[rank] {
			h[rank][file] /= 2
		}
	}
}

// Clear the values in the history table.
func (h *HistoryTable) Clear() {
	*h = HistoryTable{}
}
