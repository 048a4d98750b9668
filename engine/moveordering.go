package engine

import (
	"golang.org/x/exp/slices"

	"chessbot/rules"
)

// Most Valuable Victim - Least Valuable Aggressor values; the queen is 9
// here against 10 in the evaluation.
var mvvLva = [7]int{
	rules.Pawn:   1,
	rules.Knight: 3,
	rules.Bishop: 3,
	rules.Rook:   5,
	rules.Queen:  9,
	rules.King:   1000,
}

/*
Move ordering offsets. Everything is additive:
  - the transposition table move dwarfs all other terms so it is tried first
  - captures score 1000*victim - attacker, a flat 1000 when a piece can't be
    resolved (en passant)
  - promotions add on top of any capture score
  - killers and history only separate the quiet moves
*/
const (
	ttMoveOffset     = 1000000
	unresolvedOffset = 1000
	promotionOffset  = 800
	killerOffset     = 500
)

type scoredMove struct {
	move  rules.Move
	score int
}

// Orderer ranks moves using the table move, capture values, killers and
// history. It borrows the Searcher's heuristic state.
type Orderer struct {
	tt      *TransTable
	killers *KillerTable
	history *HistoryTable
}

// CaptureScore is the MVV-LVA, promotion and history part of a move's
// ordering score.
func (o *Orderer) CaptureScore(pos rules.Position, move rules.Move) int {
	score := 0
	if pos.IsCapture(move) {
		victim, victimOK := pos.PieceAt(move.To)
		attacker, attackerOK := pos.PieceAt(move.From)
		if victimOK && attackerOK {
			score += 1000*mvvLva[victim.Kind] - mvvLva[attacker.Kind]
		} else {
			score += unresolvedOffset
		}
	}
	if move.Promotion != rules.NoKind {
		score += promotionOffset
	}
	score += o.history.Score(move)
	return score
}

func (o *Orderer) score(pos rules.Position, moves []rules.Move, depth int) []scoredMove {
	ttMove, hasTTMove := o.tt.BestMove(pos.Key())
	scored := make([]scoredMove, len(moves))
	for i, move := range moves {
		score := 0
		if hasTTMove && move == ttMove {
			score += ttMoveOffset
		}
		score += o.CaptureScore(pos, move)
		if o.killers.IsKiller(move, depth) {
			score += killerOffset
		}
		scored[i] = scoredMove{move: move, score: score}
	}
	return scored
}

// Order returns moves sorted by descending priority. Equal scores keep
// their generation order.
func (o *Orderer) Order(pos rules.Position, moves []rules.Move, depth int) []rules.Move {
	return sortScored(o.score(pos, moves, depth))
}

// OrderTactical keeps only captures and promotions, ordered by CaptureScore.
func (o *Orderer) OrderTactical(pos rules.Position, moves []rules.Move) []rules.Move {
	scored := make([]scoredMove, 0, len(moves))
	for _, move := range moves {
		if !pos.IsCapture(move) && move.Promotion == rules.NoKind {
			continue
		}
		scored = append(scored, scoredMove{move: move, score: o.CaptureScore(pos, move)})
	}
	return sortScored(scored)
}

func sortScored(scored []scoredMove) []rules.Move {
	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		return b.score - a.score
	})
	ordered := make([]rules.Move, len(scored))
	for i, sm := range scored {
		ordered[i] = sm.move
	}
	return ordered
}
