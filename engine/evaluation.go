package engine

import "chessbot/rules"

// Material in pawn units. The queen is worth 10 here but 9 in the capture
// ordering table.
var pieceValue = [7]int{
	rules.Pawn:   1,
	rules.Knight: 3,
	rules.Bishop: 3,
	rules.Rook:   5,
	rules.Queen:  10,
}

// Indexed by ranks advanced from the pawn's own back rank.
var passedPawnBonus = [8]int{0, 120, 80, 50, 30, 15, 15, 120}

// Indexed by the number of isolated pawns a side has.
var isolatedPawnPenalty = [9]int{0, -10, -25, -50, -75, -75, -75, -75, -75}

// Indexed by file, clamped to 5.
var kingPawnShieldScores = [6]int{4, 7, 4, 3, 6, 3}

// boardGrid is a square-indexed snapshot so the pawn structure terms don't
// have to go back through the rules adapter for every neighbour.
type boardGrid [64]struct {
	piece rules.Piece
	ok    bool
}

func snapshot(pos rules.Position) (grid boardGrid) {
	for sq := rules.Square(0); sq < 64; sq++ {
		grid[sq].piece, grid[sq].ok = pos.PieceAt(sq)
	}
	return grid
}

func (g *boardGrid) isPawn(file, rank int, color rules.Color) bool {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return false
	}
	cell := g[rules.SquareAt(file, rank)]
	return cell.ok && cell.piece.Kind == rules.Pawn && cell.piece.Color == color
}

// Evaluate scores pos from white's point of view: positive favors white.
// The side to move gets no bonus.
func Evaluate(pos rules.Position) int {
	grid := snapshot(pos)

	score := 0
	var isolated [2]int

	for sq := rules.Square(0); sq < 64; sq++ {
		cell := grid[sq]
		if !cell.ok {
			continue
		}
		piece := cell.piece
		value := pieceValue[piece.Kind]

		switch piece.Kind {
		case rules.Pawn:
			if grid.isPassedPawn(sq, piece.Color) {
				value += passedPawnBonus[ranksAdvanced(sq, piece.Color)]
			}
			if grid.isIsolatedPawn(sq, piece.Color) {
				isolated[piece.Color]++
			}
		case rules.King:
			value += grid.kingShield(sq, piece.Color)
		}

		if piece.Color == rules.White {
			score += value
		} else {
			score -= value
		}
	}

	score += isolatedPawnPenalty[isolated[rules.White]]
	score -= isolatedPawnPenalty[isolated[rules.Black]]
	return score
}

// Relative is Evaluate seen from the side to move, the convention negamax
// needs.
func Relative(pos rules.Position) int {
	if pos.WhiteToMove() {
		return Evaluate(pos)
	}
	return -Evaluate(pos)
}

func ranksAdvanced(sq rules.Square, color rules.Color) int {
	if color == rules.White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// isPassedPawn reports whether no enemy pawn stands on the same or an
// adjacent file anywhere ahead of the pawn.
func (g *boardGrid) isPassedPawn(sq rules.Square, color rules.Color) bool {
	file, rank := sq.File(), sq.Rank()
	step, end := 1, 8
	if color == rules.Black {
		step, end = -1, -1
	}
	enemy := color.Other()
	for r := rank + step; r != end; r += step {
		for f := file - 1; f <= file+1; f++ {
			if g.isPawn(f, r, enemy) {
				return false
			}
		}
	}
	return true
}

// isIsolatedPawn reports whether no friendly pawn exists on either adjacent
// file.
func (g *boardGrid) isIsolatedPawn(sq rules.Square, color rules.Color) bool {
	file := sq.File()
	for _, f := range [2]int{file - 1, file + 1} {
		for r := 0; r < 8; r++ {
			if g.isPawn(f, r, color) {
				return false
			}
		}
	}
	return true
}

// kingShield sums the shield weights of friendly pawns on the king's file
// and its neighbours, on the king's rank and the one in front of it.
func (g *boardGrid) kingShield(sq rules.Square, color rules.Color) int {
	file, rank := sq.File(), sq.Rank()
	lo, hi := rank, rank+1
	if color == rules.Black {
		lo, hi = rank-1, rank
	}
	bonus := 0
	for f := Max(0, file-1); f <= Min(7, file+1); f++ {
		for r := Max(0, lo); r <= Min(7, hi); r++ {
			if g.isPawn(f, r, color) {
				bonus += kingPawnShieldScores[Min(5, f)]
			}
		}
	}
	return bonus
}
