package rules

import "math/bits"

const (
	lightSquares uint64 = 0x55AA55AA55AA55AA
	darkSquares  uint64 = 0xAA55AA55AA55AA55
)

// material is the per-side piece occupancy needed for draw detection.
type material struct {
	pawns, knights, bishops, rooks, queens [2]uint64
}

// insufficient reports whether neither side can possibly deliver mate:
// bare kings, a single minor piece, or bishops all on one square color.
func (m material) insufficient() bool {
	for c := 0; c < 2; c++ {
		if m.pawns[c]|m.rooks[c]|m.queens[c] != 0 {
			return false
		}
	}
	knights := bits.OnesCount64(m.knights[0] | m.knights[1])
	bishops := m.bishops[0] | m.bishops[1]
	minors := knights + bits.OnesCount64(bishops)
	if minors <= 1 {
		return true
	}
	if knights == 0 && (bishops&lightSquares == 0 || bishops&darkSquares == 0) {
		return true
	}
	return false
}
