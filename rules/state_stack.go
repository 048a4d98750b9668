package rules

const (
	// Halfmoves without capture or pawn move after which the game ends
	// without a claim.
	seventyFiveMoveLimit = 150
	fivefoldLimit        = 5
)

// state captures what we need to reason about repetitions and draws.
type state struct {
	Hash   uint64
	Rule50 int
}

// stateStack mirrors the board's push/pop history so repetition can be
// detected without asking the move generator.
type stateStack []state

func (s *stateStack) reset(hash uint64, rule50 int) {
	*s = (*s)[:0]
	s.push(hash, rule50)
}

func (s *stateStack) push(hash uint64, rule50 int) {
	*s = append(*s, state{Hash: hash, Rule50: rule50})
}

func (s *stateStack) pop() {
	if len(*s) == 0 {
		return
	}
	*s = (*s)[:len(*s)-1]
}

func (s stateStack) clone() stateStack {
	out := make(stateStack, len(s), cap(s))
	copy(out, s)
	return out
}

// repetitions counts occurrences of the current position, itself included,
// since the last irreversible move.
func (s stateStack) repetitions() int {
	if len(s) == 0 {
		return 0
	}
	curr := s[len(s)-1]
	start := len(s) - 1 - curr.Rule50
	if start < 0 {
		start = 0
	}
	count := 0
	for i := len(s) - 1; i >= start; i -= 2 {
		if s[i].Hash == curr.Hash {
			count++
		}
	}
	return count
}

func (s stateStack) rule50() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Rule50
}

// drawOutcome reports the automatic draws that do not depend on the move
// generator. Checkmate and stalemate are decided by the backend.
func (s stateStack) drawOutcome(m material) Outcome {
	if m.insufficient() {
		return InsufficientMaterial
	}
	if s.rule50() >= seventyFiveMoveLimit {
		return SeventyFiveMoves
	}
	if s.repetitions() >= fivefoldLimit {
		return FivefoldRepetition
	}
	return Ongoing
}
