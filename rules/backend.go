package rules

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Backend names a move generator implementation.
type Backend string

const (
	Dragon Backend = "dragon"
	Goose  Backend = "goose"
)

// Backends lists every available move generator.
var Backends = []Backend{Dragon, Goose}

// ParseBackend accepts a backend name case-insensitively.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if !lo.Contains(Backends, b) {
		return "", errors.Errorf("unknown backend %q", name)
	}
	return b, nil
}

// New builds a position from fen using the given backend.
func New(backend Backend, fen string) (Position, error) {
	switch backend {
	case Dragon:
		return NewDragon(fen)
	case Goose:
		return NewGoose(fen)
	}
	return nil, errors.Errorf("unknown backend %q", backend)
}

// Apply plays a sequence of UCI moves on pos, rejecting the first illegal
// one. Moves played before the failure stay applied.
func Apply(pos Position, moves []string) error {
	for _, s := range moves {
		m, err := ParseMove(s)
		if err != nil {
			return err
		}
		if !IsLegal(pos, m) {
			return errors.Errorf("move %s is not legal in %s", s, pos.FEN())
		}
		pos.Push(m)
	}
	return nil
}

// Perft counts leaf nodes of the legal move tree to the given depth.
func Perft(pos Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := pos.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		pos.Push(m)
		nodes += Perft(pos, depth-1)
		pos.Pop()
	}
	return nodes
}

// PerftDivide reports the perft count below each root move, keyed by its
// UCI string.
func PerftDivide(pos Position, depth int) map[string]uint64 {
	return lo.SliceToMap(pos.LegalMoves(), func(m Move) (string, uint64) {
		pos.Push(m)
		defer pos.Pop()
		return m.String(), Perft(pos, depth-1)
	})
}
