package engine

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"chessbot/rules"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func mustPosition(t testing.TB, backend rules.Backend, fen string) rules.Position {
	t.Helper()
	pos, err := rules.New(backend, fen)
	if err != nil {
		t.Fatalf("parse FEN %q: %v", fen, err)
	}
	return pos
}

func mustMove(t testing.TB, s string) rules.Move {
	t.Helper()
	m, err := rules.ParseMove(s)
	if err != nil {
		t.Fatalf("parse move %q: %v", s, err)
	}
	return m
}

// mirrorFEN flips the board vertically and swaps the colors, so the result
// is the same position with the roles of white and black exchanged.
func mirrorFEN(fen string) string {
	fields := strings.Fields(fen)
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		fields[2] = swapCase(fields[2])
	}
	if fields[3] != "-" {
		rank := fields[3][1]
		fields[3] = string([]byte{fields[3][0], '1' + '8' - rank})
	}
	return strings.Join(fields, " ")
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, s)
}

// capturePosition records every move pushed through it.
type capturePosition struct {
	rules.Position
	pushed []rules.Move
	// tactical is false once a quiet move was pushed.
	tactical bool
}

func (p *capturePosition) Push(m rules.Move) {
	if !p.Position.IsCapture(m) && m.Promotion == rules.NoKind {
		p.tactical = false
	}
	p.pushed = append(p.pushed, m)
	p.Position.Push(m)
}
