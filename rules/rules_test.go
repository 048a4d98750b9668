package rules

import (
	"testing"

	"github.com/matryer/is"
)

func newPositions(t *testing.T, fen string) map[Backend]Position {
	t.Helper()
	out := make(map[Backend]Position, len(Backends))
	for _, backend := range Backends {
		pos, err := New(backend, fen)
		if err != nil {
			t.Fatalf("%s: parse FEN: %v", backend, err)
		}
		out[backend] = pos
	}
	return out
}

func TestPerftStartpos(t *testing.T) {
	want := []uint64{1, 20, 400, 8902}
	for backend, pos := range newPositions(t, Startpos) {
		for depth, nodes := range want {
			if got := Perft(pos, depth); got != nodes {
				t.Fatalf("%s: perft(%d) = %d, want %d", backend, depth, got, nodes)
			}
		}
	}
}

func TestPerftKiwipete(t *testing.T) {
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	for backend, pos := range newPositions(t, kiwipete) {
		if got := Perft(pos, 2); got != 2039 {
			t.Fatalf("%s: perft(2) = %d, want 2039", backend, got)
		}
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	for backend, pos := range newPositions(t, Startpos) {
		startFEN, startKey := pos.FEN(), pos.Key()
		if err := Apply(pos, []string{"e2e4", "e7e5", "g1f3"}); err != nil {
			t.Fatalf("%s: apply: %v", backend, err)
		}
		if pos.Key() == startKey {
			t.Fatalf("%s: key unchanged after three moves", backend)
		}
		pos.Pop()
		pos.Pop()
		pos.Pop()
		if pos.FEN() != startFEN {
			t.Fatalf("%s: FEN mismatch after pop: got %q want %q", backend, pos.FEN(), startFEN)
		}
		if pos.Key() != startKey {
			t.Fatalf("%s: key mismatch after pop: got %x want %x", backend, pos.Key(), startKey)
		}
	}
}

func TestOutcomes(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want Outcome
	}{
		{"startpos", Startpos, Ongoing},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", Checkmate},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Stalemate},
		{"bare kings", "8/8/4k3/8/8/3K4/8/8 w - - 0 1", InsufficientMaterial},
		{"lone knight", "8/8/4k3/8/8/3KN3/8/8 w - - 0 1", InsufficientMaterial},
		{"rook is enough", "8/8/4k3/8/8/3KR3/8/8 w - - 0 1", Ongoing},
		{"seventy five moves", "8/8/4k3/8/8/3KR3/8/8 w - - 150 120", SeventyFiveMoves},
	}
	for _, tc := range cases {
		for backend, pos := range newPositions(t, tc.fen) {
			if got := pos.Outcome(); got != tc.want {
				t.Fatalf("%s/%s: outcome %v, want %v", tc.name, backend, got, tc.want)
			}
			if pos.IsGameOver() != (tc.want != Ongoing) {
				t.Fatalf("%s/%s: IsGameOver disagrees with outcome", tc.name, backend)
			}
		}
	}
}

func TestFivefoldRepetition(t *testing.T) {
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for backend, pos := range newPositions(t, Startpos) {
		for i := 0; i < 3; i++ {
			if err := Apply(pos, shuffle); err != nil {
				t.Fatalf("%s: apply: %v", backend, err)
			}
		}
		if pos.IsGameOver() {
			t.Fatalf("%s: game over after four occurrences", backend)
		}
		if err := Apply(pos, shuffle); err != nil {
			t.Fatalf("%s: apply: %v", backend, err)
		}
		if got := pos.Outcome(); got != FivefoldRepetition {
			t.Fatalf("%s: outcome %v, want fivefold repetition", backend, got)
		}
		pos.Pop()
		if pos.IsGameOver() {
			t.Fatalf("%s: still over after pop", backend)
		}
	}
}

func TestPieceAtAndCaptures(t *testing.T) {
	is := is.New(t)
	const fen = "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2"
	for _, pos := range newPositions(t, fen) {
		p, ok := pos.PieceAt(SquareAt(3, 4)) // d5
		is.True(ok)
		is.Equal(p, Piece{Kind: Pawn, Color: Black})
		_, ok = pos.PieceAt(SquareAt(4, 2)) // e3
		is.True(!ok)
		king, _ := pos.PieceAt(SquareAt(4, 0))
		is.Equal(king, Piece{Kind: King, Color: White})

		capture, err := ParseMove("e4d5")
		is.NoErr(err)
		is.True(pos.IsCapture(capture))
		quiet, _ := ParseMove("e4e5")
		is.True(!pos.IsCapture(quiet))
		is.True(pos.WhiteToMove())
	}
}

func TestEnPassantIsCapture(t *testing.T) {
	is := is.New(t)
	const fen = "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1"
	for _, pos := range newPositions(t, fen) {
		ep, _ := ParseMove("e5d6")
		is.True(IsLegal(pos, ep))
		is.True(pos.IsCapture(ep))
		_, ok := pos.PieceAt(SquareAt(3, 5))
		is.True(!ok) // the victim is not on the destination square

		pos.Push(ep)
		_, ok = pos.PieceAt(SquareAt(3, 4))
		is.True(!ok)
		pos.Pop()
		victim, ok := pos.PieceAt(SquareAt(3, 4))
		is.True(ok)
		is.Equal(victim, Piece{Kind: Pawn, Color: Black})
	}
}

func TestParseMove(t *testing.T) {
	is := is.New(t)
	m, err := ParseMove("e7e8q")
	is.NoErr(err)
	is.Equal(m, Move{From: SquareAt(4, 6), To: SquareAt(4, 7), Promotion: Queen})
	is.Equal(m.String(), "e7e8q")

	none, err := ParseMove("0000")
	is.NoErr(err)
	is.True(none.IsNone())

	for _, bad := range []string{"", "e2", "i2e4", "e2e9", "e7e8k"} {
		_, err := ParseMove(bad)
		is.True(err != nil)
	}
}

func TestApplyRejectsIllegalMove(t *testing.T) {
	for backend, pos := range newPositions(t, Startpos) {
		key := pos.Key()
		if err := Apply(pos, []string{"e2e5"}); err == nil {
			t.Fatalf("%s: expected illegal move error", backend)
		}
		if pos.Key() != key {
			t.Fatalf("%s: illegal move mutated the position", backend)
		}
	}
}

func TestNewRejectsGarbage(t *testing.T) {
	for _, backend := range Backends {
		if _, err := New(backend, "not a fen"); err == nil {
			t.Fatalf("%s: expected error", backend)
		}
	}
	if _, err := ParseBackend("stockfish"); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	b, err := ParseBackend(" Goose ")
	if err != nil || b != Goose {
		t.Fatalf("ParseBackend: got %q, %v", b, err)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	for backend, pos := range newPositions(t, Startpos) {
		cp := pos.Copy()
		if err := Apply(cp, []string{"d2d4"}); err != nil {
			t.Fatalf("%s: apply: %v", backend, err)
		}
		if pos.FEN() == cp.FEN() {
			t.Fatalf("%s: copy shares state with original", backend)
		}
	}
}
