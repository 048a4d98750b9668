package engine

import (
	"testing"

	"github.com/matryer/is"

	"chessbot/rules"
)

func TestOrderPutsTableMoveFirst(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(DefaultOptions())
	pos := mustPosition(t, rules.Dragon, "4k3/8/8/3q4/4P3/8/8/4K2R w - - 0 1")

	quiet := mustMove(t, "h1h7")
	s.tt.Store(pos.Key(), 1, 0, Upper, quiet)

	ordered := s.orderer.Order(pos, pos.LegalMoves(), 1)
	is.Equal(ordered[0], quiet)
	is.Equal(ordered[1], mustMove(t, "e4d5")) // pawn takes queen comes next
}

func TestCaptureScoreMVVLVA(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(DefaultOptions())
	// The pawn can take the queen, the rook can take a pawn.
	pos := mustPosition(t, rules.Dragon, "4k3/8/8/3q4/4P3/3p4/8/3RK3 w - - 0 1")

	pxq := mustMove(t, "e4d5")
	rxp := mustMove(t, "d1d3")
	is.Equal(s.orderer.CaptureScore(pos, pxq), 1000*9-1)
	is.Equal(s.orderer.CaptureScore(pos, rxp), 1000*1-5)
	is.Equal(s.orderer.CaptureScore(pos, mustMove(t, "e1f1")), 0)

	ordered := s.orderer.Order(pos, pos.LegalMoves(), 0)
	is.Equal(ordered[0], pxq)
	is.Equal(ordered[1], rxp)
}

func TestCaptureScoreUnresolvedVictim(t *testing.T) {
	s := NewSearcher(DefaultOptions())
	// e5xd6 en passant: nothing stands on d6.
	pos := mustPosition(t, rules.Dragon, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	ep := mustMove(t, "e5d6")
	if !pos.IsCapture(ep) {
		t.Fatalf("expected %s to be a capture", ep)
	}
	if got := s.orderer.CaptureScore(pos, ep); got != unresolvedOffset {
		t.Fatalf("expected en passant to score %d, got %d", unresolvedOffset, got)
	}
}

func TestPromotionsAndKillers(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(DefaultOptions())
	pos := mustPosition(t, rules.Dragon, "8/P6k/8/8/8/8/8/K7 w - - 0 1")

	killer := mustMove(t, "a1b1")
	s.killers.Insert(killer, 2)

	ordered := s.orderer.Order(pos, pos.LegalMoves(), 2)
	for i := 0; i < 4; i++ {
		is.Equal(ordered[i].From, rules.SquareAt(0, 6))
		is.True(ordered[i].Promotion != rules.NoKind)
	}
	is.Equal(ordered[4], killer)

	// The killer only counts at the depth it was recorded for.
	is.True(!s.killers.IsKiller(killer, 3))
	is.Equal(len(ordered), 7)
}

func TestOrderIsStableForEqualScores(t *testing.T) {
	s := NewSearcher(DefaultOptions())
	pos := mustPosition(t, rules.Dragon, rules.Startpos)

	moves := pos.LegalMoves()
	ordered := s.orderer.Order(pos, moves, 1)
	for i := range moves {
		if moves[i] != ordered[i] {
			t.Fatalf("move %d: expected %s, got %s", i, moves[i], ordered[i])
		}
	}
}

func TestHistoryRaisesQuietMoves(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(DefaultOptions())
	pos := mustPosition(t, rules.Dragon, rules.Startpos)

	g1f3 := mustMove(t, "g1f3")
	s.history.Increment(g1f3)
	s.history.Increment(g1f3)

	ordered := s.orderer.Order(pos, pos.LegalMoves(), 1)
	is.Equal(ordered[0].From, g1f3.From) // both knight moves from g1 lead
	is.Equal(ordered[1].From, g1f3.From)
	is.Equal(s.orderer.CaptureScore(pos, g1f3), 2)
}

func TestOrderTacticalSkipsQuietMoves(t *testing.T) {
	is := is.New(t)
	s := NewSearcher(DefaultOptions())
	pos := mustPosition(t, rules.Dragon, "4k3/8/8/3q4/4P3/3p4/8/3RK3 w - - 0 1")

	tactical := s.orderer.OrderTactical(pos, pos.LegalMoves())
	is.Equal(len(tactical), 2) // e4d5, d1d3
	for _, m := range tactical {
		is.True(pos.IsCapture(m))
	}
	is.Equal(tactical[0], mustMove(t, "e4d5"))
}
