package engine

import (
	"time"

	"chessbot/rules"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	Infinity  = 1 << 28
	MateScore = 1 << 20
	DrawScore = 0

	// Scores beyond this are mates; the distance to mate is encoded in the
	// difference to MateScore.
	mateThreshold = MateScore - 1000

	// How many quiescence nodes pass between clock reads.
	clockCheckMask = 1023
)

// Searcher owns the transposition table and move ordering heuristics for
// the lifetime of one engine instance. It is not safe for concurrent
// searches; Stop is the only method meant to be called from another
// goroutine.
type Searcher struct {
	opts     Options
	tt       *TransTable
	killers  *KillerTable
	history  HistoryTable
	orderer  Orderer
	timer    TimeHandler
	deadline time.Time
	stats    SearchStats

	// OnDepth, if set, is called after every finished iteration.
	OnDepth func(SearchInfo)
}

func NewSearcher(opts Options) *Searcher {
	s := &Searcher{
		opts:    opts,
		tt:      NewTransTable(opts.TableSize, opts.Replacement),
		killers: NewKillerTable(opts.KillerSlots),
	}
	s.orderer = Orderer{tt: s.tt, killers: s.killers, history: &s.history}
	return s
}

func (s *Searcher) Options() Options       { return s.opts }
func (s *Searcher) Table() *TransTable     { return s.tt }
func (s *Searcher) Killers() *KillerTable  { return s.killers }
func (s *Searcher) History() *HistoryTable { return &s.history }
func (s *Searcher) Orderer() *Orderer      { return &s.orderer }
func (s *Searcher) Stats() SearchStats     { return s.stats }

// Stop asks a running search to return as soon as possible. The request
// sticks until ClearStop, so a Stop racing the start of a search is not
// lost.
func (s *Searcher) Stop() { s.timer.stop.Store(true) }

// ClearStop re-arms the searcher after Stop.
func (s *Searcher) ClearStop() { s.timer.stop.Store(false) }

// NewGame applies the reset policy for a fresh game.
func (s *Searcher) NewGame() {
	if s.opts.ResetPolicy == ResetNever {
		return
	}
	s.tt.Clear()
	s.killers.Clear()
	s.history.Clear()
}

// beforeMove applies the per-move part of the reset policy.
func (s *Searcher) beforeMove() {
	if s.opts.ResetPolicy == DecayPerMove {
		s.history.Age()
		s.killers.Clear()
	}
}

// Search runs one fixed-depth negamax from pos. The returned bool is false
// when the deadline passed before the search finished; the score is then
// meaningless, but the move is the best root move found so far, if any.
// A zero deadline means no time limit.
func (s *Searcher) Search(pos rules.Position, depth int, alpha int, beta int, deadline time.Time) (rules.Move, int, bool) {
	s.deadline = deadline
	return s.alphabeta(pos, depth, 0, alpha, beta)
}

func (s *Searcher) timeUp() bool {
	return s.timer.TimeStatus(s.deadline)
}

func (s *Searcher) alphabeta(pos rules.Position, depth int, ply int, alpha int, beta int) (rules.Move, int, bool) {
	s.stats.Nodes++

	if s.timeUp() {
		s.stats.Aborts++
		return rules.NoMove, 0, false
	}

	key := pos.Key()

	/*
		TRANSPOSITION TABLE LOOKUP
	*/
	if entry, ok := s.probe(key, depth, ply, alpha, beta); ok {
		s.stats.TTCutoffs++
		return entry.Move, entry.Score, true
	}

	if outcome := pos.Outcome(); outcome != rules.Ongoing {
		score := terminalScore(outcome, ply)
		s.storeEntry(key, depth, ply, score, Exact, rules.NoMove)
		return rules.NoMove, score, true
	}

	if depth <= 0 {
		score, ok := s.quiescence(pos, 0, alpha, beta)
		if !ok {
			return rules.NoMove, 0, false
		}
		s.storeEntry(key, depth, ply, score, boundFor(score, alpha, beta), rules.NoMove)
		return rules.NoMove, score, true
	}

	alphaOrig := alpha
	bestMove := rules.NoMove
	bestScore := -Infinity

	for _, move := range s.orderer.Order(pos, pos.LegalMoves(), depth) {
		if s.timeUp() {
			s.stats.Aborts++
			return bestMove, 0, false
		}

		pos.Push(move)
		_, childScore, ok := s.alphabeta(pos, depth-1, ply+1, -beta, -alpha)
		pos.Pop()
		if !ok {
			return bestMove, 0, false
		}
		score := -childScore

		if score > bestScore {
			bestScore = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
		}

		// Beta cutoff
		if alpha >= beta {
			s.stats.BetaCutoffs++
			s.killers.Insert(move, depth)
			s.history.Increment(move)
			s.storeEntry(key, depth, ply, bestScore, Lower, bestMove)
			return bestMove, bestScore, true
		}
	}

	if bestMove.IsNone() {
		bestScore = Relative(pos)
	}
	s.storeEntry(key, depth, ply, bestScore, boundFor(bestScore, alphaOrig, beta), bestMove)
	return bestMove, bestScore, true
}

// boundFor classifies a finished node's score against the window it was
// searched with. Scores inside the window are exact.
func boundFor(score int, alpha int, beta int) Bound {
	switch {
	case score >= beta:
		return Lower
	case score <= alpha:
		return Upper
	}
	return Exact
}

// quiescence resolves captures and promotions below the horizon so the
// static evaluation is only trusted in quiet positions. It fails hard:
// the result is clamped to [alpha, beta].
func (s *Searcher) quiescence(pos rules.Position, qply int, alpha int, beta int) (int, bool) {
	s.stats.QNodes++

	if s.stats.QNodes&clockCheckMask == 0 && s.timeUp() {
		s.stats.Aborts++
		return 0, false
	}

	standPat := Relative(pos)
	if standPat >= beta {
		s.stats.QStandPatCutoffs++
		return beta, true
	}
	if standPat > alpha {
		alpha = standPat
	}
	if qply >= s.opts.QuiescenceMaxPly {
		return alpha, true
	}

	for _, move := range s.orderer.OrderTactical(pos, pos.LegalMoves()) {
		pos.Push(move)
		score, ok := s.quiescence(pos, qply+1, -beta, -alpha)
		pos.Pop()
		if !ok {
			return 0, false
		}
		score = -score

		if score >= beta {
			s.stats.QBetaCutoffs++
			return beta, true
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha, true
}

// terminalScore scores a finished game for the side to move. Mates found
// closer to the root score higher.
func terminalScore(outcome rules.Outcome, ply int) int {
	if outcome == rules.Checkmate {
		return -MateScore + ply
	}
	return DrawScore
}

// Mate scores are stored relative to the node rather than the root so an
// entry stays valid when the position recurs at another ply.
func scoreToTT(score int, ply int) int {
	if score > mateThreshold {
		return score + ply
	}
	if score < -mateThreshold {
		return score - ply
	}
	return score
}

func scoreFromTT(score int, ply int) int {
	if score > mateThreshold {
		return score - ply
	}
	if score < -mateThreshold {
		return score + ply
	}
	return score
}

func (s *Searcher) probe(key uint64, depth int, ply int, alpha int, beta int) (Entry, bool) {
	entry, ok := s.tt.Lookup(key, depth, scoreToTT(alpha, ply), scoreToTT(beta, ply))
	if !ok {
		return entry, false
	}
	entry.Score = scoreFromTT(entry.Score, ply)
	return entry, true
}

func (s *Searcher) storeEntry(key uint64, depth int, ply int, score int, bound Bound, move rules.Move) {
	s.tt.Store(key, Max(depth, 0), scoreToTT(score, ply), bound, move)
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return Abs(score) > mateThreshold && Abs(score) <= MateScore
}

// MateIn converts a mate score into moves to mate, negative when the side
// to move is getting mated.
func MateIn(score int) int {
	if score > 0 {
		return (MateScore - score + 1) / 2
	}
	return -(MateScore + score + 1) / 2
}
