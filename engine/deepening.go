package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"chessbot/rules"
)

// SearchInfo describes one finished iteration of iterative deepening.
type SearchInfo struct {
	Depth   int
	Score   int
	Nodes   uint64
	Elapsed time.Duration
	Move    rules.Move
	PV      []rules.Move
}

// NPS is the node rate of the iteration, quiescence nodes included.
func (si SearchInfo) NPS() uint64 {
	ms := si.Elapsed.Milliseconds()
	if ms == 0 {
		ms = 1
	}
	return si.Nodes * 1000 / uint64(ms)
}

// IterativeDeepening searches depth 1, 2, ... maxDepth from pos and returns
// the best move of the deepest iteration that produced one, together with
// its score. Depth 1 always finishes; every later depth is only started
// while the time limit has not been used up, and is cut short at the
// deadline. NoMove is returned only when pos has no legal moves.
func (s *Searcher) IterativeDeepening(pos rules.Position, maxDepth int, limit time.Duration) (rules.Move, int) {
	s.stats.reset()
	s.timer.StartTime(limit)

	bestMove := rules.NoMove
	bestScore := 0

	for depth := 1; depth <= Max(maxDepth, 1); depth++ {
		deadline := time.Time{}
		if depth > 1 {
			if s.timer.BudgetExceeded() {
				break
			}
			deadline = s.timer.Deadline()
		}

		move, score, ok := s.Search(pos, depth, -Infinity, Infinity, deadline)

		// A partial root search still tried the previous best move first,
		// so whatever it preferred is at least as good.
		if !move.IsNone() {
			bestMove = move
			if ok {
				bestScore = score
			}
		}
		if !ok {
			log.Debug().Int("depth", depth).Str("move", move.String()).Msg("deepening-aborted")
			break
		}
		if move.IsNone() {
			break
		}

		info := SearchInfo{
			Depth:   depth,
			Score:   score,
			Nodes:   s.stats.total(),
			Elapsed: s.timer.Elapsed(),
			Move:    move,
			PV:      s.PrincipalVariation(pos, depth),
		}
		log.Debug().
			Int("depth", depth).
			Int("score", score).
			Str("move", move.String()).
			Uint64("nodes", info.Nodes).
			Dur("elapsed", info.Elapsed).
			Msg("deepening-iteratively")
		if s.OnDepth != nil {
			s.OnDepth(info)
		}

		// Nothing deeper can beat a forced mate.
		if IsMateScore(score) {
			break
		}
	}

	s.dumpStats()
	return bestMove, bestScore
}

// PrincipalVariation follows the table's best moves from pos for at most
// maxLen plies. The line stops at the first missing or illegal move, or
// when a position repeats.
func (s *Searcher) PrincipalVariation(pos rules.Position, maxLen int) []rules.Move {
	var pv []rules.Move
	seen := make(map[uint64]bool)
	for len(pv) < maxLen {
		key := pos.Key()
		if seen[key] {
			break
		}
		seen[key] = true
		move, ok := s.tt.BestMove(key)
		if !ok || !rules.IsLegal(pos, move) {
			break
		}
		pos.Push(move)
		pv = append(pv, move)
	}
	for range pv {
		pos.Pop()
	}
	return pv
}

// ScoredMove pairs a move with its ordering score.
type ScoredMove struct {
	Move  rules.Move
	Score int
}

// RootOrdering lists the legal moves of pos in search order with their
// ordering scores.
func (s *Searcher) RootOrdering(pos rules.Position) []ScoredMove {
	scored := s.orderer.score(pos, pos.LegalMoves(), 0)
	ordered := sortScored(scored)
	byMove := make(map[rules.Move]int, len(scored))
	for _, sm := range scored {
		byMove[sm.move] = sm.score
	}
	out := make([]ScoredMove, len(ordered))
	for i, m := range ordered {
		out[i] = ScoredMove{Move: m, Score: byMove[m]}
	}
	return out
}
