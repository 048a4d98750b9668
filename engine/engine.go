package engine

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"chessbot/rules"
)

// Bot plays one game: it owns the live position and the searcher whose
// tables persist between its moves.
type Bot struct {
	backend  rules.Backend
	pos      rules.Position
	searcher *Searcher
}

// NewBot starts a game from the standard initial position.
func NewBot(backend rules.Backend, opts Options) (*Bot, error) {
	pos, err := rules.New(backend, rules.Startpos)
	if err != nil {
		return nil, errors.Wrap(err, "new bot")
	}
	return &Bot{backend: backend, pos: pos, searcher: NewSearcher(opts)}, nil
}

func (b *Bot) Position() rules.Position { return b.pos }
func (b *Bot) Searcher() *Searcher      { return b.searcher }
func (b *Bot) Backend() rules.Backend   { return b.backend }

func (b *Bot) FEN() string { return b.pos.FEN() }

func (b *Bot) PossibleMoves() []rules.Move { return b.pos.LegalMoves() }

// BestMove searches the live position and returns the chosen move without
// playing it. The position is left as it was found. The bool is false when
// the game is already over.
func (b *Bot) BestMove(maxDepth int, limit time.Duration) (rules.Move, int, bool) {
	if b.pos.IsGameOver() {
		return rules.NoMove, 0, false
	}
	b.searcher.beforeMove()

	move, score := b.searcher.IterativeDeepening(b.pos, maxDepth, limit)
	if move.IsNone() {
		ordered := b.searcher.orderer.Order(b.pos, b.pos.LegalMoves(), 0)
		if len(ordered) == 0 {
			return rules.NoMove, 0, false
		}
		move = ordered[0]
		log.Warn().Str("fen", b.pos.FEN()).Str("move", move.String()).Msg("search-fallback")
	}
	return move, score, true
}

// MakeBotMove searches the live position, plays the chosen move and returns
// it. The bool is false when the game is already over.
func (b *Bot) MakeBotMove(maxDepth int, limit time.Duration) (rules.Move, bool) {
	move, score, ok := b.BestMove(maxDepth, limit)
	if !ok {
		return rules.NoMove, false
	}
	log.Info().Str("move", move.String()).Int("score", score).Msg("bot-move")
	b.pos.Push(move)
	return move, true
}

// MakeMove plays a move given in UCI notation. Illegal or malformed moves
// are rejected without touching the position.
func (b *Bot) MakeMove(uci string) bool {
	move, err := rules.ParseMove(uci)
	if err != nil || move.IsNone() || !rules.IsLegal(b.pos, move) {
		return false
	}
	b.pos.Push(move)
	return true
}

// Reset starts a new game from the initial position and applies the
// new-game reset policy.
func (b *Bot) Reset() error {
	if err := b.SetPosition(rules.Startpos, nil); err != nil {
		return err
	}
	b.searcher.NewGame()
	return nil
}

// SetPosition replaces the live position with fen plus moves. Searcher
// state is kept, since a GUI resends the game before every move. On error
// the previous position is kept.
func (b *Bot) SetPosition(fen string, moves []string) error {
	pos, err := rules.New(b.backend, fen)
	if err != nil {
		return errors.Wrap(err, "set position")
	}
	if err := rules.Apply(pos, moves); err != nil {
		return errors.Wrap(err, "set position")
	}
	b.pos = pos
	return nil
}

// SetBackend switches move generators, keeping the current position. The
// repetition history does not survive the switch.
func (b *Bot) SetBackend(backend rules.Backend) error {
	pos, err := rules.New(backend, b.pos.FEN())
	if err != nil {
		return errors.Wrapf(err, "switch to backend %s", backend)
	}
	b.backend = backend
	b.pos = pos
	return nil
}

// Configure rebuilds the searcher with opts. Cached results, killers and
// history are lost.
func (b *Bot) Configure(opts Options) {
	b.searcher = NewSearcher(opts)
}
