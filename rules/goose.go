package rules

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/pkg/errors"
)

type gooseUndo struct {
	move  gm.Move
	state gm.MoveState
}

// goosePosition is a Position backed by GooseEngineMG. Its moves carry the
// moved and captured piece, so Push looks the native move up among the
// legal moves.
type goosePosition struct {
	board  gm.Board
	undo   []gooseUndo
	states stateStack
}

// NewGoose parses fen into a GooseEngineMG-backed position.
func NewGoose(fen string) (Position, error) {
	if err := checkFEN(fen); err != nil {
		return nil, err
	}
	b, err := gm.ParseFEN(fen)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid fen %q", fen)
	}
	p := &goosePosition{board: *b}
	p.states.reset(p.board.Hash(), p.board.HalfmoveClock())
	return p, nil
}

func fromGoose(m gm.Move) Move {
	return Move{
		From:      Square(m.From()),
		To:        Square(m.To()),
		Promotion: PieceKind(m.PromotionPieceType()),
	}
}

func (p *goosePosition) native(m Move) (gm.Move, bool) {
	for _, nm := range p.board.GenerateMoves() {
		if fromGoose(nm) == m {
			return nm, true
		}
	}
	return 0, false
}

func (p *goosePosition) LegalMoves() []Move {
	native := p.board.GenerateMoves()
	moves := make([]Move, len(native))
	for i, nm := range native {
		moves[i] = fromGoose(nm)
	}
	return moves
}

// Push ignores moves that are not legal in the current position; callers
// only push moves taken from LegalMoves.
func (p *goosePosition) Push(m Move) {
	nm, ok := p.native(m)
	if !ok {
		return
	}
	applied, st := p.board.MakeMove(nm)
	if !applied {
		return
	}
	p.undo = append(p.undo, gooseUndo{move: nm, state: st})
	p.states.push(p.board.Hash(), p.board.HalfmoveClock())
}

func (p *goosePosition) Pop() {
	if len(p.undo) == 0 {
		return
	}
	last := p.undo[len(p.undo)-1]
	p.board.UnmakeMove(last.move, last.state)
	p.undo = p.undo[:len(p.undo)-1]
	p.states.pop()
}

func (p *goosePosition) InCheck() bool { return p.board.InCheck(p.board.SideToMove()) }

func (p *goosePosition) Outcome() Outcome {
	if !p.board.HasLegalMoves() {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	return p.states.drawOutcome(p.material())
}

func (p *goosePosition) IsGameOver() bool { return p.Outcome() != Ongoing }

func (p *goosePosition) IsCapture(m Move) bool {
	nm, ok := p.native(m)
	return ok && nm.CapturedPiece() != gm.NoPiece
}

func (p *goosePosition) PieceAt(sq Square) (Piece, bool) {
	piece := p.board.PieceAt(gm.Square(sq))
	if piece == gm.NoPiece {
		return Piece{}, false
	}
	color := White
	if piece.Color() == gm.Black {
		color = Black
	}
	return Piece{Kind: PieceKind(piece.Type()), Color: color}, true
}

func (p *goosePosition) material() material {
	w, b := p.board.Bitboards(gm.White), p.board.Bitboards(gm.Black)
	return material{
		pawns:   [2]uint64{w.Pawns, b.Pawns},
		knights: [2]uint64{w.Knights, b.Knights},
		bishops: [2]uint64{w.Bishops, b.Bishops},
		rooks:   [2]uint64{w.Rooks, b.Rooks},
		queens:  [2]uint64{w.Queens, b.Queens},
	}
}

func (p *goosePosition) Key() uint64       { return p.board.Hash() }
func (p *goosePosition) WhiteToMove() bool { return p.board.SideToMove() == gm.White }
func (p *goosePosition) FEN() string       { return p.board.ToFEN() }

func (p *goosePosition) Copy() Position {
	return &goosePosition{board: p.board, states: p.states.clone()}
}
