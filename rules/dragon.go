package rules

import (
	"strings"

	"github.com/dylhunn/dragontoothmg"
	"github.com/pkg/errors"
)

// dragonPosition is a Position backed by dragontoothmg. Moves are applied
// with Board.Apply, whose unapply closures form the undo stack.
type dragonPosition struct {
	board  dragontoothmg.Board
	undo   []func()
	states stateStack
}

// NewDragon parses fen into a dragontoothmg-backed position.
func NewDragon(fen string) (pos Position, err error) {
	if err := checkFEN(fen); err != nil {
		return nil, err
	}
	defer func() {
		// dragontoothmg indexes straight into the FEN fields and panics on
		// malformed input.
		if r := recover(); r != nil {
			pos, err = nil, errors.Errorf("invalid fen %q: %v", fen, r)
		}
	}()
	p := &dragonPosition{board: dragontoothmg.ParseFen(fen)}
	p.states.reset(p.board.Hash(), int(p.board.Halfmoveclock))
	return p, nil
}

// checkFEN rejects strings that are obviously not a FEN before a backend
// parser sees them.
func checkFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return errors.Errorf("invalid fen %q: expected at least 4 fields", fen)
	}
	if strings.Count(fields[0], "/") != 7 {
		return errors.Errorf("invalid fen %q: expected 8 ranks", fen)
	}
	if fields[1] != "w" && fields[1] != "b" {
		return errors.Errorf("invalid fen %q: bad side to move %q", fen, fields[1])
	}
	return nil
}

func toDragon(m Move) dragontoothmg.Move {
	var dm dragontoothmg.Move
	dm.Setfrom(dragontoothmg.Square(m.From)).Setto(dragontoothmg.Square(m.To))
	if m.Promotion != NoKind {
		dm.Setpromote(dragontoothmg.Piece(m.Promotion))
	}
	return dm
}

func fromDragon(dm dragontoothmg.Move) Move {
	return Move{
		From:      Square(dm.From()),
		To:        Square(dm.To()),
		Promotion: PieceKind(dm.Promote()),
	}
}

func (p *dragonPosition) LegalMoves() []Move {
	native := p.board.GenerateLegalMoves()
	moves := make([]Move, len(native))
	for i := range native {
		moves[i] = fromDragon(native[i])
	}
	return moves
}

func (p *dragonPosition) Push(m Move) {
	unapply := p.board.Apply(toDragon(m))
	p.undo = append(p.undo, unapply)
	p.states.push(p.board.Hash(), int(p.board.Halfmoveclock))
}

func (p *dragonPosition) Pop() {
	if len(p.undo) == 0 {
		return
	}
	last := len(p.undo) - 1
	p.undo[last]()
	p.undo = p.undo[:last]
	p.states.pop()
}

func (p *dragonPosition) InCheck() bool { return p.board.OurKingInCheck() }

func (p *dragonPosition) Outcome() Outcome {
	if len(p.board.GenerateLegalMoves()) == 0 {
		if p.board.OurKingInCheck() {
			return Checkmate
		}
		return Stalemate
	}
	return p.states.drawOutcome(p.material())
}

func (p *dragonPosition) IsGameOver() bool { return p.Outcome() != Ongoing }

// IsCapture also covers en passant, which dragontoothmg.IsCapture misses
// because the destination square is empty.
func (p *dragonPosition) IsCapture(m Move) bool {
	if dragontoothmg.IsCapture(toDragon(m), &p.board) {
		return true
	}
	piece, ok := p.PieceAt(m.From)
	return ok && piece.Kind == Pawn && m.From.File() != m.To.File()
}

func (p *dragonPosition) PieceAt(sq Square) (Piece, bool) {
	if kind, ok := dragonKindAt(&p.board.White, sq); ok {
		return Piece{Kind: kind, Color: White}, true
	}
	if kind, ok := dragonKindAt(&p.board.Black, sq); ok {
		return Piece{Kind: kind, Color: Black}, true
	}
	return Piece{}, false
}

func dragonKindAt(bb *dragontoothmg.Bitboards, sq Square) (PieceKind, bool) {
	mask := uint64(1) << sq
	switch {
	case bb.All&mask == 0:
		return NoKind, false
	case bb.Pawns&mask != 0:
		return Pawn, true
	case bb.Knights&mask != 0:
		return Knight, true
	case bb.Bishops&mask != 0:
		return Bishop, true
	case bb.Rooks&mask != 0:
		return Rook, true
	case bb.Queens&mask != 0:
		return Queen, true
	case bb.Kings&mask != 0:
		return King, true
	}
	return NoKind, false
}

func (p *dragonPosition) material() material {
	return material{
		pawns:   [2]uint64{p.board.White.Pawns, p.board.Black.Pawns},
		knights: [2]uint64{p.board.White.Knights, p.board.Black.Knights},
		bishops: [2]uint64{p.board.White.Bishops, p.board.Black.Bishops},
		rooks:   [2]uint64{p.board.White.Rooks, p.board.Black.Rooks},
		queens:  [2]uint64{p.board.White.Queens, p.board.Black.Queens},
	}
}

func (p *dragonPosition) Key() uint64       { return p.board.Hash() }
func (p *dragonPosition) WhiteToMove() bool { return p.board.Wtomove }
func (p *dragonPosition) FEN() string       { return p.board.ToFen() }

// Copy returns an independent position. Its undo stack starts empty, so
// the copy cannot Pop past the point it was taken.
func (p *dragonPosition) Copy() Position {
	return &dragonPosition{board: p.board, states: p.states.clone()}
}
