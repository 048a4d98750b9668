// Package rules adapts third-party chess move generators to the narrow
// interface the search engine consumes.
package rules

// Startpos is the FEN of the standard initial position.
const Startpos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Square indexes the board from a1 = 0 to h8 = 63.
type Square uint8

func (sq Square) File() int { return int(sq) % 8 }
func (sq Square) Rank() int { return int(sq) / 8 }

// SquareAt returns the square on the given file and rank, both 0-7.
func SquareAt(file, rank int) Square { return Square(rank*8 + file) }

// PieceKind is a colorless piece type. NoKind doubles as "no promotion".
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color { return c ^ 1 }

type Piece struct {
	Kind  PieceKind
	Color Color
}

// Outcome reports why a game is over, if it is.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	SeventyFiveMoves
	FivefoldRepetition
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient material"
	case SeventyFiveMoves:
		return "seventy-five-move rule"
	case FivefoldRepetition:
		return "fivefold repetition"
	}
	return "ongoing"
}

// Position is the board state the engine searches. Push and Pop must be
// paired: every Push is undone by exactly one Pop, in stack order.
type Position interface {
	LegalMoves() []Move
	Push(m Move)
	Pop()
	IsGameOver() bool
	Outcome() Outcome
	InCheck() bool
	IsCapture(m Move) bool
	PieceAt(sq Square) (Piece, bool)
	// Key is the incrementally maintained Zobrist hash of the position.
	Key() uint64
	WhiteToMove() bool
	FEN() string
	Copy() Position
}

// SideToMove is a convenience over WhiteToMove.
func SideToMove(pos Position) Color {
	if pos.WhiteToMove() {
		return White
	}
	return Black
}

// IsLegal reports whether m is among the legal moves of pos.
func IsLegal(pos Position, m Move) bool {
	for _, legal := range pos.LegalMoves() {
		if legal == m {
			return true
		}
	}
	return false
}
