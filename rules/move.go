package rules

import (
	"strings"

	"github.com/pkg/errors"
)

// Move is origin, destination and an optional promotion kind. Two moves are
// equal when all three fields match.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// NoMove is the zero Move, printed as "0000" like in UCI.
var NoMove Move

func (m Move) IsNone() bool { return m == NoMove }

var promotionLetters = map[PieceKind]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}

func (sq Square) String() string {
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// String renders the move in UCI long algebraic notation.
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if letter, ok := promotionLetters[m.Promotion]; ok {
		s += string(letter)
	}
	return s
}

func parseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, errors.Errorf("invalid square %q", s)
	}
	return SquareAt(int(s[0]-'a'), int(s[1]-'1')), nil
}

// ParseMove converts a UCI string (e2e4, e7e8q, 0000) into a Move. It does
// not check legality.
func ParseMove(movestr string) (Move, error) {
	movestr = strings.TrimSpace(strings.ToLower(movestr))
	if movestr == "0000" {
		return NoMove, nil
	}
	if len(movestr) != 4 && len(movestr) != 5 {
		return NoMove, errors.Errorf("invalid move %q", movestr)
	}
	from, err := parseSquare(movestr[0:2])
	if err != nil {
		return NoMove, errors.Wrapf(err, "parse move %q", movestr)
	}
	to, err := parseSquare(movestr[2:4])
	if err != nil {
		return NoMove, errors.Wrapf(err, "parse move %q", movestr)
	}
	m := Move{From: from, To: to}
	if len(movestr) == 5 {
		switch movestr[4] {
		case 'n':
			m.Promotion = Knight
		case 'b':
			m.Promotion = Bishop
		case 'r':
			m.Promotion = Rook
		case 'q':
			m.Promotion = Queen
		default:
			return NoMove, errors.Errorf("invalid promotion piece in move %q", movestr)
		}
	}
	return m, nil
}
