package reversi

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the number of rows and columns on the board.
const Size = 8

// Cell is the content of a single board square.
type Cell uint8

const (
	// Empty marks a vacant square.
	Empty Cell = iota
	// Black marks a black disc.
	Black
	// White marks a white disc.
	White
)

// Opponent returns the other disc color. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (c Cell) rune() byte {
	switch c {
	case Black:
		return 'B'
	case White:
		return 'W'
	default:
		return '-'
	}
}

// Board is an 8x8 grid indexed as [row][col]; row 0 is rank 1, col 0 is file a.
// It is a value type: copies never share storage.
type Board [Size][Size]Cell

// Pos addresses one square.
type Pos struct {
	Col int
	Row int
}

var (
	// ErrBadPosition is returned for positions outside a1..h8 or malformed text.
	ErrBadPosition = errors.New("bad position")
	// ErrBadRows is returned when a row-string board cannot be parsed.
	ErrBadRows = errors.New("bad board rows")
)

// directions holds the 8 compass and diagonal unit vectors as (dcol, drow).
var directions = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// ParsePos converts "<file><rank>" such as "d3" into a position.
func ParsePos(s string) (Pos, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadPosition, s)
	}
	col := int(s[0]) - 'a'
	row := int(s[1]) - '1'
	p := Pos{Col: col, Row: row}
	if !p.Valid() {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadPosition, s)
	}
	return p, nil
}

// Valid reports whether the position lies on the board.
func (p Pos) Valid() bool {
	return p.Col >= 0 && p.Col < Size && p.Row >= 0 && p.Row < Size
}

func (p Pos) String() string {
	if !p.Valid() {
		return "??"
	}
	return string([]byte{byte('a' + p.Col), byte('1' + p.Row)})
}

// EmptyBoard returns a board with no discs.
func EmptyBoard() Board {
	return Board{}
}

// StartingBoard returns the standard opening layout: d4/e5 white, e4/d5 black.
func StartingBoard() Board {
	var b Board
	b[3][3] = White
	b[3][4] = Black
	b[4][3] = Black
	b[4][4] = White
	return b
}

// At returns the cell at p. Off-board positions read as Empty.
func (b Board) At(p Pos) Cell {
	if !p.Valid() {
		return Empty
	}
	return b[p.Row][p.Col]
}

// Count returns the number of black and white discs.
func (b Board) Count() (black, white int) {
	for r := range Size {
		for c := range Size {
			switch b[r][c] {
			case Black:
				black++
			case White:
				white++
			}
		}
	}
	return black, white
}

// flipsInDirection returns the length of the opponent run starting next to p
// in direction d that is closed by a disc of side. Zero means nothing flips.
func (b Board) flipsInDirection(p Pos, d [2]int, side Cell) int {
	opp := side.Opponent()
	n := 0
	cur := Pos{Col: p.Col + d[0], Row: p.Row + d[1]}
	for cur.Valid() && b[cur.Row][cur.Col] == opp {
		n++
		cur = Pos{Col: cur.Col + d[0], Row: cur.Row + d[1]}
	}
	if n == 0 || !cur.Valid() || b[cur.Row][cur.Col] != side {
		return 0
	}
	return n
}

// IsLegal reports whether side may place a disc at p.
func (b Board) IsLegal(p Pos, side Cell) bool {
	if side != Black && side != White {
		return false
	}
	if !p.Valid() || b[p.Row][p.Col] != Empty {
		return false
	}
	for _, d := range directions {
		if b.flipsInDirection(p, d, side) > 0 {
			return true
		}
	}
	return false
}

// LegalMoves enumerates legal placements for side in row-major order
// (rank 1 first, file a first within a rank).
func (b Board) LegalMoves(side Cell) []Pos {
	moves := make([]Pos, 0, 16)
	for r := range Size {
		for c := range Size {
			p := Pos{Col: c, Row: r}
			if b.IsLegal(p, side) {
				moves = append(moves, p)
			}
		}
	}
	return moves
}

// HasMove reports whether side has at least one legal placement.
func (b Board) HasMove(side Cell) bool {
	for r := range Size {
		for c := range Size {
			if b.IsLegal(Pos{Col: c, Row: r}, side) {
				return true
			}
		}
	}
	return false
}

// Apply places side's disc at p and flips every closed opponent run.
// The receiver is not modified. An illegal move returns an unchanged copy
// and zero flips; callers must reject it before applying.
func (b Board) Apply(p Pos, side Cell) (Board, int) {
	if !b.IsLegal(p, side) {
		return b, 0
	}
	next := b
	flipped := 0
	for _, d := range directions {
		n := b.flipsInDirection(p, d, side)
		for i := 1; i <= n; i++ {
			next[p.Row+d[1]*i][p.Col+d[0]*i] = side
		}
		flipped += n
	}
	next[p.Row][p.Col] = side
	return next, flipped
}

// Rows renders the board as 8 strings over {'-','B','W'}, row 0 = rank 1.
func (b Board) Rows() []string {
	rows := make([]string, Size)
	buf := make([]byte, Size)
	for r := range Size {
		for c := range Size {
			buf[c] = b[r][c].rune()
		}
		rows[r] = string(buf)
	}
	return rows
}

// ParseRows is the inverse of Rows.
func ParseRows(rows []string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("%w: want %d rows, got %d", ErrBadRows, Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("%w: row %d has length %d", ErrBadRows, r, len(row))
		}
		for c := range Size {
			switch row[c] {
			case '-':
				b[r][c] = Empty
			case 'B':
				b[r][c] = Black
			case 'W':
				b[r][c] = White
			default:
				return b, fmt.Errorf("%w: row %d col %d: %q", ErrBadRows, r, c, row[c])
			}
		}
	}
	return b, nil
}
