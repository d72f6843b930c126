package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/apperror"
)

// Cell is the content of one board square.
type Cell byte

const (
	CellEmpty Cell = ' '
	CellX     Cell = 'X'
	CellO     Cell = 'O'
)

const (
	BoardSize = 9

	// MaxDepth is the highest X-count a decision position can have.
	MaxDepth = 4
)

// WinCombos are the 3 rows, 3 columns and 2 diagonals of the grid.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a row-major 3x3 grid, index 0 is the top-left square.
// Boards are comparable and used directly as map keys.
type Board [BoardSize]Cell

// EmptyBoard returns a board with every square empty.
func EmptyBoard() Board {
	var board Board
	for i := range board {
		board[i] = CellEmpty
	}

	return board
}

// ParseBoard - converts a 9-character string over {' ', 'X', 'O'} into a Board.
func ParseBoard(s string) (Board, error) {
	var board Board

	if len(s) != BoardSize {
		return board, fmt.Errorf("%w: want %d characters, got %d", apperror.ErrInvalidBoard, BoardSize, len(s))
	}

	for i := 0; i < BoardSize; i++ {
		switch cell := Cell(s[i]); cell {
		case CellEmpty, CellX, CellO:
			board[i] = cell
		default:
			return Board{}, fmt.Errorf("%w: %q at index %d", apperror.ErrInvalidCell, s[i], i)
		}
	}

	return board, nil
}

// MustParseBoard is like ParseBoard but panics on malformed input.
func MustParseBoard(s string) Board {
	board, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}

	return board
}

// String returns the 9-character representation exchanged with consumers.
func (that Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)

	for _, cell := range that {
		sb.WriteByte(byte(cell))
	}

	return sb.String()
}

func (that Board) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Board) UnmarshalText(text []byte) error {
	board, err := ParseBoard(string(text))
	if err != nil {
		return err
	}

	*that = board

	return nil
}

// Less orders boards by their string representation.
func (that Board) Less(other Board) bool {
	for i := range that {
		if that[i] != other[i] {
			return that[i] < other[i]
		}
	}

	return false
}

func (that Board) Count(cell Cell) int {
	count := 0
	for _, c := range that {
		if c == cell {
			count++
		}
	}

	return count
}

// Depth is the number of X marks, which is the number of moves X has made.
func (that Board) Depth() int {
	return that.Count(CellX)
}

// Turn returns the mark that moves next. X always moves first.
func (that Board) Turn() Cell {
	if that.Count(CellX) == that.Count(CellO) {
		return CellX
	}

	return CellO
}

// Winner returns the mark that completed a line, or CellEmpty when there is none.
func (that Board) Winner() Cell {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != CellEmpty && a == b && b == c {
			return a
		}
	}

	return CellEmpty
}

// IsTerminal reports whether the game is over: a line is complete or the board is full.
func (that Board) IsTerminal() bool {
	return that.Winner() != CellEmpty || that.Count(CellEmpty) == 0
}

// IsDecision reports whether X is to move on a live board with a real choice,
// i.e. more than one empty square. Boards with a single empty square are excluded.
func (that Board) IsDecision() bool {
	return that.Turn() == CellX &&
		that.Winner() == CellEmpty &&
		that.Count(CellEmpty) > 1
}

// Play returns a copy of the board with mark placed on cell.
func (that Board) Play(cell int, mark Cell) Board {
	next := that
	next[cell] = mark

	return next
}

// ToggleMark returns the opponent of mark.
func ToggleMark(mark Cell) Cell {
	if mark == CellX {
		return CellO
	}

	return CellX
}
