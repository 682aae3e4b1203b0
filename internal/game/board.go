package game

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	DefaultRows    = 6
	DefaultColumns = 7
)

type Cell int

const (
	Empty Cell = iota
	PlayerPiece
	OpponentPiece
	Obstacle
)

// Opponent returns the other player's piece. Empty and Obstacle map to themselves.
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerPiece:
		return OpponentPiece
	case OpponentPiece:
		return PlayerPiece
	default:
		return c
	}
}

// IsPiece reports whether c belongs to one of the two sides.
func (c Cell) IsPiece() bool {
	return c == PlayerPiece || c == OpponentPiece
}

func (c Cell) String() string {
	switch c {
	case PlayerPiece:
		return "player"
	case OpponentPiece:
		return "opponent"
	case Obstacle:
		return "obstacle"
	default:
		return "empty"
	}
}

// Board is a rows x cols grid. Row 0 is the bottom row.
type Board struct {
	rows  int
	cols  int
	cells []Cell
}

func New(rows, cols int) *Board {
	return &Board{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// NewWithObstacles creates an empty board and scatters obstacles on it.
// The budget is round(fraction * rows * (cols-1)); positions are drawn with
// replacement over the whole grid, so duplicates collapse into one cell.
func NewWithObstacles(rows, cols int, fraction float64, rng *rand.Rand) *Board {
	b := New(rows, cols)
	if fraction <= 0 {
		return b
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for i := 0; i < ObstacleBudget(rows, cols, fraction); i++ {
		b.cells[rng.Intn(len(b.cells))] = Obstacle
	}
	return b
}

// ObstacleBudget is the number of obstacle draws for a board.
func ObstacleBudget(rows, cols int, fraction float64) int {
	if fraction <= 0 {
		return 0
	}
	return int(math.RoundToEven(fraction * float64(rows*(cols-1))))
}

// FromRows builds a board from rows listed bottom first.
func FromRows(rows [][]Cell) (*Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("board must have at least one row and one column")
	}
	b := New(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != b.cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), b.cols)
		}
		for c, cell := range row {
			if cell < Empty || cell > Obstacle {
				return nil, fmt.Errorf("invalid cell %d at row %d col %d", cell, r, c)
			}
			b.Place(r, c, cell)
		}
	}
	return b, nil
}

// Cells returns a copy of the grid, bottom row first.
func (b *Board) Cells() [][]Cell {
	out := make([][]Cell, b.rows)
	for r := range out {
		out[r] = make([]Cell, b.cols)
		copy(out[r], b.cells[r*b.cols:(r+1)*b.cols])
	}
	return out
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < b.rows && col < b.cols
}

func (b *Board) At(row, col int) Cell {
	return b.cells[row*b.cols+col]
}

// Place writes a cell without any legality check.
func (b *Board) Place(row, col int, cell Cell) {
	b.cells[row*b.cols+col] = cell
}

// IsPlayable reports whether the top cell of col is empty.
func (b *Board) IsPlayable(col int) bool {
	if col < 0 || col >= b.cols {
		return false
	}
	return b.At(b.rows-1, col) == Empty
}

// LandingRow returns the lowest empty row in col, or -1.
func (b *Board) LandingRow(col int) int {
	if col < 0 || col >= b.cols {
		return -1
	}
	for r := 0; r < b.rows; r++ {
		if b.At(r, col) == Empty {
			return r
		}
	}
	return -1
}

func (b *Board) Count(cell Cell) int {
	n := 0
	for _, c := range b.cells {
		if c == cell {
			n++
		}
	}
	return n
}

func (b *Board) Clone() *Board {
	clone := &Board{rows: b.rows, cols: b.cols}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

// String renders the board top row first.
func (b *Board) String() string {
	var sb strings.Builder
	for r := b.rows - 1; r >= 0; r-- {
		for c := 0; c < b.cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			switch b.At(r, c) {
			case PlayerPiece:
				sb.WriteByte('X')
			case OpponentPiece:
				sb.WriteByte('O')
			case Obstacle:
				sb.WriteByte('#')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	for c := 0; c < b.cols; c++ {
		if c > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprint(c % 10))
	}
	sb.WriteByte('\n')
	return sb.String()
}
