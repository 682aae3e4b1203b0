package game

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove      = errors.New("illegal move")
	ErrNoValidMoves     = errors.New("no valid moves")
	ErrInvalidWinLength = errors.New("win length must be 4, 5 or 6")
)

// IllegalMoveError describes why a column cannot take a piece.
type IllegalMoveError struct {
	Column int
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move in column %d: %s", e.Column, e.Reason)
}

func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// WinLengths are the supported run lengths.
var WinLengths = []int{4, 5, 6}

func ValidateWinLength(n int) error {
	for _, w := range WinLengths {
		if n == w {
			return nil
		}
	}
	return fmt.Errorf("%w: got %d", ErrInvalidWinLength, n)
}

// Apply drops piece into col and returns the row it landed on.
func Apply(b *Board, col int, piece Cell) (int, error) {
	if !piece.IsPiece() {
		return -1, &IllegalMoveError{Column: col, Reason: fmt.Sprintf("%s is not a player piece", piece)}
	}
	if col < 0 || col >= b.cols {
		return -1, &IllegalMoveError{Column: col, Reason: "column out of range"}
	}
	if !b.IsPlayable(col) {
		return -1, &IllegalMoveError{Column: col, Reason: "column is full"}
	}
	row := b.LandingRow(col)
	b.Place(row, col, piece)
	return row, nil
}
