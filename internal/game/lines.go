package game

// directions scanned for runs: horizontal, vertical, rising and falling diagonals.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

// HasLine reports whether piece fills n consecutive cells in any direction.
func HasLine(b *Board, piece Cell, n int) bool {
	if !piece.IsPiece() || n <= 0 {
		return false
	}
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			if b.At(r, c) != piece {
				continue
			}
			for _, d := range directions {
				if runFrom(b, piece, r, c, d[0], d[1], n) {
					return true
				}
			}
		}
	}
	return false
}

func runFrom(b *Board, piece Cell, row, col, dr, dc, n int) bool {
	endRow, endCol := row+dr*(n-1), col+dc*(n-1)
	if !b.InBounds(endRow, endCol) {
		return false
	}
	for i := 1; i < n; i++ {
		if b.At(row+dr*i, col+dc*i) != piece {
			return false
		}
	}
	return true
}

// Windows calls fn with every run of n in-bounds cells in all four directions.
// The slice passed to fn is reused between calls.
func Windows(b *Board, n int, fn func(window []Cell)) {
	if n <= 0 {
		return
	}
	window := make([]Cell, n)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			for _, d := range directions {
				if !b.InBounds(r+d[0]*(n-1), c+d[1]*(n-1)) {
					continue
				}
				for i := 0; i < n; i++ {
					window[i] = b.At(r+d[0]*i, c+d[1]*i)
				}
				fn(window)
			}
		}
	}
}

// ValidMoves returns the playable columns in ascending order.
func ValidMoves(b *Board) []int {
	moves := make([]int, 0, b.cols)
	for c := 0; c < b.cols; c++ {
		if b.IsPlayable(c) {
			moves = append(moves, c)
		}
	}
	return moves
}

// IsTerminal reports whether either side has a line of n or the board is full.
func IsTerminal(b *Board, n int) bool {
	if HasLine(b, PlayerPiece, n) || HasLine(b, OpponentPiece, n) {
		return true
	}
	return len(ValidMoves(b)) == 0
}

// Winner returns the side holding a line of n, if any.
func Winner(b *Board, n int) (Cell, bool) {
	switch {
	case HasLine(b, PlayerPiece, n):
		return PlayerPiece, true
	case HasLine(b, OpponentPiece, n):
		return OpponentPiece, true
	}
	return Empty, false
}
