// Package eval scores non-terminal boards for the search engine.
package eval

import "lig4/engine/internal/game"

const DefaultWindow = 4

// Window weights. Own runs are rewarded, an opponent run one short of
// the window is penalised.
const (
	CenterWeight  = 3
	FullWindow    = 100
	OneShort      = 5
	TwoShort      = 2
	OpponentThree = -4
)

// Heuristic scores boards with a sliding window of Window cells.
type Heuristic struct {
	Window int
}

// Default uses a 4-cell window regardless of the game's win length.
func Default() Heuristic {
	return Heuristic{Window: DefaultWindow}
}

// ForWinLength sizes the window to the run length needed to win.
func ForWinLength(n int) Heuristic {
	return Heuristic{Window: n}
}

func (h Heuristic) window() int {
	if h.Window <= 0 {
		return DefaultWindow
	}
	return h.Window
}

// Score returns the desirability of b for piece. It is not symmetric:
// Score(b, p) != -Score(b, p.Opponent()) in general.
func (h Heuristic) Score(b *game.Board, piece game.Cell) int {
	score := 0

	center := b.Cols() / 2
	for r := 0; r < b.Rows(); r++ {
		if b.At(r, center) == piece {
			score += CenterWeight
		}
	}

	w := h.window()
	game.Windows(b, w, func(window []game.Cell) {
		score += h.scoreWindow(window, piece)
	})
	return score
}

func (h Heuristic) scoreWindow(window []game.Cell, piece game.Cell) int {
	var own, opp, empty int
	opponent := piece.Opponent()
	for _, c := range window {
		switch c {
		case piece:
			own++
		case opponent:
			opp++
		case game.Empty:
			empty++
		default:
			return 0
		}
	}

	w := len(window)
	score := 0
	switch {
	case own == w:
		score += FullWindow
	case own == w-1 && empty == 1:
		score += OneShort
	case own == w-2 && empty == 2:
		score += TwoShort
	}
	if opp == w-1 && empty == 1 {
		score += OpponentThree
	}
	return score
}
