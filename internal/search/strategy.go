package search

import (
	"math"

	"lig4/engine/internal/game"
)

type window struct {
	alpha, beta float64
}

func fullWindow() window {
	return window{alpha: math.Inf(-1), beta: math.Inf(1)}
}

// strategy is how a node folds its children's scores. The tree walk
// itself is shared by every algorithm.
type strategy interface {
	// perspective is the side leaf scores are measured for.
	perspective(toMove game.Cell) game.Cell
	initial(toMove game.Cell) float64
	// fromChild converts a child's score into this node's frame.
	fromChild(score float64) float64
	better(toMove game.Cell, score, best float64) bool
	childWindow(w window) window
	// tighten narrows w with the node's current value and reports a cutoff.
	tighten(toMove game.Cell, w *window, value float64) bool
}

func newStrategy(a Algorithm, root game.Cell) strategy {
	if a == Negamax {
		return negamax{}
	}
	return minimax{root: root}
}

// minimax scores every leaf for the root side; nodes where the root side
// moves maximise, the others minimise.
type minimax struct {
	root game.Cell
}

func (m minimax) perspective(game.Cell) game.Cell { return m.root }

func (m minimax) initial(toMove game.Cell) float64 {
	if toMove == m.root {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

func (minimax) fromChild(score float64) float64 { return score }

func (m minimax) better(toMove game.Cell, score, best float64) bool {
	if toMove == m.root {
		return score > best
	}
	return score < best
}

func (minimax) childWindow(w window) window { return w }

func (m minimax) tighten(toMove game.Cell, w *window, value float64) bool {
	if toMove == m.root {
		w.alpha = math.Max(w.alpha, value)
	} else {
		w.beta = math.Min(w.beta, value)
	}
	return w.alpha >= w.beta
}

// negamax scores every node for the side to move and negates on the way up.
type negamax struct{}

func (negamax) perspective(toMove game.Cell) game.Cell { return toMove }

func (negamax) initial(game.Cell) float64 { return math.Inf(-1) }

func (negamax) fromChild(score float64) float64 { return -score }

func (negamax) better(_ game.Cell, score, best float64) bool { return score > best }

func (negamax) childWindow(w window) window {
	return window{alpha: -w.beta, beta: -w.alpha}
}

func (negamax) tighten(_ game.Cell, w *window, value float64) bool {
	w.alpha = math.Max(w.alpha, value)
	return w.alpha >= w.beta
}
