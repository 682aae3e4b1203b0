// Package search picks moves with depth-limited game-tree search.
//
// Minimax and negamax, each with or without alpha-beta pruning, share one
// recursive walk; a strategy decides how child scores are folded and how the
// pruning window is passed down. Pruning never changes the chosen column or
// its score, only the number of nodes visited.
package search

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"lig4/engine/internal/eval"
	"lig4/engine/internal/game"
)

// Terminal scores. The asymmetry between win and loss is intentional.
const (
	WinScore  = 1e14
	LossScore = -1e13
	DrawScore = 0
)

// NoColumn marks a result without a move.
const NoColumn = -1

type Result struct {
	Column int     `json:"column"`
	Score  float64 `json:"score"`
}

func (r Result) HasMove() bool {
	return r.Column != NoColumn
}

// Stats counts the work done by one search.
type Stats struct {
	Nodes   int `json:"nodes"`
	Leaves  int `json:"leaves"`
	Cutoffs int `json:"cutoffs"`
}

// Engine runs searches for one configuration. An Engine owns its random
// source and must not be shared between goroutines.
type Engine struct {
	cfg       Config
	heuristic eval.Heuristic
	rng       *rand.Rand
	logger    *zap.SugaredLogger
}

type Option func(*Engine)

// WithRand sets the source used for the fallback column of each node.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

func WithHeuristic(h eval.Heuristic) Option {
	return func(e *Engine) { e.heuristic = h }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		heuristic: eval.Default(),
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Search chooses a column for side on b. b is never modified.
func (e *Engine) Search(b *game.Board, side game.Cell) (Result, Stats) {
	if !side.IsPiece() {
		return Result{Column: NoColumn}, Stats{}
	}
	w := &walker{
		cfg:       e.cfg,
		heuristic: e.heuristic,
		rng:       e.rng,
		strategy:  newStrategy(e.cfg.Algorithm, side),
	}
	start := time.Now()
	res := w.walk(b, e.cfg.MaxDepth, side, fullWindow())
	if res.Score == 0 {
		// drop negative zero
		res.Score = 0
	}
	e.logger.Debugw("search finished",
		"engine", e.cfg.Name(),
		"side", side.String(),
		"column", res.Column,
		"score", res.Score,
		"nodes", w.stats.Nodes,
		"cutoffs", w.stats.Cutoffs,
		"elapsed", time.Since(start))
	return res, w.stats
}

// Run is a one-shot search with a fresh engine.
func Run(b *game.Board, side game.Cell, cfg Config, opts ...Option) (Result, error) {
	e, err := New(cfg, opts...)
	if err != nil {
		return Result{Column: NoColumn}, err
	}
	res, _ := e.Search(b, side)
	return res, nil
}

type walker struct {
	cfg       Config
	heuristic eval.Heuristic
	rng       *rand.Rand
	strategy  strategy
	stats     Stats
}

func (w *walker) walk(b *game.Board, depth int, toMove game.Cell, win window) Result {
	w.stats.Nodes++
	if game.IsTerminal(b, w.cfg.WinLength) {
		w.stats.Leaves++
		return Result{Column: NoColumn, Score: w.terminalScore(b, toMove)}
	}
	if depth <= 0 {
		w.stats.Leaves++
		score := w.heuristic.Score(b, w.strategy.perspective(toMove))
		return Result{Column: NoColumn, Score: float64(score)}
	}

	moves := game.ValidMoves(b)
	best := Result{
		Column: moves[w.rng.Intn(len(moves))],
		Score:  w.strategy.initial(toMove),
	}
	for _, col := range moves {
		child := b.Clone()
		if _, err := game.Apply(child, col, toMove); err != nil {
			continue
		}
		next := w.walk(child, depth-1, toMove.Opponent(), w.strategy.childWindow(win))
		score := w.strategy.fromChild(next.Score)
		if w.strategy.better(toMove, score, best.Score) {
			best = Result{Column: col, Score: score}
		}
		if w.cfg.Pruning && w.strategy.tighten(toMove, &win, best.Score) {
			w.stats.Cutoffs++
			break
		}
	}
	return best
}

func (w *walker) terminalScore(b *game.Board, toMove game.Cell) float64 {
	me := w.strategy.perspective(toMove)
	switch {
	case game.HasLine(b, me, w.cfg.WinLength):
		return WinScore
	case game.HasLine(b, me.Opponent(), w.cfg.WinLength):
		return LossScore
	}
	return DrawScore
}
