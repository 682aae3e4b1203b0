package match

import (
	"fmt"
	"sync"

	"lig4/engine/internal/eval"
	"lig4/engine/internal/game"
	"lig4/engine/internal/search"
)

// EngineSpec describes a search engine in driver-facing terms.
type EngineSpec struct {
	Name      string `json:"name"`
	Algorithm string `json:"algorithm"`
	Pruning   bool   `json:"pruning"`
	Depth     int    `json:"depth"`
}

// Config resolves s into a validated search configuration.
func (s EngineSpec) Config(winLength int) (search.Config, error) {
	alg, err := search.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return search.Config{}, err
	}
	return search.NewConfig(s.Depth, winLength, alg, s.Pruning)
}

// Label is s.Name, or the config name when none was given.
func (s EngineSpec) Label(winLength int) string {
	if s.Name != "" {
		return s.Name
	}
	if cfg, err := s.Config(winLength); err == nil {
		return cfg.Name()
	}
	return s.Algorithm
}

// Bot plays one side of a match with a search engine.
type Bot struct {
	Name  string
	Piece game.Cell

	mu     sync.Mutex
	engine *search.Engine
}

func NewBot(name string, piece game.Cell, cfg search.Config, opts ...search.Option) (*Bot, error) {
	if !piece.IsPiece() {
		return nil, fmt.Errorf("bot %q: %v is not a player piece", name, piece)
	}
	engine, err := search.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("bot %q: %w", name, err)
	}
	return &Bot{Name: name, Piece: piece, engine: engine}, nil
}

func (b *Bot) Config() search.Config {
	return b.engine.Config()
}

// ChooseMove searches board for the bot's piece.
func (b *Bot) ChooseMove(board *game.Board) (search.Result, search.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(game.ValidMoves(board)) == 0 {
		return search.Result{Column: search.NoColumn}, search.Stats{}, game.ErrNoValidMoves
	}
	res, stats := b.engine.Search(board, b.Piece)
	if !res.HasMove() {
		return res, stats, fmt.Errorf("%w: position is already decided", game.ErrNoValidMoves)
	}
	return res, stats, nil
}

func heuristicFor(scale bool, winLength int) eval.Heuristic {
	if scale {
		return eval.ForWinLength(winLength)
	}
	return eval.Default()
}
