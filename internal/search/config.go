package search

import (
	"errors"
	"fmt"
	"strings"

	"lig4/engine/internal/game"
)

var (
	ErrInvalidDepth     = errors.New("search depth must be positive")
	ErrUnknownAlgorithm = errors.New("unknown search algorithm")
)

type Algorithm int

const (
	Minimax Algorithm = iota + 1
	Negamax
)

func (a Algorithm) String() string {
	switch a {
	case Minimax:
		return "minimax"
	case Negamax:
		return "negamax"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// ParseAlgorithm accepts "minimax" or "negamax", case-insensitive.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimax":
		return Minimax, nil
	case "negamax":
		return Negamax, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Config is built per move request.
type Config struct {
	MaxDepth  int
	WinLength int
	Pruning   bool
	Algorithm Algorithm
}

func NewConfig(depth, winLength int, algorithm Algorithm, pruning bool) (Config, error) {
	cfg := Config{
		MaxDepth:  depth,
		WinLength: winLength,
		Pruning:   pruning,
		Algorithm: algorithm,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, c.MaxDepth)
	}
	if err := game.ValidateWinLength(c.WinLength); err != nil {
		return err
	}
	if c.Algorithm != Minimax && c.Algorithm != Negamax {
		return fmt.Errorf("%w: %v", ErrUnknownAlgorithm, c.Algorithm)
	}
	return nil
}

// Name is a short label such as "negamax+ab/5".
func (c Config) Name() string {
	name := c.Algorithm.String()
	if c.Pruning {
		name += "+ab"
	}
	return fmt.Sprintf("%s/%d", name, c.MaxDepth)
}
