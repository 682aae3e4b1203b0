package match

import (
	"fmt"
	"strings"

	"lig4/engine/internal/game"
)

type Difficulty int

const (
	DifficultyDefault Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
)

// HardObstacles is the share of obstacle draws on hard boards.
const HardObstacles = 0.20

func (d Difficulty) Depth() int {
	if d == DifficultyEasy {
		return 3
	}
	return 5
}

func (d Difficulty) ObstacleFraction() float64 {
	if d == DifficultyHard {
		return HardObstacles
	}
	return 0
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "default"
	}
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "default":
		return DifficultyDefault, nil
	case "1", "easy":
		return DifficultyEasy, nil
	case "2", "medium":
		return DifficultyMedium, nil
	case "3", "hard":
		return DifficultyHard, nil
	}
	return DifficultyDefault, fmt.Errorf("unknown difficulty %q", s)
}

type Mode string

const (
	ModeAIvsAI    Mode = "ai-vs-ai"
	ModeHumanVsAI Mode = "human-vs-ai"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAIvsAI, "1":
		return ModeAIvsAI, nil
	case ModeHumanVsAI, "2":
		return ModeHumanVsAI, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// NewSetup builds the classic line-up for a mode. In ai-vs-ai the player
// piece is driven by minimax and the opponent piece by negamax, both
// pruned; in human-vs-ai the human holds the player piece.
func NewSetup(mode Mode, d Difficulty, winLength int, humanName string) Setup {
	depth := d.Depth()
	setup := Setup{
		WinLength: winLength,
		Obstacles: d.ObstacleFraction(),
		Player: Participant{
			Name:   "minimax",
			Engine: &EngineSpec{Name: "minimax", Algorithm: "minimax", Pruning: true, Depth: depth},
		},
		Opponent: Participant{
			Name:   "negamax",
			Engine: &EngineSpec{Name: "negamax", Algorithm: "negamax", Pruning: true, Depth: depth},
		},
	}
	if mode == ModeHumanVsAI {
		if humanName == "" {
			humanName = "human"
		}
		setup.Player = Participant{Name: humanName}
	}
	return setup
}

func (s Setup) withDefaults() Setup {
	if s.Rows <= 0 {
		s.Rows = game.DefaultRows
	}
	if s.Cols <= 0 {
		s.Cols = game.DefaultColumns
	}
	if s.WinLength == 0 {
		s.WinLength = 4
	}
	return s
}
