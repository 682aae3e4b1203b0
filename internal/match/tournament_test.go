package match

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"lig4/engine/internal/game"
)

func TestRunTournament(t *testing.T) {
	entrants := []EngineSpec{
		{Algorithm: "minimax", Pruning: true, Depth: 2},
		{Algorithm: "negamax", Pruning: true, Depth: 2},
		{Name: "shallow", Algorithm: "negamax", Depth: 1},
	}
	run := func() []Standing {
		m := NewManager(Config{Logger: zaptest.NewLogger(t).Sugar()})
		rows, err := RunTournament(context.Background(), m, entrants, TournamentOptions{WinLength: 4, Workers: 2, Seed: 7})
		if err != nil {
			t.Fatalf("RunTournament: %v", err)
		}
		return rows
	}

	rows := run()
	if len(rows) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(rows))
	}
	points := 0
	for _, r := range rows {
		if r.Played != 4 {
			t.Fatalf("%s played %d matches, want 4", r.Name, r.Played)
		}
		if r.Wins+r.Losses+r.Draws != r.Played {
			t.Fatalf("%s results do not add up: %+v", r.Name, r)
		}
		points += r.Points
	}
	if points != 6*pointsWin {
		t.Fatalf("total points %d, want %d", points, 6*pointsWin)
	}
	names := map[string]bool{}
	for _, r := range rows {
		names[r.Name] = true
	}
	for _, want := range []string{"minimax+ab/2", "negamax+ab/2", "shallow"} {
		if !names[want] {
			t.Fatalf("missing entrant %q in %v", want, names)
		}
	}
	if entrants[0].Name != "" {
		t.Fatalf("RunTournament modified the caller's entrants")
	}

	if diff := cmp.Diff(rows, run()); diff != "" {
		t.Fatalf("seeded tournament not reproducible (-first +second):\n%s", diff)
	}
}

func TestRunTournamentRejects(t *testing.T) {
	m := NewManager(Config{})
	one := []EngineSpec{{Algorithm: "minimax", Depth: 1}}
	if _, err := RunTournament(context.Background(), m, one, TournamentOptions{}); !errors.Is(err, ErrInvalidSetup) {
		t.Fatalf("expected ErrInvalidSetup for one entrant, got %v", err)
	}
	dup := []EngineSpec{{Algorithm: "minimax", Depth: 1}, {Algorithm: "minimax", Depth: 1}}
	if _, err := RunTournament(context.Background(), m, dup, TournamentOptions{}); !errors.Is(err, ErrInvalidSetup) {
		t.Fatalf("expected ErrInvalidSetup for duplicates, got %v", err)
	}
}

func TestTableRecord(t *testing.T) {
	table := NewTable()
	players := []PlayerView{{Name: "a", Piece: game.PlayerPiece}, {Name: "b", Piece: game.OpponentPiece}}
	table.Record(View{Status: StatusFinished, Winner: game.PlayerPiece, Players: players})
	table.Record(View{Status: StatusFinished, Winner: game.Empty, Players: players})
	table.Record(View{Status: StatusActive, Players: players})

	want := []Standing{
		{Name: "a", Played: 2, Wins: 1, Draws: 1, Points: 3},
		{Name: "b", Played: 2, Losses: 1, Draws: 1, Points: 1},
	}
	if diff := cmp.Diff(want, table.Rows()); diff != "" {
		t.Fatalf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestDifficultyPresets(t *testing.T) {
	tests := []struct {
		in        string
		want      Difficulty
		depth     int
		obstacles float64
	}{
		{"", DifficultyDefault, 5, 0},
		{"1", DifficultyEasy, 3, 0},
		{"medium", DifficultyMedium, 5, 0},
		{"HARD", DifficultyHard, 5, HardObstacles},
	}
	for _, tc := range tests {
		d, err := ParseDifficulty(tc.in)
		if err != nil || d != tc.want {
			t.Fatalf("ParseDifficulty(%q) = %v, %v", tc.in, d, err)
		}
		if d.Depth() != tc.depth || d.ObstacleFraction() != tc.obstacles {
			t.Fatalf("%v: depth %d obstacles %v", d, d.Depth(), d.ObstacleFraction())
		}
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Fatalf("expected error for unknown difficulty")
	}
}

func TestNewSetup(t *testing.T) {
	s := NewSetup(ModeAIvsAI, DifficultyHard, 5, "")
	if s.Player.Engine == nil || s.Opponent.Engine == nil {
		t.Fatalf("ai-vs-ai must seat two engines: %+v", s)
	}
	if s.Player.Engine.Algorithm != "minimax" || s.Opponent.Engine.Algorithm != "negamax" {
		t.Fatalf("unexpected engines %+v / %+v", s.Player.Engine, s.Opponent.Engine)
	}
	if s.Obstacles != HardObstacles || s.WinLength != 5 || s.Player.Engine.Depth != 5 {
		t.Fatalf("unexpected setup %+v", s)
	}

	h := NewSetup(ModeHumanVsAI, DifficultyEasy, 4, "")
	if h.Player.Engine != nil || h.Player.Name != "human" {
		t.Fatalf("human seat = %+v", h.Player)
	}
	if h.Opponent.Engine.Depth != 3 {
		t.Fatalf("easy engine depth = %d", h.Opponent.Engine.Depth)
	}

	for in, want := range map[string]Mode{"1": ModeAIvsAI, "human-vs-ai": ModeHumanVsAI} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
}
