package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap/zaptest"

	"lig4/engine/internal/game"
	"lig4/engine/internal/match"
)

func roundTrip(t *testing.T, m *Metrics, event string, payload any) {
	t.Helper()
	data, err := encode(event, payload, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	e, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := m.Record(e); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestMetricsFromMatch(t *testing.T) {
	metrics := NewMetrics()
	manager := match.NewManager(match.Config{
		Logger: zaptest.NewLogger(t).Sugar(),
		OnMove: func(v match.View, rec match.MoveRecord) {
			roundTrip(t, metrics, EventMovePlayed, NewMovePayload(v, rec))
		},
		OnFinish: func(v match.View) {
			roundTrip(t, metrics, EventMatchFinished, NewFinishPayload(v))
		},
	})
	setup := match.NewSetup(match.ModeAIvsAI, match.DifficultyEasy, 4, "")
	setup.First = game.PlayerPiece
	setup.Seed = 11
	v, err := manager.StartMatch(setup)
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	v, err = manager.Play(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}

	r := metrics.Snapshot()
	if r.TotalGames != 1 || r.TotalMoves != len(v.Moves) {
		t.Fatalf("totals = %d games %d moves, match had %d moves", r.TotalGames, r.TotalMoves, len(v.Moves))
	}
	if r.GamesPerHour["2024-03-01 10:00"] != 1 {
		t.Fatalf("gamesPerHour = %v", r.GamesPerHour)
	}
	if len(r.Engines) != 2 {
		t.Fatalf("expected two engines, got %+v", r.Engines)
	}
	wins, draws := 0, 0
	for _, e := range r.Engines {
		if e.Games != 1 || e.AvgMoves != float64(len(v.Moves)) || e.AvgNodes <= 0 {
			t.Fatalf("engine report %+v", e)
		}
		wins += e.Wins
		draws += e.Draws
	}
	if v.IsDraw() && draws != 2 || !v.IsDraw() && wins != 1 {
		t.Fatalf("results %+v do not match view winner %v", r.Engines, v.Winner)
	}
}

func TestMetricsOrdering(t *testing.T) {
	m := NewMetrics()
	finish := func(winner string, players ...string) FinishPayload {
		p := FinishPayload{Moves: 10, Duration: 2, Draw: winner == ""}
		p.Winner = winner
		for _, name := range players {
			p.Players = append(p.Players, Seat{Name: name, Winner: name == winner})
		}
		return p
	}
	roundTrip(t, m, EventMatchFinished, finish("b", "a", "b"))
	roundTrip(t, m, EventMatchFinished, finish("", "a", "c"))
	roundTrip(t, m, EventMovePlayed, MovePayload{Player: "c", Engine: "negamax/3", Nodes: 40, ElapsedMs: 2})
	roundTrip(t, m, EventMovePlayed, MovePayload{Player: "a"})
	roundTrip(t, m, "something_else", map[string]int{"x": 1})

	want := []EngineReport{
		{Name: "b", Games: 1, Wins: 1, AvgMoves: 10, AvgDuration: 2},
		{Name: "a", Games: 2, Losses: 1, Draws: 1, AvgMoves: 10, AvgDuration: 2},
		{Name: "c", Games: 1, Draws: 1, AvgMoves: 10, AvgDuration: 2, AvgNodes: 40, AvgSearchTime: 2},
	}
	got := m.Snapshot()
	if diff := cmp.Diff(want, got.Engines, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("engine reports mismatch (-want +got):\n%s", diff)
	}
	if got.TotalMoves != 2 {
		t.Fatalf("TotalMoves = %d", got.TotalMoves)
	}
}

func TestRecordRejectsBadPayload(t *testing.T) {
	m := NewMetrics()
	if err := m.Record(Event{Event: EventMatchFinished, Payload: []byte(`{"players": 3}`)}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNilProducer(t *testing.T) {
	p := NewProducer(nil, "topic", zaptest.NewLogger(t).Sugar())
	if p != nil {
		t.Fatalf("expected nil producer without brokers")
	}
	p.Publish(context.Background(), "k", EventMovePlayed, MovePayload{})
	p.Close()
}
