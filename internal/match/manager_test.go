package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"lig4/engine/internal/game"
)

func engineSetup(depth int, seed int64) Setup {
	return Setup{
		WinLength: 4,
		Player: Participant{
			Name:   "mm",
			Engine: &EngineSpec{Algorithm: "minimax", Pruning: true, Depth: depth},
		},
		Opponent: Participant{
			Name:   "nm",
			Engine: &EngineSpec{Algorithm: "negamax", Pruning: true, Depth: depth},
		},
		First: game.PlayerPiece,
		Seed:  seed,
	}
}

type recorder struct {
	mu       sync.Mutex
	moves    []MoveRecord
	finished []View
}

func (r *recorder) config(t *testing.T) Config {
	return Config{
		Logger: zaptest.NewLogger(t).Sugar(),
		OnMove: func(_ View, rec MoveRecord) {
			r.mu.Lock()
			r.moves = append(r.moves, rec)
			r.mu.Unlock()
		},
		OnFinish: func(v View) {
			r.mu.Lock()
			r.finished = append(r.finished, v)
			r.mu.Unlock()
		},
	}
}

func TestPlayEngineMatchToCompletion(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.config(t))
	v, err := m.StartMatch(engineSetup(3, 17))
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if v.Status != StatusActive || v.Turn != game.PlayerPiece {
		t.Fatalf("unexpected initial view %+v", v)
	}

	v, err = m.Play(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if v.Status != StatusFinished {
		t.Fatalf("match still %s after Play", v.Status)
	}

	board, err := game.FromRows(v.Board)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	if got := board.Count(game.PlayerPiece) + board.Count(game.OpponentPiece); got != len(v.Moves) {
		t.Fatalf("board holds %d pieces for %d moves", got, len(v.Moves))
	}
	for i, mv := range v.Moves {
		want := game.PlayerPiece
		if i%2 == 1 {
			want = game.OpponentPiece
		}
		if mv.Piece != want || mv.Ply != i+1 {
			t.Fatalf("move %d = %+v, want piece %v", i, mv, want)
		}
		if mv.Score == nil || mv.Nodes == 0 {
			t.Fatalf("engine move %d lacks search output: %+v", i, mv)
		}
		if board.At(mv.Row, mv.Column) != mv.Piece {
			t.Fatalf("move %d not found on board", i)
		}
	}
	winner, ok := game.Winner(board, 4)
	if ok != !v.IsDraw() || (ok && winner != v.Winner) {
		t.Fatalf("view winner %v draw=%v, board winner %v %v", v.Winner, v.IsDraw(), winner, ok)
	}

	if len(rec.moves) != len(v.Moves) {
		t.Fatalf("OnMove saw %d moves, match has %d", len(rec.moves), len(v.Moves))
	}
	if len(rec.finished) != 1 || rec.finished[0].ID != v.ID {
		t.Fatalf("OnFinish called %d times", len(rec.finished))
	}
}

func TestSeededMatchesRepeat(t *testing.T) {
	m := NewManager(Config{Logger: zaptest.NewLogger(t).Sugar()})
	columns := func() []int {
		setup := engineSetup(2, 99)
		setup.First = game.Empty
		setup.Obstacles = HardObstacles
		v, err := m.StartMatch(setup)
		if err != nil {
			t.Fatalf("StartMatch: %v", err)
		}
		v, err = m.Play(context.Background(), v.ID)
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
		var cols []int
		for _, mv := range v.Moves {
			cols = append(cols, mv.Column)
		}
		return cols
	}
	if diff := cmp.Diff(columns(), columns()); diff != "" {
		t.Fatalf("same seed produced different games (-first +second):\n%s", diff)
	}
}

func TestHumanVsBot(t *testing.T) {
	m := NewManager(Config{Logger: zaptest.NewLogger(t).Sugar()})
	setup := NewSetup(ModeHumanVsAI, DifficultyEasy, 4, "ana")
	setup.First = game.PlayerPiece
	v, err := m.StartMatch(setup)
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if v.NameOf(game.PlayerPiece) != "ana" {
		t.Fatalf("human seat = %q", v.NameOf(game.PlayerPiece))
	}

	if _, _, err := m.PlayBotTurn(v.ID); !errors.Is(err, ErrNotBotTurn) {
		t.Fatalf("expected ErrNotBotTurn, got %v", err)
	}
	if _, _, err := m.HandleMove(Move{MatchID: v.ID, Piece: game.OpponentPiece, Column: 0}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, _, err := m.HandleMove(Move{MatchID: v.ID, Piece: game.PlayerPiece, Column: 9}); !errors.Is(err, game.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}

	rec, v, err := m.HandleMove(Move{MatchID: v.ID, Piece: game.PlayerPiece, Column: 3})
	if err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	if rec.Row != 0 || rec.Score != nil || v.Turn != game.OpponentPiece {
		t.Fatalf("unexpected human move %+v, turn %v", rec, v.Turn)
	}

	v, err = m.Play(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if v.Status != StatusActive || v.Turn != game.PlayerPiece || len(v.Moves) != 2 {
		t.Fatalf("Play should stop at the human turn, got %+v", v)
	}
	if v.Moves[1].Piece != game.OpponentPiece || v.Moves[1].Score == nil {
		t.Fatalf("bot reply = %+v", v.Moves[1])
	}

	v, err = m.Resign(v.ID, game.PlayerPiece)
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if v.Status != StatusFinished || v.Winner != game.OpponentPiece {
		t.Fatalf("after resign: %+v", v)
	}
	if _, _, err := m.HandleMove(Move{MatchID: v.ID, Piece: game.PlayerPiece, Column: 0}); !errors.Is(err, ErrMatchFinished) {
		t.Fatalf("expected ErrMatchFinished, got %v", err)
	}
	if _, err := m.Resign(v.ID, game.PlayerPiece); !errors.Is(err, ErrMatchFinished) {
		t.Fatalf("expected ErrMatchFinished on second resign, got %v", err)
	}
}

func TestWinningMoveFinishesMatch(t *testing.T) {
	m := NewManager(Config{Logger: zaptest.NewLogger(t).Sugar()})
	v, err := m.StartMatch(Setup{WinLength: 4, First: game.PlayerPiece})
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	moves := []Move{
		{Piece: game.PlayerPiece, Column: 0},
		{Piece: game.OpponentPiece, Column: 6},
		{Piece: game.PlayerPiece, Column: 1},
		{Piece: game.OpponentPiece, Column: 6},
		{Piece: game.PlayerPiece, Column: 2},
		{Piece: game.OpponentPiece, Column: 6},
		{Piece: game.PlayerPiece, Column: 3},
	}
	for i, mv := range moves {
		mv.MatchID = v.ID
		if _, v, err = m.HandleMove(mv); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}
	if v.Status != StatusFinished || v.Winner != game.PlayerPiece || v.IsDraw() {
		t.Fatalf("expected player win, got %+v", v)
	}
	if v.EndedAt.IsZero() {
		t.Fatalf("EndedAt not set")
	}
}

func TestUnknownMatch(t *testing.T) {
	m := NewManager(Config{})
	if _, _, err := m.HandleMove(Move{MatchID: "nope"}); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("HandleMove: expected ErrMatchNotFound, got %v", err)
	}
	if _, _, err := m.PlayBotTurn("nope"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("PlayBotTurn: expected ErrMatchNotFound, got %v", err)
	}
	if _, ok := m.GetMatch("nope"); ok {
		t.Fatalf("GetMatch found a match that does not exist")
	}
}

func TestStartMatchRejectsBadSetup(t *testing.T) {
	m := NewManager(Config{})
	bad := []Setup{
		{WinLength: 3},
		{WinLength: 4, First: game.Obstacle},
		{WinLength: 4, Player: Participant{Engine: &EngineSpec{Algorithm: "minimax", Depth: 0}}},
		{WinLength: 4, Opponent: Participant{Engine: &EngineSpec{Algorithm: "expectimax", Depth: 2}}},
		{WinLength: 4, Player: Participant{Name: "same"}, Opponent: Participant{Name: "same"}},
		{
			WinLength: 4,
			Player:    Participant{Name: "same", Engine: &EngineSpec{Algorithm: "minimax", Depth: 1}},
			Opponent:  Participant{Engine: &EngineSpec{Name: "same", Algorithm: "negamax", Depth: 1}},
		},
	}
	for i, setup := range bad {
		if _, err := m.StartMatch(setup); !errors.Is(err, ErrInvalidSetup) {
			t.Errorf("setup %d: expected ErrInvalidSetup, got %v", i, err)
		}
	}
}

func TestDuplicateSeatNamesKeepStandingsApart(t *testing.T) {
	m := NewManager(Config{})
	setup := engineSetup(1, 4)
	setup.Opponent.Name = setup.Player.Name
	if _, err := m.StartMatch(setup); !errors.Is(err, ErrInvalidSetup) {
		t.Fatalf("expected ErrInvalidSetup for equal seat names, got %v", err)
	}

	setup.Opponent.Name = ""
	v, err := m.StartMatch(setup)
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if v, err = m.Play(context.Background(), v.ID); err != nil {
		t.Fatalf("Play: %v", err)
	}
	table := NewTable()
	table.Record(v)
	rows := table.Rows()
	if len(rows) != 2 || rows[0].Played != 1 || rows[1].Played != 1 {
		t.Fatalf("standings = %+v", rows)
	}
}

func TestResignRequiresPlayerPiece(t *testing.T) {
	m := NewManager(Config{})
	v, err := m.StartMatch(Setup{WinLength: 4})
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	for _, piece := range []game.Cell{game.Empty, game.Obstacle} {
		if _, err := m.Resign(v.ID, piece); !errors.Is(err, ErrInvalidPiece) {
			t.Fatalf("Resign(%v): expected ErrInvalidPiece, got %v", piece, err)
		}
	}
	v, _ = m.GetMatch(v.ID)
	if v.Status != StatusActive || v.Winner != game.Empty {
		t.Fatalf("rejected resign changed the match: %+v", v)
	}
}

func TestSealedBoardIsDrawnAtStart(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.config(t))
	setup := engineSetup(2, 5)
	setup.Obstacles = 100
	v, err := m.StartMatch(setup)
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if !v.IsDraw() {
		t.Fatalf("expected immediate draw on sealed board, got %+v", v)
	}
	if len(rec.finished) != 1 {
		t.Fatalf("OnFinish called %d times", len(rec.finished))
	}
	if _, _, err := m.PlayBotTurn(v.ID); !errors.Is(err, ErrMatchFinished) {
		t.Fatalf("expected ErrMatchFinished, got %v", err)
	}
}

func TestSweepFinished(t *testing.T) {
	m := NewManager(Config{Logger: zaptest.NewLogger(t).Sugar()})
	active, _ := m.StartMatch(Setup{WinLength: 4})
	done, _ := m.StartMatch(Setup{WinLength: 4})
	if _, err := m.Resign(done.ID, game.PlayerPiece); err != nil {
		t.Fatalf("Resign: %v", err)
	}

	if n := m.SweepFinished(time.Hour); n != 0 {
		t.Fatalf("swept %d matches inside retention", n)
	}
	time.Sleep(2 * time.Millisecond)
	if n := m.SweepFinished(time.Millisecond); n != 1 {
		t.Fatalf("swept %d matches, want 1", n)
	}
	if _, ok := m.GetMatch(done.ID); ok {
		t.Fatalf("finished match still present")
	}
	if _, ok := m.GetMatch(active.ID); !ok {
		t.Fatalf("active match was swept")
	}
}

func TestPlayHonoursContext(t *testing.T) {
	m := NewManager(Config{})
	v, err := m.StartMatch(engineSetup(2, 3))
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err = m.Play(ctx, v.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(v.Moves) != 0 {
		t.Fatalf("cancelled Play made %d moves", len(v.Moves))
	}
}
