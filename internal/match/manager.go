package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lig4/engine/internal/game"
	"lig4/engine/internal/search"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchFinished = errors.New("match already finished")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNotBotTurn    = errors.New("side to move is not a bot")
	ErrInvalidSetup  = errors.New("invalid match setup")
	ErrInvalidPiece  = errors.New("not a player piece")
)

// Participant is one seat of a match. A nil Engine means a human.
type Participant struct {
	Name   string      `json:"name"`
	Engine *EngineSpec `json:"engine,omitempty"`
}

type Setup struct {
	Rows      int
	Cols      int
	WinLength int
	// Obstacles is the fraction passed to game.NewWithObstacles.
	Obstacles float64
	Player    Participant
	Opponent  Participant
	// First is the side that opens; Empty picks one at random.
	First game.Cell
	// Seed drives obstacles, the opening side and engine tie-breaks; 0 uses the clock.
	Seed int64
}

type Player struct {
	Name  string
	Piece game.Cell
	Bot   *Bot
}

type Move struct {
	MatchID string
	Piece   game.Cell
	Column  int
}

// MoveRecord is one applied move. Engine moves carry their search output.
type MoveRecord struct {
	Ply     int           `json:"ply"`
	Piece   game.Cell     `json:"piece"`
	Column  int           `json:"column"`
	Row     int           `json:"row"`
	Score   *float64      `json:"score,omitempty"`
	Nodes   int           `json:"nodes,omitempty"`
	Elapsed time.Duration `json:"elapsedNs,omitempty"`
}

type Match struct {
	ID         string
	Board      *game.Board
	WinLength  int
	Status     Status
	Winner     game.Cell
	Turn       game.Cell
	Players    map[game.Cell]*Player
	Moves      []MoveRecord
	StartedAt  time.Time
	EndedAt    time.Time
	LastMoveAt time.Time
}

type PlayerView struct {
	Name   string    `json:"name"`
	Piece  game.Cell `json:"piece"`
	IsBot  bool      `json:"isBot"`
	Engine string    `json:"engine,omitempty"`
}

// View is a copy of a match that is safe to hand to other goroutines.
type View struct {
	ID        string        `json:"matchId"`
	Board     [][]game.Cell `json:"board"`
	WinLength int           `json:"winLength"`
	Status    Status        `json:"status"`
	Winner    game.Cell     `json:"winner"`
	Turn      game.Cell     `json:"turn"`
	Players   []PlayerView  `json:"players"`
	Moves     []MoveRecord  `json:"moves"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt,omitempty"`
}

// NameOf returns the name seated on piece.
func (v View) NameOf(piece game.Cell) string {
	for _, p := range v.Players {
		if p.Piece == piece {
			return p.Name
		}
	}
	return ""
}

func (v View) IsDraw() bool {
	return v.Status == StatusFinished && v.Winner == game.Empty
}

func (m *Match) view() View {
	v := View{
		ID:        m.ID,
		Board:     m.Board.Cells(),
		WinLength: m.WinLength,
		Status:    m.Status,
		Winner:    m.Winner,
		Turn:      m.Turn,
		Moves:     append([]MoveRecord(nil), m.Moves...),
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
	}
	for _, piece := range []game.Cell{game.PlayerPiece, game.OpponentPiece} {
		p := m.Players[piece]
		pv := PlayerView{Name: p.Name, Piece: piece, IsBot: p.Bot != nil}
		if p.Bot != nil {
			pv.Engine = p.Bot.Config().Name()
		}
		v.Players = append(v.Players, pv)
	}
	return v
}

type Config struct {
	Logger *zap.SugaredLogger
	// ScaleHeuristic sizes the evaluation window to the win length instead of 4.
	ScaleHeuristic bool
	OnMove         func(View, MoveRecord)
	OnFinish       func(View)
}

type Manager struct {
	mu       sync.RWMutex
	matches  map[string]*Match
	logger   *zap.SugaredLogger
	scale    bool
	onMove   func(View, MoveRecord)
	onFinish func(View)
}

func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		matches:  make(map[string]*Match),
		logger:   logger,
		scale:    cfg.ScaleHeuristic,
		onMove:   cfg.OnMove,
		onFinish: cfg.OnFinish,
	}
}

func (m *Manager) StartMatch(setup Setup) (View, error) {
	setup = setup.withDefaults()
	if err := game.ValidateWinLength(setup.WinLength); err != nil {
		return View{}, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}
	if setup.First != game.Empty && !setup.First.IsPiece() {
		return View{}, fmt.Errorf("%w: first side %v", ErrInvalidSetup, setup.First)
	}
	seed := setup.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	now := time.Now()
	match := &Match{
		ID:         uuid.NewString(),
		Board:      game.NewWithObstacles(setup.Rows, setup.Cols, setup.Obstacles, rng),
		WinLength:  setup.WinLength,
		Status:     StatusActive,
		Turn:       setup.First,
		Players:    make(map[game.Cell]*Player, 2),
		StartedAt:  now,
		LastMoveAt: now,
	}
	if match.Turn == game.Empty {
		match.Turn = []game.Cell{game.PlayerPiece, game.OpponentPiece}[rng.Intn(2)]
	}

	seats := []struct {
		piece game.Cell
		seat  Participant
	}{
		{game.PlayerPiece, setup.Player},
		{game.OpponentPiece, setup.Opponent},
	}
	for _, s := range seats {
		p, err := m.seat(s.piece, s.seat, setup.WinLength, rng.Int63())
		if err != nil {
			return View{}, err
		}
		match.Players[s.piece] = p
	}
	if name := match.Players[game.PlayerPiece].Name; name == match.Players[game.OpponentPiece].Name {
		// standings are keyed by name
		return View{}, fmt.Errorf("%w: both seats are named %q", ErrInvalidSetup, name)
	}
	if len(game.ValidMoves(match.Board)) == 0 {
		// obstacles sealed every column
		match.Status = StatusFinished
		match.EndedAt = now
	}

	m.mu.Lock()
	m.matches[match.ID] = match
	v := match.view()
	m.mu.Unlock()

	if v.Status == StatusFinished {
		m.finish(v)
		return v, nil
	}
	m.logger.Infow("match started",
		"match", match.ID,
		"player", match.Players[game.PlayerPiece].Name,
		"opponent", match.Players[game.OpponentPiece].Name,
		"winLength", match.WinLength,
		"obstacles", match.Board.Count(game.Obstacle),
		"first", match.Turn.String())
	return v, nil
}

func (m *Manager) seat(piece game.Cell, seat Participant, winLength int, seed int64) (*Player, error) {
	name := seat.Name
	if seat.Engine == nil {
		if name == "" {
			name = piece.String()
		}
		return &Player{Name: name, Piece: piece}, nil
	}
	cfg, err := seat.Engine.Config(winLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %s engine: %w", ErrInvalidSetup, piece, err)
	}
	if name == "" {
		name = seat.Engine.Label(winLength)
	}
	bot, err := NewBot(name, piece, cfg,
		search.WithRand(rand.New(rand.NewSource(seed))),
		search.WithHeuristic(heuristicFor(m.scale, winLength)),
		search.WithLogger(m.logger.With("match.player", name)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}
	return &Player{Name: name, Piece: piece, Bot: bot}, nil
}

// HandleMove applies a move for the side named in move.
func (m *Manager) HandleMove(move Move) (MoveRecord, View, error) {
	return m.handleMove(move, nil, search.Stats{}, 0)
}

func (m *Manager) handleMove(move Move, res *search.Result, stats search.Stats, elapsed time.Duration) (MoveRecord, View, error) {
	m.mu.Lock()
	match, ok := m.matches[move.MatchID]
	if !ok {
		m.mu.Unlock()
		return MoveRecord{}, View{}, ErrMatchNotFound
	}
	if match.Status == StatusFinished {
		v := match.view()
		m.mu.Unlock()
		return MoveRecord{}, v, ErrMatchFinished
	}
	if match.Turn != move.Piece {
		v := match.view()
		m.mu.Unlock()
		return MoveRecord{}, v, ErrNotYourTurn
	}
	row, err := game.Apply(match.Board, move.Column, move.Piece)
	if err != nil {
		v := match.view()
		m.mu.Unlock()
		return MoveRecord{}, v, err
	}

	now := time.Now()
	rec := MoveRecord{
		Ply:     len(match.Moves) + 1,
		Piece:   move.Piece,
		Column:  move.Column,
		Row:     row,
		Nodes:   stats.Nodes,
		Elapsed: elapsed,
	}
	if res != nil {
		score := res.Score
		rec.Score = &score
	}
	match.Moves = append(match.Moves, rec)
	match.LastMoveAt = now

	finished := false
	if winner, ok := game.Winner(match.Board, match.WinLength); ok {
		match.Winner = winner
		finished = true
	} else if len(game.ValidMoves(match.Board)) == 0 {
		finished = true
	} else {
		match.Turn = match.Turn.Opponent()
	}
	if finished {
		match.Status = StatusFinished
		match.EndedAt = now
	}
	v := match.view()
	m.mu.Unlock()

	if m.onMove != nil {
		m.onMove(v, rec)
	}
	if finished {
		m.finish(v)
	}
	return rec, v, nil
}

func (m *Manager) finish(v View) {
	m.logger.Infow("match finished",
		"match", v.ID,
		"winner", v.NameOf(v.Winner),
		"draw", v.IsDraw(),
		"moves", len(v.Moves),
		"duration", v.EndedAt.Sub(v.StartedAt))
	if m.onFinish != nil {
		m.onFinish(v)
	}
}

// PlayBotTurn lets the bot to move search a copy of the board and plays its choice.
func (m *Manager) PlayBotTurn(matchID string) (MoveRecord, View, error) {
	m.mu.RLock()
	match, ok := m.matches[matchID]
	if !ok {
		m.mu.RUnlock()
		return MoveRecord{}, View{}, ErrMatchNotFound
	}
	if match.Status == StatusFinished {
		v := match.view()
		m.mu.RUnlock()
		return MoveRecord{}, v, ErrMatchFinished
	}
	player := match.Players[match.Turn]
	board := match.Board.Clone()
	m.mu.RUnlock()

	if player.Bot == nil {
		return MoveRecord{}, View{}, ErrNotBotTurn
	}
	start := time.Now()
	res, stats, err := player.Bot.ChooseMove(board)
	if err != nil {
		return MoveRecord{}, View{}, err
	}
	return m.handleMove(Move{MatchID: matchID, Piece: player.Piece, Column: res.Column}, &res, stats, time.Since(start))
}

// Play runs bot turns until the match ends or a human is to move.
func (m *Manager) Play(ctx context.Context, matchID string) (View, error) {
	for {
		if err := ctx.Err(); err != nil {
			v, _ := m.GetMatch(matchID)
			return v, err
		}
		_, v, err := m.PlayBotTurn(matchID)
		switch {
		case errors.Is(err, ErrMatchFinished), errors.Is(err, ErrNotBotTurn):
			v, _ = m.GetMatch(matchID)
			return v, nil
		case err != nil:
			return v, err
		}
		if v.Status == StatusFinished {
			return v, nil
		}
	}
}

// Resign ends the match in favour of the other side.
func (m *Manager) Resign(matchID string, piece game.Cell) (View, error) {
	if !piece.IsPiece() {
		return View{}, fmt.Errorf("%w: resign as %v", ErrInvalidPiece, piece)
	}
	m.mu.Lock()
	match, ok := m.matches[matchID]
	if !ok {
		m.mu.Unlock()
		return View{}, ErrMatchNotFound
	}
	if match.Status == StatusFinished {
		v := match.view()
		m.mu.Unlock()
		return v, ErrMatchFinished
	}
	match.Status = StatusFinished
	match.Winner = piece.Opponent()
	match.EndedAt = time.Now()
	v := match.view()
	m.mu.Unlock()

	m.finish(v)
	return v, nil
}

func (m *Manager) GetMatch(matchID string) (View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[matchID]
	if !ok {
		return View{}, false
	}
	return match.view(), true
}

// SweepFinished drops matches that ended more than retention ago.
func (m *Manager) SweepFinished(retention time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, match := range m.matches {
		if match.Status == StatusFinished && now.Sub(match.EndedAt) > retention {
			delete(m.matches, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debugw("swept finished matches", "removed", removed, "remaining", len(m.matches))
	}
	return removed
}
