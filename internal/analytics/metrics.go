package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type engineStats struct {
	games, wins, losses, draws int
	matchMoves                 int
	duration                   float64
	searches                   int
	nodes                      int
	searchMs                   float64
}

// Metrics aggregates match events per player name.
type Metrics struct {
	mu           sync.Mutex
	engines      map[string]*engineStats
	gamesPerHour map[string]int
	totalGames   int
	totalMoves   int
}

func NewMetrics() *Metrics {
	return &Metrics{
		engines:      make(map[string]*engineStats),
		gamesPerHour: make(map[string]int),
	}
}

func (m *Metrics) stats(name string) *engineStats {
	s, ok := m.engines[name]
	if !ok {
		s = &engineStats{}
		m.engines[name] = s
	}
	return s
}

// Record folds one event into the totals. Unknown event names are ignored.
func (m *Metrics) Record(e Event) error {
	switch e.Event {
	case EventMovePlayed:
		var p MovePayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", e.Event, err)
		}
		m.recordMove(p)
	case EventMatchFinished:
		var p FinishPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", e.Event, err)
		}
		m.recordFinish(p, e.Timestamp)
	}
	return nil
}

func (m *Metrics) recordMove(p MovePayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalMoves++
	if p.Engine == "" {
		return
	}
	s := m.stats(p.Player)
	s.searches++
	s.nodes += p.Nodes
	s.searchMs += p.ElapsedMs
}

func (m *Metrics) recordFinish(p FinishPayload, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalGames++
	m.gamesPerHour[ts.UTC().Format("2006-01-02 15:00")]++
	for _, seat := range p.Players {
		s := m.stats(seat.Name)
		s.games++
		s.matchMoves += p.Moves
		s.duration += p.Duration
		switch {
		case p.Draw:
			s.draws++
		case seat.Winner:
			s.wins++
		default:
			s.losses++
		}
	}
}

type EngineReport struct {
	Name          string  `json:"name"`
	Games         int     `json:"games"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	AvgMoves      float64 `json:"avgMoves"`
	AvgDuration   float64 `json:"avgDuration"`
	AvgNodes      float64 `json:"avgNodes"`
	AvgSearchTime float64 `json:"avgSearchMs"`
}

type Report struct {
	TotalGames   int            `json:"totalGames"`
	TotalMoves   int            `json:"totalMoves"`
	GamesPerHour map[string]int `json:"gamesPerHour"`
	Engines      []EngineReport `json:"engines"`
}

// Snapshot returns the current totals, engines ordered by wins then name.
func (m *Metrics) Snapshot() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := Report{
		TotalGames:   m.totalGames,
		TotalMoves:   m.totalMoves,
		GamesPerHour: make(map[string]int, len(m.gamesPerHour)),
	}
	for k, v := range m.gamesPerHour {
		r.GamesPerHour[k] = v
	}
	for name, s := range m.engines {
		er := EngineReport{Name: name, Games: s.games, Wins: s.wins, Losses: s.losses, Draws: s.draws}
		if s.games > 0 {
			er.AvgMoves = float64(s.matchMoves) / float64(s.games)
			er.AvgDuration = s.duration / float64(s.games)
		}
		if s.searches > 0 {
			er.AvgNodes = float64(s.nodes) / float64(s.searches)
			er.AvgSearchTime = s.searchMs / float64(s.searches)
		}
		r.Engines = append(r.Engines, er)
	}
	sort.Slice(r.Engines, func(i, j int) bool {
		if r.Engines[i].Wins != r.Engines[j].Wins {
			return r.Engines[i].Wins > r.Engines[j].Wins
		}
		return r.Engines[i].Name < r.Engines[j].Name
	})
	return r
}

// Log writes the snapshot as one summary line plus one line per engine.
func (m *Metrics) Log(logger *zap.SugaredLogger) {
	r := m.Snapshot()
	logger.Infow("analytics summary",
		"games", r.TotalGames,
		"moves", r.TotalMoves,
		"gamesPerHour", r.GamesPerHour)
	for _, e := range r.Engines {
		logger.Infow("engine summary",
			"name", e.Name,
			"games", e.Games,
			"wins", e.Wins,
			"losses", e.Losses,
			"draws", e.Draws,
			"avgMoves", e.AvgMoves,
			"avgDuration", e.AvgDuration,
			"avgNodes", e.AvgNodes,
			"avgSearchMs", e.AvgSearchTime)
	}
}
