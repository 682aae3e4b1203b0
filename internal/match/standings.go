package match

import (
	"sort"
	"sync"

	"lig4/engine/internal/game"
)

const (
	pointsWin  = 2
	pointsDraw = 1
)

type Standing struct {
	Name   string `json:"name"`
	Played int    `json:"played"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
	Points int    `json:"points"`
}

// Table accumulates finished matches per player name.
type Table struct {
	mu   sync.Mutex
	rows map[string]*Standing
}

func NewTable() *Table {
	return &Table{rows: make(map[string]*Standing)}
}

func (t *Table) row(name string) *Standing {
	r, ok := t.rows[name]
	if !ok {
		r = &Standing{Name: name}
		t.rows[name] = r
	}
	return r
}

func (t *Table) Record(v View) {
	if v.Status != StatusFinished {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range v.Players {
		r := t.row(p.Name)
		r.Played++
		switch v.Winner {
		case game.Empty:
			r.Draws++
			r.Points += pointsDraw
		case p.Piece:
			r.Wins++
			r.Points += pointsWin
		default:
			r.Losses++
		}
	}
}

// Rows returns standings ordered by points, then wins, then name.
func (t *Table) Rows() []Standing {
	t.mu.Lock()
	out := make([]Standing, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, *r)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}
