package analytics

import (
	"time"

	"lig4/engine/internal/match"
)

type MovePayload struct {
	MatchID   string   `json:"matchId"`
	Player    string   `json:"player"`
	Engine    string   `json:"engine,omitempty"`
	Ply       int      `json:"ply"`
	Column    int      `json:"column"`
	Row       int      `json:"row"`
	Score     *float64 `json:"score,omitempty"`
	Nodes     int      `json:"nodes,omitempty"`
	ElapsedMs float64  `json:"elapsedMs,omitempty"`
}

type Seat struct {
	Name   string `json:"name"`
	Engine string `json:"engine,omitempty"`
	Winner bool   `json:"winner"`
}

type FinishPayload struct {
	MatchID   string  `json:"matchId"`
	WinLength int     `json:"winLength"`
	Winner    string  `json:"winner,omitempty"`
	Draw      bool    `json:"draw"`
	Players   []Seat  `json:"players"`
	Moves     int     `json:"moves"`
	Duration  float64 `json:"duration"`
}

func NewMovePayload(v match.View, rec match.MoveRecord) MovePayload {
	p := MovePayload{
		MatchID:   v.ID,
		Player:    v.NameOf(rec.Piece),
		Ply:       rec.Ply,
		Column:    rec.Column,
		Row:       rec.Row,
		Score:     rec.Score,
		Nodes:     rec.Nodes,
		ElapsedMs: float64(rec.Elapsed) / float64(time.Millisecond),
	}
	for _, pl := range v.Players {
		if pl.Piece == rec.Piece {
			p.Engine = pl.Engine
		}
	}
	return p
}

func NewFinishPayload(v match.View) FinishPayload {
	p := FinishPayload{
		MatchID:   v.ID,
		WinLength: v.WinLength,
		Draw:      v.IsDraw(),
		Moves:     len(v.Moves),
		Duration:  v.EndedAt.Sub(v.StartedAt).Seconds(),
	}
	if !p.Draw {
		p.Winner = v.NameOf(v.Winner)
	}
	for _, pl := range v.Players {
		p.Players = append(p.Players, Seat{
			Name:   pl.Name,
			Engine: pl.Engine,
			Winner: !p.Draw && pl.Piece == v.Winner,
		})
	}
	return p
}
