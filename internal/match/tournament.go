package match

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"lig4/engine/internal/game"
)

type TournamentOptions struct {
	WinLength int
	Obstacles float64
	// Workers bounds concurrent matches; 0 uses GOMAXPROCS.
	Workers int
	// Seed makes the whole tournament reproducible when non-zero.
	Seed int64
}

// RunTournament plays every ordered pair of entrants once, so each pairing
// is seen with both colours opening. Matches run concurrently, each with its
// own engines and board.
func RunTournament(ctx context.Context, m *Manager, entrants []EngineSpec, opts TournamentOptions) ([]Standing, error) {
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: a tournament needs at least two entrants", ErrInvalidSetup)
	}
	if opts.WinLength == 0 {
		opts.WinLength = 4
	}
	entrants = append([]EngineSpec(nil), entrants...)
	names := make(map[string]bool, len(entrants))
	for i := range entrants {
		label := entrants[i].Label(opts.WinLength)
		if names[label] {
			return nil, fmt.Errorf("%w: duplicate entrant %q", ErrInvalidSetup, label)
		}
		names[label] = true
		entrants[i].Name = label
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	table := NewTable()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	round := int64(0)
	for i := range entrants {
		for j := range entrants {
			if i == j {
				continue
			}
			round++
			home, away := entrants[i], entrants[j]
			setup := Setup{
				WinLength: opts.WinLength,
				Obstacles: opts.Obstacles,
				Player:    Participant{Name: home.Name, Engine: &home},
				Opponent:  Participant{Name: away.Name, Engine: &away},
				First:     game.PlayerPiece,
			}
			if opts.Seed != 0 {
				setup.Seed = opts.Seed + round
			}
			g.Go(func() error {
				v, err := m.StartMatch(setup)
				if err != nil {
					return err
				}
				v, err = m.Play(ctx, v.ID)
				if err != nil {
					return fmt.Errorf("match %s vs %s: %w", home.Name, away.Name, err)
				}
				table.Record(v)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table.Rows(), nil
}
