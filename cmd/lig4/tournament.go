package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lig4/engine/internal/match"
)

type tournamentOptions struct {
	minDepth  int
	maxDepth  int
	plain     bool
	winLength int
	obstacles float64
	workers   int
	seed      int64
	json      bool
}

func newTournamentCommand(logger func() *zap.SugaredLogger) *cobra.Command {
	o := &tournamentOptions{}
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Round robin between minimax and negamax engines over a range of depths.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.minDepth < 1 || o.maxDepth < o.minDepth {
				return fmt.Errorf("invalid depth range %d..%d", o.minDepth, o.maxDepth)
			}
			m := match.NewManager(match.Config{Logger: logger()})
			rows, err := match.RunTournament(cmd.Context(), m, entrants(o), match.TournamentOptions{
				WinLength: o.winLength,
				Obstacles: o.obstacles,
				Workers:   o.workers,
				Seed:      o.seed,
			})
			if err != nil {
				return err
			}
			return printStandings(cmd.OutOrStdout(), rows, o.json)
		},
	}
	cmd.Flags().IntVar(&o.minDepth, "min-depth", 1, "shallowest engine depth")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", 4, "deepest engine depth")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "also enter engines without alpha-beta pruning")
	cmd.Flags().IntVar(&o.winLength, "win-length", 4, "pieces in a row needed to win (4, 5 or 6)")
	cmd.Flags().Float64Var(&o.obstacles, "obstacles", 0, "obstacle fraction per board")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "concurrent matches, 0 uses GOMAXPROCS")
	cmd.Flags().Int64Var(&o.seed, "seed", 1, "tournament seed, 0 uses the clock")
	cmd.Flags().BoolVar(&o.json, "json", false, "print standings as JSON")
	return cmd
}

func entrants(o *tournamentOptions) []match.EngineSpec {
	var out []match.EngineSpec
	for depth := o.minDepth; depth <= o.maxDepth; depth++ {
		for _, alg := range []string{"minimax", "negamax"} {
			out = append(out, match.EngineSpec{Algorithm: alg, Pruning: true, Depth: depth})
			if o.plain {
				out = append(out, match.EngineSpec{Algorithm: alg, Depth: depth})
			}
		}
	}
	return out
}

func printStandings(out io.Writer, rows []match.Standing, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENGINE\tPLAYED\tW\tD\tL\tPTS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", r.Name, r.Played, r.Wins, r.Draws, r.Losses, r.Points)
	}
	return w.Flush()
}
