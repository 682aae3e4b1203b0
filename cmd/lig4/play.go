package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lig4/engine/internal/game"
	"lig4/engine/internal/match"
)

type playOptions struct {
	mode       string
	difficulty string
	winLength  int
	seed       int64
	name       string
}

func newPlayCommand(logger func() *zap.SugaredLogger) *cobra.Command {
	o := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one match, engine against engine or you against an engine.",
		Example: `
  # watch minimax and negamax play a hard board
  lig4 play --mode ai-vs-ai --difficulty hard

  # play the player piece yourself, five in a row
  lig4 play --mode human-vs-ai --win-length 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd.Context(), o, logger(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&o.mode, "mode", string(match.ModeAIvsAI), "ai-vs-ai or human-vs-ai")
	cmd.Flags().StringVar(&o.difficulty, "difficulty", "default", "easy, medium, hard or default")
	cmd.Flags().IntVar(&o.winLength, "win-length", 4, "pieces in a row needed to win (4, 5 or 6)")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "seed for obstacles and tie-breaks, 0 uses the clock")
	cmd.Flags().StringVar(&o.name, "name", "you", "your name in human-vs-ai")
	return cmd
}

func runPlay(ctx context.Context, o *playOptions, logger *zap.SugaredLogger, in io.Reader, out io.Writer) error {
	mode, err := match.ParseMode(o.mode)
	if err != nil {
		return err
	}
	difficulty, err := match.ParseDifficulty(o.difficulty)
	if err != nil {
		return err
	}
	setup := match.NewSetup(mode, difficulty, o.winLength, o.name)
	setup.Seed = o.seed

	m := match.NewManager(match.Config{
		Logger: logger,
		OnMove: func(v match.View, rec match.MoveRecord) {
			fmt.Fprintf(out, "\n%s drops in column %d", v.NameOf(rec.Piece), rec.Column)
			if rec.Score != nil {
				fmt.Fprintf(out, " (score %g, %d nodes, %s)", *rec.Score, rec.Nodes, rec.Elapsed)
			}
			fmt.Fprintln(out)
			printBoard(out, v)
		},
	})
	v, err := m.StartMatch(setup)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (X) vs %s (O), %d in a row, %s opens\n",
		v.NameOf(game.PlayerPiece), v.NameOf(game.OpponentPiece), v.WinLength, v.NameOf(v.Turn))
	printBoard(out, v)

	scanner := bufio.NewScanner(in)
	for v.Status == match.StatusActive {
		if v, err = m.Play(ctx, v.ID); err != nil {
			return err
		}
		if v.Status != match.StatusActive {
			break
		}
		if v, err = humanTurn(m, v, scanner, out); err != nil {
			return err
		}
	}

	if v.IsDraw() {
		fmt.Fprintln(out, "Draw.")
	} else {
		fmt.Fprintf(out, "%s wins after %d moves.\n", v.NameOf(v.Winner), len(v.Moves))
	}
	return nil
}

// humanTurn reads columns until one is legal. "q" resigns.
func humanTurn(m *match.Manager, v match.View, scanner *bufio.Scanner, out io.Writer) (match.View, error) {
	for {
		fmt.Fprintf(out, "%s, column> ", v.NameOf(v.Turn))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return v, err
			}
			return m.Resign(v.ID, v.Turn)
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" {
			return m.Resign(v.ID, v.Turn)
		}
		col, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(out, "enter a column number or q")
			continue
		}
		_, next, err := m.HandleMove(match.Move{MatchID: v.ID, Piece: v.Turn, Column: col})
		if errors.Is(err, game.ErrIllegalMove) {
			fmt.Fprintln(out, err)
			continue
		}
		return next, err
	}
}

func printBoard(out io.Writer, v match.View) {
	b, err := game.FromRows(v.Board)
	if err != nil {
		return
	}
	fmt.Fprint(out, b.String())
}
