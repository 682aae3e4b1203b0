package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:          "lig4",
		Short:        "Play and benchmark Connect-Four search engines from the terminal.",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every search")

	logger := func() *zap.SugaredLogger {
		cfg := zap.NewDevelopmentConfig()
		if !verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return zap.NewNop().Sugar()
		}
		return l.Sugar()
	}

	root.AddCommand(newPlayCommand(logger), newTournamentCommand(logger))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
