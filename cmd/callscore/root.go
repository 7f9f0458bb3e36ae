package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callscore",
		Short: "callscore - score simulated sales calls against a rubric",
		Long: `callscore turns a finished training call transcript into conversational
KPIs and a rubric-weighted 0-100 score.

It scores single attempts, runs batches with bounded concurrency, validates
attempt and rubric files, and serves the same scoring over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newBatchCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newRubricCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
