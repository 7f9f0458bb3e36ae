package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/internal/orchestration"
	"github.com/repcoach/callscore/internal/reporting"
)

type batchOptions struct {
	rubricPath  string
	personaPath string
	workers     int
	cache       bool
	cacheDir    string
	junitPath   string
	outputPath  string
	resultsDir  string
	filters     []string
	minScore    float64
	interpret   bool
	verbose     bool
}

func newBatchCommand() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <attempts-dir-or-glob>...",
		Short: "Score many training calls",
		Long: `Score every attempt file found in the given directories or glob patterns.

Attempts are scored concurrently. A failing attempt is recorded with its error
and never stops the others; files that cannot be loaded are reported after the
scored attempts. Exits 1 when any attempt failed or scored below --min-score.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return batchCommandE(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.rubricPath, "rubric", "", "Rubric file applied to every attempt")
	cmd.Flags().StringVar(&opts.personaPath, "persona", "", "Persona file applied to every attempt")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of concurrent workers (default from config, else 4)")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "Enable result caching (default from config)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache directory (default from config)")
	cmd.Flags().StringVar(&opts.junitPath, "junit", "", "Write JUnit XML results to this file")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the batch outcome JSON to this file")
	cmd.Flags().StringVar(&opts.resultsDir, "results-dir", "", "Directory to save one JSON record per attempt")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Only score attempts whose ID or persona role matches this glob (can be repeated)")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Attempts below this score count as failures")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print per-attempt progress")

	return cmd
}

func batchCommandE(cmd *cobra.Command, args []string, opts batchOptions) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}

	workers := cfg.Defaults.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	minScore := opts.minScore
	if !cmd.Flags().Changed("min-score") && cfg.Defaults.MinScore != nil {
		minScore = *cfg.Defaults.MinScore
	}
	resultsDir := cfg.Defaults.ResultsDir
	if opts.resultsDir != "" {
		resultsDir = opts.resultsDir
	}
	thresholds := orchestration.Thresholds{Low: cfg.Thresholds.Low, High: cfg.Thresholds.High}

	files, err := expandAttemptPaths(args)
	if err != nil {
		return err
	}
	overrides, err := loadOverrides(opts.rubricPath, opts.personaPath, 0)
	if err != nil {
		return err
	}

	var attempts []*models.Attempt
	var loadFailures []models.ItemOutcome
	for _, path := range files {
		a, err := loadAttempt(path, overrides)
		if err != nil {
			slog.Warn("skipping attempt file", "path", path, "error", err)
			loadFailures = append(loadFailures, models.ItemOutcome{
				AttemptID: attemptIDFromPath(path),
				Status:    models.StatusError,
				ErrorKind: models.ErrorKind(err),
				Error:     err.Error(),
			})
			continue
		}
		attempts = append(attempts, a)
	}

	attempts, err = orchestration.FilterAttempts(attempts, opts.filters)
	if err != nil {
		return err
	}
	loadFailures, err = orchestration.FilterOutcomes(loadFailures, opts.filters)
	if err != nil {
		return err
	}

	runnerOpts := []orchestration.RunnerOption{
		orchestration.WithWorkers(workers),
		orchestration.WithThresholds(thresholds),
		orchestration.WithResultsDir(resultsDir),
	}
	if opts.cache || cfg.CacheEnabled() {
		dir := cfg.Cache.Dir
		if opts.cacheDir != "" {
			dir = opts.cacheDir
		}
		c, err := openCache(dir)
		if err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, orchestration.WithCache(c, cacheSalt(cfg.Penalties())))
	}

	runner := orchestration.NewRunner(newEngine(cfg), runnerOpts...)
	if opts.verbose {
		runner.OnProgress(progressPrinter(cmd))
	}

	outcome := runner.Run(cmd.Context(), attempts)
	if len(loadFailures) > 0 {
		outcome.Items = append(outcome.Items, loadFailures...)
		outcome.Summary = orchestration.Summarize(outcome.Items, thresholds)
	}

	out := cmd.OutOrStdout()
	if err := reporting.WriteBatchTable(out, outcome); err != nil {
		return err
	}
	if opts.interpret {
		fmt.Fprintf(out, "\n%s", reporting.FormatSummaryReport(outcome)) //nolint:errcheck
	}

	if opts.outputPath != "" {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling outcome: %w", err)
		}
		if err := os.WriteFile(opts.outputPath, data, 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to: %s\n", opts.outputPath) //nolint:errcheck
	}
	if opts.junitPath != "" {
		if err := reporting.WriteJUnitXML("callscore", outcome, minScore, opts.junitPath); err != nil {
			return fmt.Errorf("writing JUnit XML: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "JUnit XML saved to: %s\n", opts.junitPath) //nolint:errcheck
	}

	return batchFailure(outcome, minScore)
}

// batchFailure returns a ScoreBelowThresholdError when any attempt failed or
// scored below minScore.
func batchFailure(outcome *models.BatchOutcome, minScore float64) error {
	below := 0
	for _, item := range outcome.Items {
		if item.Result != nil && item.Result.Score.TotalWeightedScore < minScore {
			below++
		}
	}
	if below == 0 && outcome.Summary.Failed == 0 {
		return nil
	}
	return &ScoreBelowThresholdError{
		Message: fmt.Sprintf("batch completed with %d attempt(s) below %.2f and %d error(s)", below, minScore, outcome.Summary.Failed),
	}
}

func progressPrinter(cmd *cobra.Command) orchestration.ProgressListener {
	w := cmd.ErrOrStderr()
	return func(event orchestration.ProgressEvent) {
		switch event.EventType {
		case orchestration.EventAttemptComplete:
			fmt.Fprintf(w, "[%d/%d] ✓ %s\n", event.AttemptNum, event.TotalAttempts, event.AttemptID) //nolint:errcheck
		case orchestration.EventAttemptCached:
			fmt.Fprintf(w, "[%d/%d] ✓ %s (cached)\n", event.AttemptNum, event.TotalAttempts, event.AttemptID) //nolint:errcheck
		case orchestration.EventAttemptFailed:
			fmt.Fprintf(w, "[%d/%d] ✗ %s: %v\n", event.AttemptNum, event.TotalAttempts, event.AttemptID, event.Details["error"]) //nolint:errcheck
		}
	}
}
