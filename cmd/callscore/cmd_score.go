package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/internal/reporting"
)

// Output formats supported by the score command.
const (
	formatJSON     = "json"
	formatText     = "text"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

var scoreFormats = []string{formatJSON, formatText, formatMarkdown, formatHTML}

type scoreOptions struct {
	rubricPath      string
	personaPath     string
	callDurationSec float64
	outputPath      string
	format          string
	minScore        float64
}

func newScoreCommand() *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score <attempt.yaml>",
		Short: "Score one training call",
		Long: `Score one training call from an attempt file.

The attempt file holds the transcript and, optionally, the persona, the rubric
and the platform-reported call duration. --rubric, --persona and
--call-duration replace the values in the file.

Exits 1 when the total score is below --min-score, 3 when the transcript is
invalid and 4 when the rubric is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scoreCommandE(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.rubricPath, "rubric", "", "Rubric file to score against (overrides the attempt's rubric)")
	cmd.Flags().StringVar(&opts.personaPath, "persona", "", "Persona file (overrides the attempt's persona)")
	cmd.Flags().Float64Var(&opts.callDurationSec, "call-duration", 0, "Platform-reported call duration in seconds")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: json, text, markdown, html (default from config, else json)")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Fail with exit code 1 when the total score is below this value")

	return cmd
}

func scoreCommandE(cmd *cobra.Command, attemptPath string, opts scoreOptions) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" {
		format = cfg.Defaults.Format
	}
	format = strings.ToLower(format)
	if !slices.Contains(scoreFormats, format) {
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(scoreFormats, ", "))
	}

	minScore := opts.minScore
	if !cmd.Flags().Changed("min-score") && cfg.Defaults.MinScore != nil {
		minScore = *cfg.Defaults.MinScore
	}

	overrides, err := loadOverrides(opts.rubricPath, opts.personaPath, opts.callDurationSec)
	if err != nil {
		return err
	}
	attempt, err := loadAttempt(attemptPath, overrides)
	if err != nil {
		return err
	}

	result, err := newEngine(cfg).Score(cmd.Context(), attempt)
	if err != nil {
		return fmt.Errorf("scoring %s: %w", attempt.ID, err)
	}
	slog.Debug("attempt scored", "attempt", attempt.ID, "score", result.Score.TotalWeightedScore)

	out := cmd.OutOrStdout()
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	if err := renderResult(out, format, attempt.ID, result); err != nil {
		return err
	}
	if opts.outputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", opts.outputPath) //nolint:errcheck
	}

	if result.Score.TotalWeightedScore < minScore {
		return &ScoreBelowThresholdError{
			Message: fmt.Sprintf("%s scored %.2f, below the minimum of %.2f", attempt.ID, result.Score.TotalWeightedScore, minScore),
		}
	}
	return nil
}

func renderResult(w io.Writer, format, attemptID string, result *models.ScoringResult) error {
	switch format {
	case formatText:
		return reporting.WriteAttemptText(w, attemptID, result)
	case formatMarkdown:
		_, err := io.WriteString(w, reporting.AttemptMarkdown(attemptID, result))
		return err
	case formatHTML:
		html, err := reporting.AttemptHTML(attemptID, result)
		if err != nil {
			return err
		}
		_, err = w.Write(html)
		return err
	default:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}
