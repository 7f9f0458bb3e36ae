package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/repcoach/callscore/internal/models"
)

// InterpretScore returns a plain-language label for a 0-100 score.
func InterpretScore(score float64) string {
	switch {
	case score > 90:
		return "Excellent (>90)"
	case score >= 70:
		return "Good (70-90)"
	case score >= 50:
		return "Needs Work (50-70)"
	default:
		return "Poor (<50)"
	}
}

// InterpretSuccessRate explains how many attempts of a batch could be scored.
func InterpretSuccessRate(scored, total int) string {
	if total == 0 {
		return "No attempts"
	}
	pct := 100 * float64(scored) / float64(total)
	switch {
	case scored == total:
		return fmt.Sprintf("All attempts scored (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most attempts scored (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the attempts scored (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few attempts scored (%.0f%%)", pct)
	}
}

// InterpretSpread says how consistent a batch is, given its 95% interval.
func InterpretSpread(s models.BatchSummary) string {
	if s.Scored < 2 {
		return "Not enough scored attempts to judge consistency."
	}
	width := s.CI95Hi - s.CI95Lo
	if width <= 10 {
		return fmt.Sprintf("Scores are consistent (95%% CI %.1f-%.1f).", s.CI95Lo, s.CI95Hi)
	}
	return fmt.Sprintf("Scores vary widely (95%% CI %.1f-%.1f); look at the lowest attempts first.", s.CI95Lo, s.CI95Hi)
}

// FormatSummaryReport produces a plain-language report for a batch.
func FormatSummaryReport(outcome *models.BatchOutcome) string {
	var b strings.Builder

	s := outcome.Summary
	duration := time.Duration(outcome.DurationMs) * time.Millisecond

	b.WriteString("=== Interpretation ===\n\n")

	if s.Scored > 0 {
		fmt.Fprintf(&b, "Mean Score:    %.1f, %s\n", s.MeanScore, InterpretScore(s.MeanScore))
		fmt.Fprintf(&b, "Range:         %.1f to %.1f (std dev %.1f)\n", s.MinScore, s.MaxScore, s.StdDev)
	}
	fmt.Fprintf(&b, "Scored:        %s\n", InterpretSuccessRate(s.Scored, s.Total))
	fmt.Fprintf(&b, "Consistency:   %s\n", InterpretSpread(s))
	fmt.Fprintf(&b, "Duration:      %v\n", duration)

	if len(outcome.Items) > 0 {
		b.WriteString("\nPer-Attempt Interpretation:\n")
		for _, item := range outcome.Items {
			if item.Status != models.StatusScored || item.Result == nil {
				fmt.Fprintf(&b, "  ✗ %s: %s (%s)\n", item.AttemptID, item.Error, item.ErrorKind)
				continue
			}
			score := item.Result.Score.TotalWeightedScore
			fmt.Fprintf(&b, "  ✓ %s: %d, %s\n", item.AttemptID, item.Result.Score.DisplayScore, InterpretScore(score))
		}
	}

	return b.String()
}
