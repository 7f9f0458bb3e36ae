package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/repcoach/callscore/internal/models"
)

const (
	colScore  = 8
	colWeight = 8
	colStatus = 8
)

// WriteAttemptText writes a human-readable report of one scored attempt.
func WriteAttemptText(w io.Writer, attemptID string, result *models.ScoringResult) error {
	var b strings.Builder
	g := result.KPIs.Global
	s := result.KPIs.Scenario

	fmt.Fprintf(&b, "Attempt: %s\n", attemptID)
	fmt.Fprintf(&b, "Score:   %d  %s\n\n", result.Score.DisplayScore, InterpretScore(result.Score.TotalWeightedScore))

	nameWidth := len("Criterion")
	for _, c := range result.Score.Criteria {
		nameWidth = max(nameWidth, runewidth.StringWidth(c.Name))
	}
	nameWidth += 2
	totalWidth := nameWidth + colScore + colWeight + len("Feedback")

	fmt.Fprintf(&b, "%s%s%s%s\n",
		padRight("Criterion", nameWidth),
		padRight("Score", colScore),
		padRight("Weight", colWeight),
		"Feedback")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("─", totalWidth))
	for _, c := range result.Score.Criteria {
		fmt.Fprintf(&b, "%s%s%s%s\n",
			padRight(c.Name, nameWidth),
			padRight(fmt.Sprintf("%.1f", c.Score), colScore),
			padRight(fmt.Sprintf("%g", c.Weight), colWeight),
			c.Feedback)
	}

	fmt.Fprintf(&b, "\nKPIs\n")
	fmt.Fprintf(&b, "  Talk:listen        %s\n", g.TalkListenRatio)
	fmt.Fprintf(&b, "  Pace               %.0f wpm\n", g.PaceWPM)
	fmt.Fprintf(&b, "  Questions asked    %d\n", g.QuestionsAskedCount)
	fmt.Fprintf(&b, "  Filler words       %d\n", g.FillerWordsCount)
	fmt.Fprintf(&b, "  Interruptions      %d\n", g.InterruptionsCount)
	fmt.Fprintf(&b, "  Sentiment          %+.2f\n", g.SentimentScore)
	fmt.Fprintf(&b, "  Phrases mentioned  %s\n", listOrDash(s.RequiredPhrasesMentioned))
	fmt.Fprintf(&b, "  Objections handled %s\n", listOrDash(s.ObjectionsHandled))
	fmt.Fprintf(&b, "  Goal achieved      %t\n", s.GoalAchieved)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteBatchTable writes one row per attempt followed by the batch summary.
func WriteBatchTable(w io.Writer, outcome *models.BatchOutcome) error {
	var b strings.Builder
	nameWidth := len("Attempt")
	for _, item := range outcome.Items {
		nameWidth = max(nameWidth, runewidth.StringWidth(item.AttemptID))
	}
	nameWidth += 2
	totalWidth := nameWidth + colStatus + colScore + len("Detail")

	fmt.Fprintf(&b, "%s%s%s%s\n",
		padRight("Attempt", nameWidth),
		padRight("Status", colStatus),
		padRight("Score", colScore),
		"Detail")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("─", totalWidth))

	for _, item := range outcome.Items {
		score, detail := "-", item.Error
		if item.Status == models.StatusScored && item.Result != nil {
			score = fmt.Sprintf("%d", item.Result.Score.DisplayScore)
			detail = InterpretScore(item.Result.Score.TotalWeightedScore)
			if item.Cached {
				detail += " (cached)"
			}
		}
		fmt.Fprintf(&b, "%s%s%s%s\n",
			padRight(item.AttemptID, nameWidth),
			padRight(string(item.Status), colStatus),
			padRight(score, colScore),
			detail)
	}

	s := outcome.Summary
	fmt.Fprintf(&b, "\n%d attempts, %d scored, %d failed\n", s.Total, s.Scored, s.Failed)
	if s.Scored > 0 {
		fmt.Fprintf(&b, "Mean %.1f  Std dev %.1f  Range %.1f-%.1f  95%% CI %.1f-%.1f\n",
			s.MeanScore, s.StdDev, s.MinScore, s.MaxScore, s.CI95Lo, s.CI95Hi)
		fmt.Fprintf(&b, "%d below low threshold, %d at or above high threshold\n", s.LowCount, s.HighCount)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func listOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
