package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/repcoach/callscore/internal/models"
)

// AttemptMarkdown renders a scored attempt as a Markdown coaching report.
func AttemptMarkdown(attemptID string, result *models.ScoringResult) string {
	var b strings.Builder
	g := result.KPIs.Global
	s := result.KPIs.Scenario

	fmt.Fprintf(&b, "# Call score: %s\n\n", attemptID)
	fmt.Fprintf(&b, "**%d / 100** (%s)\n\n", result.Score.DisplayScore, InterpretScore(result.Score.TotalWeightedScore))

	b.WriteString("## Criteria\n\n")
	b.WriteString("| Criterion | Score | Weight | Feedback |\n")
	b.WriteString("|---|---:|---:|---|\n")
	for _, c := range result.Score.Criteria {
		fmt.Fprintf(&b, "| %s | %.1f | %g | %s |\n", escapeCell(c.Name), c.Score, c.Weight, escapeCell(c.Feedback))
	}

	b.WriteString("\n## Conversation metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| Talk:listen | %s |\n", g.TalkListenRatio)
	fmt.Fprintf(&b, "| Pace | %.0f wpm |\n", g.PaceWPM)
	fmt.Fprintf(&b, "| Questions asked | %d |\n", g.QuestionsAskedCount)
	fmt.Fprintf(&b, "| Filler words | %d |\n", g.FillerWordsCount)
	fmt.Fprintf(&b, "| Interruptions | %d |\n", g.InterruptionsCount)
	fmt.Fprintf(&b, "| Sentiment | %+.2f |\n", g.SentimentScore)

	b.WriteString("\n## Scenario\n\n")
	fmt.Fprintf(&b, "- Required phrases mentioned: %s\n", escapeCell(listOrDash(s.RequiredPhrasesMentioned)))
	fmt.Fprintf(&b, "- Objections raised: %s\n", escapeCell(listOrDash(s.ObjectionsRaised)))
	fmt.Fprintf(&b, "- Objections handled: %s\n", escapeCell(listOrDash(s.ObjectionsHandled)))
	if s.GoalAchieved {
		fmt.Fprintf(&b, "- Goal achieved (%s)\n", s.GoalEvidence)
	} else {
		b.WriteString("- Goal not achieved\n")
	}

	return b.String()
}

// AttemptHTML renders the Markdown report as an HTML fragment.
func AttemptHTML(attemptID string, result *models.ScoringResult) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(AttemptMarkdown(attemptID, result)), &buf); err != nil {
		return nil, fmt.Errorf("rendering HTML report: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
