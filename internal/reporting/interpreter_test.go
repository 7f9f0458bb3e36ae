package reporting

import (
	"strings"
	"testing"

	"github.com/repcoach/callscore/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInterpretScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"excellent high", 100, "Excellent (>90)"},
		{"excellent boundary", 90.1, "Excellent (>90)"},
		{"good high", 90, "Good (70-90)"},
		{"good low", 70, "Good (70-90)"},
		{"needs work high", 69.9, "Needs Work (50-70)"},
		{"needs work low", 50, "Needs Work (50-70)"},
		{"poor high", 49.9, "Poor (<50)"},
		{"poor zero", 0, "Poor (<50)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretScore(tt.score))
		})
	}
}

func TestInterpretSuccessRate(t *testing.T) {
	tests := []struct {
		name          string
		scored, total int
		want          string
	}{
		{"empty", 0, 0, "No attempts"},
		{"all", 4, 4, "All attempts scored (100%)"},
		{"most", 9, 10, "Most attempts scored (90%)"},
		{"half", 1, 2, "About half the attempts scored (50%)"},
		{"few", 1, 4, "Few attempts scored (25%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretSuccessRate(tt.scored, tt.total))
		})
	}
}

func TestInterpretSpread(t *testing.T) {
	assert.Contains(t, InterpretSpread(models.BatchSummary{Scored: 1}), "Not enough")
	assert.Contains(t, InterpretSpread(models.BatchSummary{Scored: 5, CI95Lo: 70, CI95Hi: 76}), "consistent")
	assert.Contains(t, InterpretSpread(models.BatchSummary{Scored: 5, CI95Lo: 40, CI95Hi: 80}), "vary widely")
}

func TestFormatSummaryReport(t *testing.T) {
	report := FormatSummaryReport(newTestOutcome())

	assert.True(t, strings.HasPrefix(report, "=== Interpretation ===\n"))
	assert.Contains(t, report, "Mean Score:    66.7")
	assert.Contains(t, report, "✓ call-1: 92, Excellent (>90)")
	assert.Contains(t, report, "✓ call-2: 41, Poor (<50)")
	assert.Contains(t, report, "✗ call-3: transcript has no segments (invalid_transcript)")
	assert.Contains(t, report, "Duration:      2.5s")
}

func TestFormatSummaryReport_NothingScored(t *testing.T) {
	outcome := &models.BatchOutcome{Summary: models.BatchSummary{}}
	report := FormatSummaryReport(outcome)

	assert.NotContains(t, report, "Mean Score")
	assert.Contains(t, report, "No attempts")
}
