package reporting

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/repcoach/callscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredItem(id string, score float64) models.ItemOutcome {
	return models.ItemOutcome{
		AttemptID: id,
		Status:    models.StatusScored,
		Result: &models.ScoringResult{
			KPIs: models.AttemptKPIs{
				Global: models.GlobalKPIs{TalkListenRatio: "45:55", PaceWPM: 140, QuestionsAskedCount: 3},
				Scenario: models.ScenarioKPIs{
					RequiredPhrasesMentioned: []string{"pricing"},
					ObjectionsRaised:         []string{"price"},
					ObjectionsHandled:        []string{},
				},
			},
			Score: models.ScoreBreakdown{
				TotalWeightedScore: score,
				DisplayScore:       models.DisplayRound(score),
				Breakdown:          map[string]float64{"required_phrases": score},
				Criteria: []models.GraderResults{
					{Name: "required_phrases", Type: models.CriterionRequiredPhrases, Score: score, Weight: 1, Feedback: "Missing required phrases: next steps"},
				},
			},
		},
	}
}

func newTestOutcome() *models.BatchOutcome {
	return &models.BatchOutcome{
		Timestamp:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		DurationMs: 2500,
		Items: []models.ItemOutcome{
			scoredItem("call-1", 92.4),
			scoredItem("call-2", 41),
			{
				AttemptID: "call-3",
				Status:    models.StatusError,
				ErrorKind: "invalid_transcript",
				Error:     "transcript has no segments",
			},
		},
		Summary: models.BatchSummary{
			Total: 3, Scored: 2, Failed: 1,
			MeanScore: 66.7, StdDev: 36.0, MinScore: 41, MaxScore: 92.4,
			LowCount: 1, HighCount: 1, CI95Lo: 41, CI95Hi: 92.4,
			NormalCI95Lo: 16.8, NormalCI95Hi: 116.6,
		},
	}
}

func TestConvertToJUnit(t *testing.T) {
	suites := ConvertToJUnit("Discovery calls", newTestOutcome(), 70)

	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	assert.InDelta(t, 2.5, suites.Time, 0.001)
	require.Len(t, suites.TestSuites, 1)

	suite := suites.TestSuites[0]
	assert.Equal(t, "Discovery calls", suite.Name)
	assert.Equal(t, "2026-03-02T09:30:00Z", suite.Timestamp)
	require.Len(t, suite.TestCases, 3)

	passed := suite.TestCases[0]
	assert.Equal(t, "call-1", passed.Name)
	assert.Nil(t, passed.Failure)
	assert.Nil(t, passed.Error)

	failed := suite.TestCases[1]
	require.NotNil(t, failed.Failure)
	assert.Equal(t, "ScoreBelowThreshold", failed.Failure.Type)
	assert.Contains(t, failed.Failure.Message, "score=41.00 below 70.00")
	assert.Contains(t, failed.Failure.Body, "Missing required phrases: next steps")

	errored := suite.TestCases[2]
	require.NotNil(t, errored.Error)
	assert.Equal(t, "InvalidTranscript", errored.Error.Type)
	assert.Equal(t, "transcript has no segments", errored.Error.Message)
}

func TestConvertToJUnit_ZeroMinScoreNeverFails(t *testing.T) {
	suites := ConvertToJUnit("batch", newTestOutcome(), 0)
	assert.Equal(t, 0, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
}

func TestConvertToJUnit_Properties(t *testing.T) {
	suite := ConvertToJUnit("batch", newTestOutcome(), 70).TestSuites[0]

	props := map[string]string{}
	for _, p := range suite.Properties {
		props[p.Name] = p.Value
	}
	assert.Equal(t, "70.00", props["min_score"])
	assert.Equal(t, "66.7000", props["mean_score"])
	assert.Equal(t, "41.00-92.40", props["ci95"])
	assert.Equal(t, "16.80-116.60", props["ci95_normal"])
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "InvalidTranscript", errorType("invalid_transcript"))
	assert.Equal(t, "InvalidRubric", errorType("invalid_rubric"))
	assert.Equal(t, "ScoringError", errorType("error"))
}

func TestWriteJUnitXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xml")
	require.NoError(t, WriteJUnitXML("batch", newTestOutcome(), 70, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))

	var parsed JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, 3, parsed.Tests)
	require.Len(t, parsed.TestSuites, 1)
	assert.Equal(t, "call-2", parsed.TestSuites[0].TestCases[1].Name)
	require.NotNil(t, parsed.TestSuites[0].TestCases[1].Failure)
}

func TestWriteJUnitXML_BadPath(t *testing.T) {
	err := WriteJUnitXML("batch", newTestOutcome(), 70, filepath.Join(t.TempDir(), "missing", "out.xml"))
	assert.Error(t, err)
}
