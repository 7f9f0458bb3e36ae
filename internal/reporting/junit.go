package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/repcoach/callscore/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one batch.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one attempt.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure marks an attempt that scored below the minimum.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError marks an attempt that could not be scored.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a batch to JUnit XML. An attempt fails when its
// total score is below minScore and errors when it could not be scored.
func ConvertToJUnit(name string, outcome *models.BatchOutcome, minScore float64) *JUnitTestSuites {
	durationSec := float64(outcome.DurationMs) / 1000.0

	suite := JUnitTestSuite{
		Name:      name,
		Tests:     len(outcome.Items),
		Time:      durationSec,
		Timestamp: outcome.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "min_score", Value: fmt.Sprintf("%.2f", minScore)},
			{Name: "mean_score", Value: fmt.Sprintf("%.4f", outcome.Summary.MeanScore)},
			{Name: "ci95", Value: fmt.Sprintf("%.2f-%.2f", outcome.Summary.CI95Lo, outcome.Summary.CI95Hi)},
			{Name: "ci95_normal", Value: fmt.Sprintf("%.2f-%.2f", outcome.Summary.NormalCI95Lo, outcome.Summary.NormalCI95Hi)},
		},
	}

	for _, item := range outcome.Items {
		tc := JUnitTestCase{Name: item.AttemptID, Classname: name}

		switch {
		case item.Status != models.StatusScored || item.Result == nil:
			suite.Errors++
			tc.Error = &JUnitError{Message: item.Error, Type: errorType(item.ErrorKind)}
		case item.Result.Score.TotalWeightedScore < minScore:
			suite.Failures++
			tc.Failure = buildFailure(item, minScore)
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       durationSec,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func buildFailure(item models.ItemOutcome, minScore float64) *JUnitFailure {
	var body strings.Builder
	for _, c := range item.Result.Score.Criteria {
		fmt.Fprintf(&body, "%s (weight %g): %.1f, %s\n", c.Name, c.Weight, c.Score, c.Feedback)
	}

	return &JUnitFailure{
		Message: fmt.Sprintf("%s: score=%.2f below %.2f", item.AttemptID, item.Result.Score.TotalWeightedScore, minScore),
		Type:    "ScoreBelowThreshold",
		Body:    body.String(),
	}
}

func errorType(kind string) string {
	switch kind {
	case "invalid_transcript":
		return "InvalidTranscript"
	case "invalid_rubric":
		return "InvalidRubric"
	default:
		return "ScoringError"
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(name string, outcome *models.BatchOutcome, minScore float64, path string) error {
	suites := ConvertToJUnit(name, outcome, minScore)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
