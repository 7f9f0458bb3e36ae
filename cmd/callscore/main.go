package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/repcoach/callscore/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess           = 0 // Scored at or above the minimum
	ExitBelowThreshold    = 1 // A score fell below --min-score, or a batch item failed
	ExitError             = 2 // Configuration or runtime error
	ExitInvalidTranscript = 3 // The transcript could not be scored
	ExitInvalidRubric     = 4 // The rubric is not usable
)

// ScoreBelowThresholdError indicates that scoring ran successfully, but the
// result did not reach the requested minimum.
type ScoreBelowThresholdError struct {
	Message string
}

func (e *ScoreBelowThresholdError) Error() string {
	return e.Message
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	var belowErr *ScoreBelowThresholdError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &belowErr):
		return ExitBelowThreshold
	case errors.Is(err, models.ErrInvalidTranscript):
		return ExitInvalidTranscript
	case errors.Is(err, models.ErrInvalidRubric):
		return ExitInvalidRubric
	default:
		return ExitError
	}
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
