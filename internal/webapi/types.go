package webapi

import (
	"time"

	"github.com/repcoach/callscore/internal/models"
)

// BatchRequest is the body of POST /api/batch.
type BatchRequest struct {
	Attempts []*models.Attempt `json:"attempts"`
}

// ResultSummary is one stored attempt record in the results list.
type ResultSummary struct {
	ID           string        `json:"id"`
	AttemptID    string        `json:"attempt_id"`
	Status       models.Status `json:"status"`
	DisplayScore *int          `json:"display_score,omitempty"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ScoredAt     time.Time     `json:"scored_at"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors. Kind is "invalid_transcript",
// "invalid_rubric" or "error".
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
