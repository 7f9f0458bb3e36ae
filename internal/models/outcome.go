package models

import (
	"math"
	"time"
)

// Status represents the outcome status of a scored attempt in a batch.
type Status string

const (
	StatusScored Status = "scored"
	StatusError  Status = "error"
)

// GraderKind identifies the grader that produced a sub-score. Each rubric
// criterion kind has exactly one grader.
type GraderKind = CriterionKind

// GraderResults is the graded outcome of one rubric criterion.
type GraderResults struct {
	Name     string         `json:"identifier"`
	Type     GraderKind     `json:"type"`
	Score    float64        `json:"score"`
	Weight   float64        `json:"weight"`
	Feedback string         `json:"feedback"`
	Details  map[string]any `json:"details,omitempty"`
}

// ScoreBreakdown is the rubric-weighted score of one attempt.
type ScoreBreakdown struct {
	// TotalWeightedScore is kept unrounded. DisplayScore is the rounded value.
	TotalWeightedScore float64            `json:"total_weighted_score"`
	DisplayScore       int                `json:"display_score"`
	Breakdown          map[string]float64 `json:"breakdown"`
	Criteria           []GraderResults    `json:"criteria"`
}

// ScoringResult is everything the engine returns for one attempt.
type ScoringResult struct {
	KPIs  AttemptKPIs    `json:"kpis"`
	Score ScoreBreakdown `json:"score"`
}

// ComputeWeightedScore calculates Σ(score*weight)/Σ(weight) over graded
// criteria. The second return is false when the total weight is not positive.
// Weights are scaled by the largest one first, so any finite weights give a
// finite result in [0, 100].
func ComputeWeightedScore(results []GraderResults) (float64, bool) {
	maxWeight := 0.0
	for _, r := range results {
		if r.Weight > maxWeight && !math.IsInf(r.Weight, 1) {
			maxWeight = r.Weight
		}
	}
	if maxWeight <= 0 {
		return 0, false
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for _, r := range results {
		if r.Weight <= 0 || math.IsInf(r.Weight, 1) {
			continue
		}
		w := r.Weight / maxWeight
		weightedSum += r.Score * w
		totalWeight += w
	}
	return min(100, max(0, weightedSum/totalWeight)), true
}

// DisplayRound rounds a score half away from zero for display.
func DisplayRound(score float64) int {
	return int(math.Round(score))
}

// ItemOutcome is the result of scoring one attempt inside a batch. Exactly one
// of Result and Error is set.
type ItemOutcome struct {
	AttemptID string         `json:"attempt_id"`
	Status    Status         `json:"status"`
	Result    *ScoringResult `json:"result,omitempty"`
	ErrorKind string         `json:"error_kind,omitempty"`
	Error     string         `json:"error,omitempty"`
	Cached    bool           `json:"cached,omitempty"`
}

// BatchSummary aggregates the scored items of a batch.
type BatchSummary struct {
	Total     int     `json:"total"`
	Scored    int     `json:"scored"`
	Failed    int     `json:"failed"`
	MeanScore float64 `json:"mean_score"`
	StdDev    float64 `json:"std_dev"`
	MinScore  float64 `json:"min_score"`
	MaxScore  float64 `json:"max_score"`
	LowCount  int     `json:"low_count"`
	HighCount int     `json:"high_count"`
	CI95Lo    float64 `json:"ci95_lo"`
	CI95Hi    float64 `json:"ci95_hi"`
	// NormalCI95Lo and NormalCI95Hi are the normal-approximation interval,
	// reported next to the bootstrap one above.
	NormalCI95Lo float64 `json:"normal_ci95_lo"`
	NormalCI95Hi float64 `json:"normal_ci95_hi"`
}

// BatchOutcome is the result of scoring many attempts. Items keep input order.
type BatchOutcome struct {
	Timestamp  time.Time     `json:"timestamp"`
	DurationMs int64         `json:"duration_ms"`
	Items      []ItemOutcome `json:"items"`
	Summary    BatchSummary  `json:"summary"`
}
