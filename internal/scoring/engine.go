// Package scoring runs the scoring pipeline of one attempt: normalize the
// transcript, compute global and scenario KPIs, then aggregate them through
// the rubric.
package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/repcoach/callscore/internal/graders"
	"github.com/repcoach/callscore/internal/metrics"
	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/internal/scenario"
	"github.com/repcoach/callscore/internal/transcript"
)

// Scorer scores a single attempt.
type Scorer interface {
	Score(ctx context.Context, attempt *models.Attempt) (*models.ScoringResult, error)
}

// Engine is the default [Scorer]. The zero value is ready to use.
type Engine struct {
	// Penalties overrides the conversation quality deductions when set.
	Penalties *graders.Penalties
}

// NewEngine creates an Engine. A nil penalties uses the defaults.
func NewEngine(penalties *graders.Penalties) *Engine {
	return &Engine{Penalties: penalties}
}

// Score validates and scores attempt. Identical inputs produce identical
// results. Errors wrap [models.ErrInvalidTranscript] or [models.ErrInvalidRubric].
func (e *Engine) Score(ctx context.Context, attempt *models.Attempt) (*models.ScoringResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, fmt.Errorf("%w: no attempt", models.ErrInvalidTranscript)
	}

	// rubric errors take precedence over transcript errors
	if err := attempt.Rubric.Validate(); err != nil {
		return nil, err
	}

	norm, err := transcript.Normalize(attempt.Transcript, attempt.CallDurationSec)
	if err != nil {
		return nil, err
	}

	slog.Debug("Normalized transcript",
		"attempt", attempt.ID,
		"segments", len(norm.Segments),
		"derivedDurationMs", norm.TotalDurationMs,
		"callDurationMs", norm.CallDurationMs)

	global := metrics.ComputeGlobal(norm.Segments, norm.CallDurationMs)
	scenarioKPIs := scenario.ComputeScenario(norm.Segments, attempt.Persona, scenario.ParamsFromRubric(attempt.Rubric))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts []graders.ConversationQualityGraderOption
	if e != nil && e.Penalties != nil {
		opts = append(opts, graders.WithPenalties(*e.Penalties))
	}

	score, err := Aggregate(global, scenarioKPIs, attempt.Rubric, opts...)
	if err != nil {
		return nil, err
	}

	slog.Debug("Scored attempt", "attempt", attempt.ID, "score", score.TotalWeightedScore)

	return &models.ScoringResult{
		KPIs:  models.AttemptKPIs{Global: global, Scenario: scenarioKPIs},
		Score: *score,
	}, nil
}
