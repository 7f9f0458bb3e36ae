package scoring

import (
	"context"
	"fmt"

	"github.com/repcoach/callscore/internal/graders"
	"github.com/repcoach/callscore/internal/models"
)

// Aggregate turns computed KPIs into the rubric-weighted score. Criteria with
// weight 0 are left out of both the breakdown and the total. It fails with
// [models.ErrInvalidRubric] when no criterion carries weight.
func Aggregate(global models.GlobalKPIs, scenario models.ScenarioKPIs, rubric *models.Rubric, opts ...graders.ConversationQualityGraderOption) (*models.ScoreBreakdown, error) {
	if err := rubric.Validate(); err != nil {
		return nil, err
	}

	gradingContext := &graders.Context{
		KPIs: models.AttemptKPIs{Global: global, Scenario: scenario},
	}

	breakdown := &models.ScoreBreakdown{
		Breakdown: make(map[string]float64),
		Criteria:  []models.GraderResults{},
	}

	for _, c := range rubric.Evaluated() {
		g, err := graders.Create(c, opts...)
		if err != nil {
			return nil, err
		}

		res, err := g.Grade(context.Background(), gradingContext)
		if err != nil {
			return nil, fmt.Errorf("grading %s: %w", c.Kind, err)
		}

		breakdown.Breakdown[res.Name] = res.Score
		breakdown.Criteria = append(breakdown.Criteria, *res)
	}

	total, ok := models.ComputeWeightedScore(breakdown.Criteria)
	if !ok {
		return nil, fmt.Errorf("%w: total weight is zero", models.ErrInvalidRubric)
	}

	breakdown.TotalWeightedScore = total
	breakdown.DisplayScore = models.DisplayRound(total)
	return breakdown, nil
}
