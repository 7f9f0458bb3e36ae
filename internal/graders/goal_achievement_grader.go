package graders

import (
	"context"

	"github.com/repcoach/callscore/internal/models"
)

// goalAchievementGrader awards all or nothing on the goal heuristic.
type goalAchievementGrader struct {
	name   string
	weight float64
}

// NewGoalAchievementGrader creates a [goalAchievementGrader].
func NewGoalAchievementGrader(name string, weight float64) *goalAchievementGrader {
	return &goalAchievementGrader{name: name, weight: weight}
}

func (g *goalAchievementGrader) Name() string            { return g.name }
func (g *goalAchievementGrader) Kind() models.GraderKind { return models.CriterionGoalAchievement }

func (g *goalAchievementGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	sc := gradingContext.KPIs.Scenario

	score := 0.0
	feedback := "Call goal was not reached"
	if sc.GoalAchieved {
		score = MaxScore
		feedback = "Call goal reached: " + sc.GoalEvidence
	}

	return &models.GraderResults{
		Name:     g.name,
		Type:     models.CriterionGoalAchievement,
		Score:    score,
		Weight:   g.weight,
		Feedback: feedback,
		Details: map[string]any{
			"goal_achieved": sc.GoalAchieved,
			"heuristic":     true,
		},
	}, nil
}
