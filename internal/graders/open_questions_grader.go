package graders

import (
	"context"
	"fmt"

	"github.com/repcoach/callscore/internal/models"
)

// openQuestionsGrader scores questions asked against a minimum count.
type openQuestionsGrader struct {
	name         string
	weight       float64
	minimumCount int
}

// NewOpenQuestionsGrader creates an [openQuestionsGrader].
func NewOpenQuestionsGrader(name string, weight float64, minimumCount int) (*openQuestionsGrader, error) {
	if minimumCount < 0 {
		return nil, fmt.Errorf("%w: open_questions grader '%s' minimum_count must be >= 0", models.ErrInvalidRubric, name)
	}
	return &openQuestionsGrader{name: name, weight: weight, minimumCount: minimumCount}, nil
}

func (g *openQuestionsGrader) Name() string            { return g.name }
func (g *openQuestionsGrader) Kind() models.GraderKind { return models.CriterionOpenQuestions }

func (g *openQuestionsGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	asked := gradingContext.KPIs.Global.QuestionsAskedCount

	feedback := fmt.Sprintf("Asked %d of %d expected questions", asked, g.minimumCount)
	if asked >= g.minimumCount {
		feedback = fmt.Sprintf("Asked %d questions (minimum %d)", asked, g.minimumCount)
	}

	return &models.GraderResults{
		Name:     g.name,
		Type:     models.CriterionOpenQuestions,
		Score:    ratioScore(asked, g.minimumCount),
		Weight:   g.weight,
		Feedback: feedback,
		Details: map[string]any{
			"questions_asked": asked,
			"minimum_count":   g.minimumCount,
		},
	}, nil
}
