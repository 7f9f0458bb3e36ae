package graders

import (
	"context"
	"fmt"
	"math"

	"github.com/repcoach/callscore/internal/models"
)

// MaxScore is the upper bound of every sub-score.
const MaxScore = 100.0

// Grader turns the KPIs of an attempt into a 0-100 sub-score for one rubric criterion.
type Grader interface {
	// Name returns the criterion name
	Name() string

	// Kind returns the criterion kind
	Kind() models.GraderKind

	// Grade scores the attempt
	Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error)
}

// Context carries the computed KPIs of the attempt being graded.
type Context struct {
	KPIs models.AttemptKPIs
}

// Create builds the grader for a rubric criterion. opts apply to the
// conversation_quality grader only.
func Create(c models.Criterion, opts ...ConversationQualityGraderOption) (Grader, error) {
	name := string(c.Kind)

	switch p := c.Params.(type) {
	case models.GoalAchievementParams:
		return NewGoalAchievementGrader(name, c.Weight), nil
	case models.RequiredPhrasesParams:
		return NewRequiredPhrasesGrader(RequiredPhrasesGraderArgs{Name: name, Weight: c.Weight, Phrases: p.Phrases}), nil
	case models.OpenQuestionsParams:
		return NewOpenQuestionsGrader(name, c.Weight, p.MinimumCount)
	case models.ObjectionsHandledParams:
		return NewObjectionsGrader(name, c.Weight, p.ObjectionTypes), nil
	case models.ConversationQualityParams:
		return NewConversationQualityGrader(name, c.Weight, p, opts...)
	default:
		return nil, fmt.Errorf("%w: criterion %q has no grader for parameters %T", models.ErrInvalidRubric, c.Kind, c.Params)
	}
}

// ratioScore maps got/want onto 0-100, capped at 100. want <= 0 scores 100.
func ratioScore(got, want int) float64 {
	if want <= 0 {
		return MaxScore
	}
	return math.Min(MaxScore, MaxScore*float64(got)/float64(want))
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(MaxScore, v))
}
