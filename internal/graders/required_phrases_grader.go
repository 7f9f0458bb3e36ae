package graders

import (
	"context"
	"fmt"
	"strings"

	"github.com/repcoach/callscore/internal/metrics"
	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/internal/scenario"
)

// RequiredPhrasesGraderArgs holds the arguments for creating a required phrases grader.
type RequiredPhrasesGraderArgs struct {
	// Name is the identifier for this grader, used in results and error messages.
	Name string
	// Weight is the criterion weight copied onto the results.
	Weight float64
	// Phrases lists the phrases the trainee must say (case-insensitive).
	Phrases []string
}

// requiredPhrasesGrader scores the share of required phrases the trainee said.
type requiredPhrasesGrader struct {
	name    string
	weight  float64
	phrases []string
}

// NewRequiredPhrasesGrader creates a [requiredPhrasesGrader]. Duplicate and
// blank phrases are ignored.
func NewRequiredPhrasesGrader(args RequiredPhrasesGraderArgs) *requiredPhrasesGrader {
	return &requiredPhrasesGrader{
		name:    args.Name,
		weight:  args.Weight,
		phrases: scenario.Distinct(args.Phrases),
	}
}

func (g *requiredPhrasesGrader) Name() string            { return g.name }
func (g *requiredPhrasesGrader) Kind() models.GraderKind { return models.CriterionRequiredPhrases }

func (g *requiredPhrasesGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	mentioned := make(map[string]bool)
	for _, p := range gradingContext.KPIs.Scenario.RequiredPhrasesMentioned {
		mentioned[metrics.Fold(strings.TrimSpace(p))] = true
	}

	var missing []string
	found := 0
	for _, p := range g.phrases {
		if mentioned[metrics.Fold(strings.TrimSpace(p))] {
			found++
		} else {
			missing = append(missing, p)
		}
	}

	feedback := "All required phrases mentioned"
	if len(g.phrases) == 0 {
		feedback = "No required phrases declared"
	} else if len(missing) > 0 {
		feedback = fmt.Sprintf("Missing required phrases: %s", strings.Join(missing, ", "))
	}

	return &models.GraderResults{
		Name:     g.name,
		Type:     models.CriterionRequiredPhrases,
		Score:    ratioScore(found, len(g.phrases)),
		Weight:   g.weight,
		Feedback: feedback,
		Details: map[string]any{
			"required":  len(g.phrases),
			"mentioned": found,
			"missing":   missing,
		},
	}, nil
}
