package graders

import (
	"context"
	"fmt"
	"strings"

	"github.com/repcoach/callscore/internal/metrics"
	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/internal/scenario"
)

// objectionsGrader scores the share of declared objection types that were
// answered in time. A raised but unanswered objection counts as not handled.
type objectionsGrader struct {
	name           string
	weight         float64
	objectionTypes []string
}

// NewObjectionsGrader creates an [objectionsGrader].
func NewObjectionsGrader(name string, weight float64, objectionTypes []string) *objectionsGrader {
	return &objectionsGrader{
		name:           name,
		weight:         weight,
		objectionTypes: scenario.Distinct(objectionTypes),
	}
}

func (g *objectionsGrader) Name() string            { return g.name }
func (g *objectionsGrader) Kind() models.GraderKind { return models.CriterionObjectionsHandled }

func (g *objectionsGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	sc := gradingContext.KPIs.Scenario

	handled := toSet(sc.ObjectionsHandled)
	raised := toSet(sc.ObjectionsRaised)

	var failures []string
	count := 0
	for _, t := range g.objectionTypes {
		key := metrics.Fold(strings.TrimSpace(t))
		switch {
		case handled[key]:
			count++
		case raised[key]:
			failures = append(failures, fmt.Sprintf("Objection not answered: %s", t))
		default:
			failures = append(failures, fmt.Sprintf("Objection never surfaced: %s", t))
		}
	}

	feedback := "All declared objections handled"
	if len(g.objectionTypes) == 0 {
		feedback = "No objection types declared"
	} else if len(failures) > 0 {
		feedback = strings.Join(failures, "; ")
	}

	return &models.GraderResults{
		Name:     g.name,
		Type:     models.CriterionObjectionsHandled,
		Score:    ratioScore(count, len(g.objectionTypes)),
		Weight:   g.weight,
		Feedback: feedback,
		Details: map[string]any{
			"declared": len(g.objectionTypes),
			"handled":  count,
			"failures": failures,
		},
	}, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[metrics.Fold(strings.TrimSpace(v))] = true
	}
	return set
}
