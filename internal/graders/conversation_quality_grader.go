package graders

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/repcoach/callscore/internal/models"
)

// Penalties tunes the deductions of the conversation quality grader.
type Penalties struct {
	// Cap bounds each individual deduction.
	Cap float64
	// PerFillerPerMinute is deducted per filler word per minute of trainee talk.
	PerFillerPerMinute float64
	// PerInterruption is deducted per interruption.
	PerInterruption float64
	// PaceDivisor converts wpm outside the pace band into points.
	PaceDivisor float64
}

// DefaultPenalties returns the standard deduction settings.
func DefaultPenalties() Penalties {
	return Penalties{
		Cap:                25,
		PerFillerPerMinute: 5,
		PerInterruption:    5,
		PaceDivisor:        2,
	}
}

// conversationQualityGrader starts from 100 and deducts for filler words,
// interruptions, pace outside the band and negative sentiment.
type conversationQualityGrader struct {
	name      string
	weight    float64
	paceMin   float64
	paceMax   float64
	penalties Penalties
}

// ConversationQualityGraderOption customizes a conversation quality grader.
type ConversationQualityGraderOption func(*conversationQualityGrader)

// WithPenalties overrides the default deductions.
func WithPenalties(p Penalties) ConversationQualityGraderOption {
	return func(g *conversationQualityGrader) { g.penalties = p }
}

// NewConversationQualityGrader creates a [conversationQualityGrader].
func NewConversationQualityGrader(name string, weight float64, params models.ConversationQualityParams, opts ...ConversationQualityGraderOption) (*conversationQualityGrader, error) {
	if params.PaceMinWPM == 0 && params.PaceMaxWPM == 0 {
		params.PaceMinWPM, params.PaceMaxWPM = models.DefaultPaceMinWPM, models.DefaultPaceMaxWPM
	}
	if params.PaceMinWPM < 0 || params.PaceMaxWPM < params.PaceMinWPM {
		return nil, fmt.Errorf("%w: conversation_quality grader '%s' has an invalid pace band [%v, %v]",
			models.ErrInvalidRubric, name, params.PaceMinWPM, params.PaceMaxWPM)
	}

	g := &conversationQualityGrader{
		name:      name,
		weight:    weight,
		paceMin:   params.PaceMinWPM,
		paceMax:   params.PaceMaxWPM,
		penalties: DefaultPenalties(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.penalties.PaceDivisor <= 0 {
		return nil, fmt.Errorf("conversation_quality grader '%s': pace divisor must be > 0", name)
	}
	return g, nil
}

func (g *conversationQualityGrader) Name() string { return g.name }
func (g *conversationQualityGrader) Kind() models.GraderKind {
	return models.CriterionConversationQuality
}

func (g *conversationQualityGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	k := gradingContext.KPIs.Global

	deductions := map[string]float64{
		"filler":       g.fillerDeduction(k),
		"interruption": g.capped(g.penalties.PerInterruption * float64(k.InterruptionsCount)),
		"pace":         g.paceDeduction(k),
		"sentiment":    g.capped(g.penalties.Cap * math.Max(0, -k.SentimentScore)),
	}

	score := MaxScore
	var notes []string
	for _, key := range []string{"filler", "interruption", "pace", "sentiment"} {
		d := deductions[key]
		score -= d
		if d > 0 {
			notes = append(notes, fmt.Sprintf("%s -%.1f", key, d))
		}
	}

	feedback := "No quality deductions"
	if len(notes) > 0 {
		feedback = "Deductions: " + strings.Join(notes, ", ")
	}

	return &models.GraderResults{
		Name:     g.name,
		Type:     models.CriterionConversationQuality,
		Score:    clampScore(score),
		Weight:   g.weight,
		Feedback: feedback,
		Details: map[string]any{
			"deductions":   deductions,
			"pace_min_wpm": g.paceMin,
			"pace_max_wpm": g.paceMax,
		},
	}, nil
}

// fillerDeduction scales filler count by talk minutes, floored at one minute.
func (g *conversationQualityGrader) fillerDeduction(k models.GlobalKPIs) float64 {
	if k.FillerWordsCount == 0 {
		return 0
	}
	minutes := math.Max(1, float64(k.TalkMs)/60000)
	return g.capped(g.penalties.PerFillerPerMinute * float64(k.FillerWordsCount) / minutes)
}

func (g *conversationQualityGrader) paceDeduction(k models.GlobalKPIs) float64 {
	if k.TalkMs <= 0 {
		return g.penalties.Cap
	}
	var distance float64
	switch {
	case k.PaceWPM < g.paceMin:
		distance = g.paceMin - k.PaceWPM
	case k.PaceWPM > g.paceMax:
		distance = k.PaceWPM - g.paceMax
	}
	return g.capped(distance / g.penalties.PaceDivisor)
}

func (g *conversationQualityGrader) capped(v float64) float64 {
	return math.Max(0, math.Min(g.penalties.Cap, v))
}
