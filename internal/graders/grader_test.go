package graders

import (
	"context"
	"testing"

	"github.com/repcoach/callscore/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	criteria := []models.Criterion{
		{Kind: models.CriterionGoalAchievement, Weight: 1, Params: models.GoalAchievementParams{}},
		{Kind: models.CriterionRequiredPhrases, Weight: 1, Params: models.RequiredPhrasesParams{Phrases: []string{"hi"}}},
		{Kind: models.CriterionOpenQuestions, Weight: 1, Params: models.OpenQuestionsParams{MinimumCount: 2}},
		{Kind: models.CriterionObjectionsHandled, Weight: 1, Params: models.ObjectionsHandledParams{ObjectionTypes: []string{"price"}}},
		{Kind: models.CriterionConversationQuality, Weight: 1, Params: models.ConversationQualityParams{PaceMinWPM: 120, PaceMaxWPM: 160}},
	}

	for _, c := range criteria {
		t.Run(string(c.Kind), func(t *testing.T) {
			g, err := Create(c)
			require.NoError(t, err)
			require.Equal(t, c.Kind, g.Kind())
			require.Equal(t, string(c.Kind), g.Name())
		})
	}

	t.Run("missing params", func(t *testing.T) {
		_, err := Create(models.Criterion{Kind: models.CriterionOpenQuestions, Weight: 1})
		require.ErrorIs(t, err, models.ErrInvalidRubric)
	})
}

func TestGoalAchievementGrader(t *testing.T) {
	g := NewGoalAchievementGrader("goal", 2)

	t.Run("achieved", func(t *testing.T) {
		results, err := g.Grade(context.Background(), &Context{KPIs: models.AttemptKPIs{
			Scenario: models.ScenarioKPIs{GoalAchieved: true, GoalEvidence: `closing phrase "next step"`},
		}})
		require.NoError(t, err)
		require.Equal(t, 100.0, results.Score)
		require.Equal(t, 2.0, results.Weight)
		require.Contains(t, results.Feedback, "next step")
	})

	t.Run("not achieved", func(t *testing.T) {
		results, err := g.Grade(context.Background(), &Context{})
		require.NoError(t, err)
		require.Equal(t, 0.0, results.Score)
	})
}

func TestRequiredPhrasesGrader(t *testing.T) {
	t.Run("all mentioned", func(t *testing.T) {
		g := NewRequiredPhrasesGrader(RequiredPhrasesGraderArgs{Name: "phrases", Phrases: []string{"Pricing", "demo"}})

		results, err := g.Grade(context.Background(), &Context{KPIs: models.AttemptKPIs{
			Scenario: models.ScenarioKPIs{RequiredPhrasesMentioned: []string{"pricing", "demo"}},
		}})
		require.NoError(t, err)
		require.Equal(t, 100.0, results.Score)
		require.Equal(t, "All required phrases mentioned", results.Feedback)
	})

	t.Run("partial", func(t *testing.T) {
		g := NewRequiredPhrasesGrader(RequiredPhrasesGraderArgs{Name: "phrases", Phrases: []string{"a", "b", "c", "d"}})

		results, err := g.Grade(context.Background(), &Context{KPIs: models.AttemptKPIs{
			Scenario: models.ScenarioKPIs{RequiredPhrasesMentioned: []string{"a"}},
		}})
		require.NoError(t, err)
		require.Equal(t, 25.0, results.Score)
		require.Equal(t, "Missing required phrases: b, c, d", results.Feedback)
	})

	t.Run("duplicates count once", func(t *testing.T) {
		g := NewRequiredPhrasesGrader(RequiredPhrasesGraderArgs{Name: "phrases", Phrases: []string{"demo", "DEMO", "price"}})

		results, err := g.Grade(context.Background(), &Context{KPIs: models.AttemptKPIs{
			Scenario: models.ScenarioKPIs{RequiredPhrasesMentioned: []string{"demo"}},
		}})
		require.NoError(t, err)
		require.Equal(t, 50.0, results.Score)
	})

	t.Run("no phrases declared scores full", func(t *testing.T) {
		g := NewRequiredPhrasesGrader(RequiredPhrasesGraderArgs{Name: "phrases"})

		results, err := g.Grade(context.Background(), &Context{})
		require.NoError(t, err)
		require.Equal(t, 100.0, results.Score)
	})
}

func TestOpenQuestionsGrader(t *testing.T) {
	tests := []struct {
		name    string
		minimum int
		asked   int
		want    float64
	}{
		{"meets minimum", 3, 3, 100},
		{"exceeds minimum", 3, 7, 100},
		{"below minimum", 4, 1, 25},
		{"none asked", 3, 0, 0},
		{"zero minimum", 0, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewOpenQuestionsGrader("questions", 1, tt.minimum)
			require.NoError(t, err)

			results, err := g.Grade(context.Background(), &Context{KPIs: models.AttemptKPIs{
				Global: models.GlobalKPIs{QuestionsAskedCount: tt.asked},
			}})
			require.NoError(t, err)
			require.InDelta(t, tt.want, results.Score, 1e-9)
		})
	}

	t.Run("negative minimum", func(t *testing.T) {
		_, err := NewOpenQuestionsGrader("questions", 1, -1)
		require.ErrorIs(t, err, models.ErrInvalidRubric)
	})
}

func TestObjectionsGrader(t *testing.T) {
	g := NewObjectionsGrader("objections", 1, []string{"price", "timing", "competitor", "Price"})

	results, err := g.Grade(context.Background(), &Context{KPIs: models.AttemptKPIs{
		Scenario: models.ScenarioKPIs{
			ObjectionsRaised:  []string{"price", "timing"},
			ObjectionsHandled: []string{"price"},
		},
	}})
	require.NoError(t, err)
	require.InDelta(t, 100.0/3, results.Score, 1e-9)
	require.Equal(t, "Objection not answered: timing; Objection never surfaced: competitor", results.Feedback)

	t.Run("none declared", func(t *testing.T) {
		g := NewObjectionsGrader("objections", 1, nil)
		results, err := g.Grade(context.Background(), &Context{})
		require.NoError(t, err)
		require.Equal(t, 100.0, results.Score)
	})
}
