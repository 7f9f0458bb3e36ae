package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseRubric_AllKinds(t *testing.T) {
	raw := map[string]any{
		"conversation_quality": map[string]any{"weight": 1},
		"open_questions":       map[string]any{"weight": 2, "minimum_count": 3},
		"required_phrases":     map[string]any{"weight": 1.5, "phrases": []any{"ROI", "next step"}},
		"objections_handled":   map[string]any{"weight": 1, "objection_types": []any{"price"}},
		"goal_achievement":     map[string]any{"weight": 4, "closing_phrases": []any{"book a demo"}},
	}

	r, err := ParseRubric(raw)
	require.NoError(t, err)
	require.Len(t, r.Criteria, 5)

	var kinds []CriterionKind
	for _, c := range r.Criteria {
		kinds = append(kinds, c.Kind)
		require.Equal(t, c.Kind, c.Params.Kind())
	}
	require.Equal(t, CriterionKinds, kinds)

	c, ok := r.Lookup(CriterionRequiredPhrases)
	require.True(t, ok)
	require.Equal(t, 1.5, c.Weight)
	require.Equal(t, []string{"ROI", "next step"}, c.Params.(RequiredPhrasesParams).Phrases)

	c, ok = r.Lookup(CriterionObjectionsHandled)
	require.True(t, ok)
	require.Equal(t, DefaultResponseWindow, c.Params.(ObjectionsHandledParams).ResponseWindow)

	c, ok = r.Lookup(CriterionConversationQuality)
	require.True(t, ok)
	require.Equal(t, ConversationQualityParams{PaceMinWPM: DefaultPaceMinWPM, PaceMaxWPM: DefaultPaceMaxWPM}, c.Params)

	require.InDelta(t, 9.5, r.TotalWeight(), 1e-9)
	require.NoError(t, r.Validate())
}

func TestParseRubric_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"unknown criterion", map[string]any{"charisma": map[string]any{"weight": 1}}},
		{"missing weight", map[string]any{"open_questions": map[string]any{"minimum_count": 1}}},
		{"negative weight", map[string]any{"open_questions": map[string]any{"weight": -1, "minimum_count": 1}}},
		{"non-numeric weight", map[string]any{"open_questions": map[string]any{"weight": "heavy", "minimum_count": 1}}},
		{"required_phrases without phrases", map[string]any{"required_phrases": map[string]any{"weight": 1}}},
		{"open_questions without minimum_count", map[string]any{"open_questions": map[string]any{"weight": 1}}},
		{"negative minimum_count", map[string]any{"open_questions": map[string]any{"weight": 1, "minimum_count": -2}}},
		{"objections without types", map[string]any{"objections_handled": map[string]any{"weight": 1}}},
		{"unknown parameter", map[string]any{"required_phrases": map[string]any{"weight": 1, "phrases": []any{}, "phrase": "x"}}},
		{"inverted pace band", map[string]any{"conversation_quality": map[string]any{"weight": 1, "pace_min_wpm": 200, "pace_max_wpm": 100}}},
		{"criterion not a mapping", map[string]any{"open_questions": 3}},
		{"fractional minimum_count", map[string]any{"open_questions": map[string]any{"weight": 1, "minimum_count": 2.9}}},
		{"fractional response_window", map[string]any{"objections_handled": map[string]any{"weight": 1, "objection_types": []any{"price"}, "response_window": 1.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRubric(tt.raw)
			require.ErrorIs(t, err, ErrInvalidRubric)
		})
	}
}

func TestParseRubric_WholeFloatCounts(t *testing.T) {
	var r Rubric
	require.NoError(t, json.Unmarshal([]byte(`{
		"open_questions": {"weight": 1, "minimum_count": 2.0},
		"objections_handled": {"weight": 1, "objection_types": ["price"], "response_window": 4}
	}`), &r))

	questions, ok := r.Lookup(CriterionOpenQuestions)
	require.True(t, ok)
	require.Equal(t, 2, questions.Params.(OpenQuestionsParams).MinimumCount)

	objections, _ := r.Lookup(CriterionObjectionsHandled)
	require.Equal(t, 4, objections.Params.(ObjectionsHandledParams).ResponseWindow)

	err := json.Unmarshal([]byte(`{"open_questions": {"weight": 1, "minimum_count": 2.9}}`), &r)
	require.ErrorIs(t, err, ErrInvalidRubric)
	require.ErrorContains(t, err, "whole number")
}

func TestRubric_Validate(t *testing.T) {
	t.Run("all weights zero", func(t *testing.T) {
		r, err := ParseRubric(map[string]any{
			"open_questions":   map[string]any{"weight": 0, "minimum_count": 2},
			"goal_achievement": map[string]any{"weight": 0},
		})
		require.NoError(t, err)
		require.Empty(t, r.Evaluated())
		require.ErrorIs(t, r.Validate(), ErrInvalidRubric)
	})

	t.Run("empty rubric", func(t *testing.T) {
		r, err := ParseRubric(map[string]any{})
		require.NoError(t, err)
		require.ErrorIs(t, r.Validate(), ErrInvalidRubric)
	})

	t.Run("nil rubric", func(t *testing.T) {
		var r *Rubric
		require.ErrorIs(t, r.Validate(), ErrInvalidRubric)
	})

	t.Run("zero weight criteria are not evaluated", func(t *testing.T) {
		r, err := ParseRubric(map[string]any{
			"open_questions":   map[string]any{"weight": 0, "minimum_count": 2},
			"goal_achievement": map[string]any{"weight": 1},
		})
		require.NoError(t, err)
		require.NoError(t, r.Validate())
		require.Len(t, r.Evaluated(), 1)
		require.Equal(t, CriterionGoalAchievement, r.Evaluated()[0].Kind)
	})
}

func TestRubric_YAMLAndJSONRoundTrip(t *testing.T) {
	src := `
required_phrases:
  weight: 2
  phrases: [ROI, "next step"]
open_questions:
  weight: 1
  minimum_count: 4
`
	var r Rubric
	require.NoError(t, yaml.Unmarshal([]byte(src), &r))
	require.Len(t, r.Criteria, 2)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back Rubric
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, r, back)
}

func TestRubric_UnmarshalYAMLInvalid(t *testing.T) {
	var r Rubric
	err := yaml.Unmarshal([]byte("mystery:\n  weight: 1\n"), &r)
	require.ErrorIs(t, err, ErrInvalidRubric)
}
