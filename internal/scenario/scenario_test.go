package scenario

import (
	"testing"

	"github.com/repcoach/callscore/internal/models"
	"github.com/stretchr/testify/require"
)

func seg(speaker models.Speaker, text string, start int64) models.TranscriptSegment {
	return models.TranscriptSegment{Speaker: speaker, Text: text, StartTimeMs: start, EndTimeMs: start + 1000}
}

func TestMentionedPhrases(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(models.SpeakerTrainee, "Our roi calculator shows payback in six months", 0),
		seg(models.SpeakerAgent, "Can you offer a discount?", 1000),
		seg(models.SpeakerTrainee, "The NEXT STEP would be a pilot", 2000),
	}

	k := ComputeScenario(segments, nil, Params{
		RequiredPhrases: []string{"ROI", "roi", "discount", "Next Step", "  "},
	})
	require.Equal(t, []string{"ROI", "Next Step"}, k.RequiredPhrasesMentioned)
}

func TestMentionedPhrases_NoneDeclared(t *testing.T) {
	k := ComputeScenario([]models.TranscriptSegment{seg(models.SpeakerTrainee, "hello", 0)}, nil, Params{})
	require.NotNil(t, k.RequiredPhrasesMentioned)
	require.Empty(t, k.RequiredPhrasesMentioned)
	require.Empty(t, k.ObjectionsHandled)
}

func TestObjections(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(models.SpeakerAgent, "Honestly that's too expensive for us.", 0),
		seg(models.SpeakerTrainee, "I understand, let me walk through the savings.", 1000),
		seg(models.SpeakerAgent, "Maybe call me next quarter.", 2000),
		seg(models.SpeakerTrainee, "Okay.", 3000),
		seg(models.SpeakerTrainee, "Sure", 4000),
		seg(models.SpeakerTrainee, "Right.", 5000),
		seg(models.SpeakerTrainee, "Let me explain why acting now matters.", 6000),
		seg(models.SpeakerAgent, "We also need a security review first.", 7000),
		seg(models.SpeakerTrainee, "We have a SOC 2 report ready for you.", 8000),
	}

	k := ComputeScenario(segments, nil, Params{
		ObjectionTypes: []string{"price", "timing", "security_review", "competitor", "Price"},
	})
	require.Equal(t, []string{"price", "timing", "security_review"}, k.ObjectionsRaised)
	require.Equal(t, []string{"price", "security_review"}, k.ObjectionsHandled)
}

func TestObjections_ResponseWindow(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(models.SpeakerAgent, "This is not a priority right now.", 0),
		seg(models.SpeakerTrainee, "Hmm.", 1000),
		seg(models.SpeakerTrainee, "I see.", 2000),
		seg(models.SpeakerTrainee, "Totally fair, but consider the cost of waiting.", 3000),
	}

	narrow := ComputeScenario(segments, nil, Params{ObjectionTypes: []string{"timing"}, ResponseWindow: 2})
	require.Equal(t, []string{"timing"}, narrow.ObjectionsRaised)
	require.Empty(t, narrow.ObjectionsHandled)

	wide := ComputeScenario(segments, nil, Params{ObjectionTypes: []string{"timing"}, ResponseWindow: 3})
	require.Equal(t, []string{"timing"}, wide.ObjectionsHandled)
}

func TestObjections_TraineeCueIsNotAnObjection(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(models.SpeakerTrainee, "I know budget is tight this year.", 0),
		seg(models.SpeakerTrainee, "So here is how we keep the cost down.", 1000),
	}
	k := ComputeScenario(segments, nil, Params{ObjectionTypes: []string{"price"}})
	require.Empty(t, k.ObjectionsRaised)
	require.Empty(t, k.ObjectionsHandled)
}

func TestObjections_CustomCues(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(models.SpeakerAgent, "It's a bit pricey.", 0),
		seg(models.SpeakerTrainee, "Let me show you the numbers then.", 1000),
	}
	k := ComputeScenario(segments, nil, Params{
		ObjectionTypes: []string{"price"},
		ObjectionCues:  map[string][]string{"PRICE": {"pricey"}},
	})
	require.Equal(t, []string{"price"}, k.ObjectionsHandled)
}

func TestGoalAchieved(t *testing.T) {
	persona := &models.Persona{Role: "Ops lead", Objectives: []string{"reduce onboarding time"}}

	t.Run("closing phrase", func(t *testing.T) {
		segments := []models.TranscriptSegment{
			seg(models.SpeakerTrainee, "Shall we book a demo for Tuesday?", 0),
			seg(models.SpeakerAgent, "Maybe.", 1000),
		}
		k := ComputeScenario(segments, nil, Params{ClosingPhrases: []string{"Book a Demo"}})
		require.True(t, k.GoalAchieved)
		require.Contains(t, k.GoalEvidence, "Book a Demo")
	})

	t.Run("objective affirmed at the end", func(t *testing.T) {
		segments := []models.TranscriptSegment{
			seg(models.SpeakerTrainee, "Thanks for your time.", 0),
			seg(models.SpeakerAgent, "Yes, if it can reduce onboarding time I'm in.", 1000),
		}
		k := ComputeScenario(segments, persona, Params{})
		require.True(t, k.GoalAchieved)
		require.Contains(t, k.GoalEvidence, "reduce onboarding time")
	})

	t.Run("objective only early in the call", func(t *testing.T) {
		segments := []models.TranscriptSegment{
			seg(models.SpeakerAgent, "Yes, we want to reduce onboarding time.", 0),
			seg(models.SpeakerTrainee, "Great.", 1000),
			seg(models.SpeakerAgent, "Anyway.", 2000),
			seg(models.SpeakerTrainee, "Let me follow up.", 3000),
			seg(models.SpeakerAgent, "No thanks.", 4000),
			seg(models.SpeakerTrainee, "Okay, bye.", 5000),
		}
		k := ComputeScenario(segments, persona, Params{})
		require.False(t, k.GoalAchieved)
		require.Empty(t, k.GoalEvidence)
	})

	t.Run("missing persona", func(t *testing.T) {
		segments := []models.TranscriptSegment{seg(models.SpeakerAgent, "Yes, reduce onboarding time.", 0)}
		k := ComputeScenario(segments, nil, Params{})
		require.False(t, k.GoalAchieved)
	})
}

func TestParamsFromRubric(t *testing.T) {
	r, err := models.ParseRubric(map[string]any{
		"required_phrases":   map[string]any{"weight": 0, "phrases": []any{"ROI"}},
		"goal_achievement":   map[string]any{"weight": 1, "closing_phrases": []any{"sign today"}},
		"objections_handled": map[string]any{"weight": 1, "objection_types": []any{"price"}, "response_window": 5},
	})
	require.NoError(t, err)

	p := ParamsFromRubric(r)
	require.Equal(t, []string{"ROI"}, p.RequiredPhrases)
	require.Equal(t, []string{"sign today"}, p.ClosingPhrases)
	require.Equal(t, []string{"price"}, p.ObjectionTypes)
	require.Equal(t, 5, p.ResponseWindow)

	empty := ParamsFromRubric(nil)
	require.Equal(t, models.DefaultResponseWindow, empty.ResponseWindow)
	require.Empty(t, empty.RequiredPhrases)
}

func TestDistinct(t *testing.T) {
	require.Equal(t, []string{"a", "B"}, Distinct([]string{"a", "A", " ", "B", "b "}))
	require.Empty(t, Distinct(nil))
}
