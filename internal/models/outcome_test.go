package models

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeWeightedScore(t *testing.T) {
	tests := []struct {
		name    string
		results []GraderResults
		want    float64
		wantOK  bool
	}{
		{name: "no results", results: nil, want: 0, wantOK: false},
		{name: "single criterion", results: []GraderResults{{Score: 75, Weight: 1}}, want: 75, wantOK: true},
		{
			name:    "weighted",
			results: []GraderResults{{Score: 100, Weight: 3}, {Score: 0, Weight: 1}},
			want:    75,
			wantOK:  true,
		},
		{
			name:    "zero weights ignored",
			results: []GraderResults{{Score: 100, Weight: 0}, {Score: 40, Weight: 2}},
			want:    40,
			wantOK:  true,
		},
		{name: "all zero weights", results: []GraderResults{{Score: 100, Weight: 0}}, want: 0, wantOK: false},
		{name: "huge weight", results: []GraderResults{{Score: 100, Weight: 1e307}}, want: 100, wantOK: true},
		{
			name:    "weights summing past float range",
			results: []GraderResults{{Score: 100, Weight: math.MaxFloat64}, {Score: 50, Weight: math.MaxFloat64}},
			want:    75,
			wantOK:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeWeightedScore(tt.results)
			require.Equal(t, tt.wantOK, ok)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeWeightedScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDisplayRound(t *testing.T) {
	require.Equal(t, 0, DisplayRound(0.49))
	require.Equal(t, 1, DisplayRound(0.5))
	require.Equal(t, 67, DisplayRound(66.6666))
	require.Equal(t, 100, DisplayRound(100))
}

func TestErrorKind(t *testing.T) {
	require.Equal(t, "", ErrorKind(nil))
	require.Equal(t, "invalid_transcript", ErrorKind(fmt.Errorf("%w: empty", ErrInvalidTranscript)))
	require.Equal(t, "invalid_rubric", ErrorKind(fmt.Errorf("loading: %w", ErrInvalidRubric)))
	require.Equal(t, "error", ErrorKind(errors.New("boom")))
}

func TestSpeakerKnown(t *testing.T) {
	require.True(t, SpeakerTrainee.Known())
	require.True(t, SpeakerAgent.Known())
	require.False(t, Speaker("narrator").Known())
}
