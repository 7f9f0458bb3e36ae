package transcript

import (
	"fmt"
	"math"
	"strings"

	"github.com/repcoach/callscore/internal/models"
)

// Normalized is a validated transcript ready for KPI calculation.
type Normalized struct {
	Segments []models.TranscriptSegment
	// TotalDurationMs is derived from transcript bounds: max(end) - min(start).
	TotalDurationMs int64
	// CallDurationMs is the overall call duration: the caller-supplied value
	// when positive and representable in milliseconds, otherwise
	// TotalDurationMs.
	CallDurationMs int64
}

// Normalize validates raw segments and returns a canonical copy. Speakers are
// lowercased and trimmed, text whitespace is collapsed. It fails with
// [models.ErrInvalidTranscript] when the sequence is empty, a timestamp is
// negative or out of order, a segment ends before it starts, a confidence is
// outside [0, 1], or no segment has a recognized speaker.
func Normalize(raw []models.TranscriptSegment, callDurationSec float64) (*Normalized, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no segments", models.ErrInvalidTranscript)
	}

	segments := make([]models.TranscriptSegment, len(raw))
	recognized := false
	minStart, maxEnd := raw[0].StartTimeMs, raw[0].EndTimeMs

	for i, seg := range raw {
		if seg.StartTimeMs < 0 || seg.EndTimeMs < 0 {
			return nil, fmt.Errorf("%w: segment %d has a negative timestamp", models.ErrInvalidTranscript, i)
		}
		if seg.EndTimeMs < seg.StartTimeMs {
			return nil, fmt.Errorf("%w: segment %d ends (%dms) before it starts (%dms)",
				models.ErrInvalidTranscript, i, seg.EndTimeMs, seg.StartTimeMs)
		}
		if i > 0 && seg.StartTimeMs < raw[i-1].StartTimeMs {
			return nil, fmt.Errorf("%w: segment %d starts (%dms) before segment %d (%dms)",
				models.ErrInvalidTranscript, i, seg.StartTimeMs, i-1, raw[i-1].StartTimeMs)
		}
		if seg.Confidence != nil && (*seg.Confidence < 0 || *seg.Confidence > 1) {
			return nil, fmt.Errorf("%w: segment %d confidence %v is outside [0, 1]",
				models.ErrInvalidTranscript, i, *seg.Confidence)
		}

		seg.Speaker = models.Speaker(strings.ToLower(strings.TrimSpace(string(seg.Speaker))))
		seg.Text = strings.Join(strings.Fields(seg.Text), " ")
		if seg.Confidence != nil {
			c := *seg.Confidence
			seg.Confidence = &c
		}
		if seg.Speaker.Known() {
			recognized = true
		}

		minStart = min(minStart, seg.StartTimeMs)
		maxEnd = max(maxEnd, seg.EndTimeMs)
		segments[i] = seg
	}

	if !recognized {
		return nil, fmt.Errorf("%w: no segment has a recognized speaker (%s or %s)",
			models.ErrInvalidTranscript, models.SpeakerTrainee, models.SpeakerAgent)
	}

	n := &Normalized{
		Segments:        segments,
		TotalDurationMs: max(0, maxEnd-minStart),
	}
	n.CallDurationMs = n.TotalDurationMs
	if ms := callDurationSec * 1000; ms > 0 && ms < math.MaxInt64 {
		n.CallDurationMs = int64(ms)
	}

	return n, nil
}
