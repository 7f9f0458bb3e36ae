package models

// Speaker identifies who produced a transcript segment.
type Speaker string

const (
	SpeakerTrainee Speaker = "trainee"
	SpeakerAgent   Speaker = "agent"
)

// Known reports whether s is one of the recognized speaker labels.
func (s Speaker) Known() bool {
	return s == SpeakerTrainee || s == SpeakerAgent
}

// TranscriptSegment is one utterance of a finished call.
type TranscriptSegment struct {
	Speaker     Speaker  `json:"speaker" yaml:"speaker"`
	Text        string   `json:"text" yaml:"text"`
	StartTimeMs int64    `json:"start_time_ms" yaml:"start_time_ms"`
	EndTimeMs   int64    `json:"end_time_ms" yaml:"end_time_ms"`
	Confidence  *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// DurationMs is the length of the segment. Zero-length segments are allowed.
func (s TranscriptSegment) DurationMs() int64 {
	if s.EndTimeMs < s.StartTimeMs {
		return 0
	}
	return s.EndTimeMs - s.StartTimeMs
}

// IsTrainee reports whether the segment was spoken by the trainee.
func (s TranscriptSegment) IsTrainee() bool {
	return s.Speaker == SpeakerTrainee
}
