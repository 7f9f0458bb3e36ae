package models

import "errors"

// ErrInvalidTranscript is wrapped by every failure caused by empty, malformed or
// temporally inconsistent transcript data. These are "bad call" errors.
var ErrInvalidTranscript = errors.New("invalid transcript")

// ErrInvalidRubric is wrapped by every failure caused by rubric configuration:
// unknown criteria, missing parameters, bad weights or a zero total weight.
// These are "bad scenario setup" errors.
var ErrInvalidRubric = errors.New("invalid rubric")

// ErrorKind classifies err for reporting. It returns "invalid_transcript",
// "invalid_rubric", or "error" for anything else.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTranscript):
		return "invalid_transcript"
	case errors.Is(err, ErrInvalidRubric):
		return "invalid_rubric"
	default:
		return "error"
	}
}
