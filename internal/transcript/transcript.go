package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/repcoach/callscore/internal/models"
)

// sanitize replaces characters that are unsafe in filenames.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func sanitizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = unsafeChars.ReplaceAllString(s, "")
	if s == "" {
		s = "unnamed"
	}
	return s
}

// Filename returns the result filename for an attempt.
func Filename(attemptID string, ts time.Time) string {
	return fmt.Sprintf("%s-%s.json", sanitizeName(attemptID), ts.Format("20060102-150405"))
}

// AttemptRecord is the per-attempt JSON file written to the results directory.
type AttemptRecord struct {
	AttemptID string                `json:"attempt_id"`
	ScoredAt  time.Time             `json:"scored_at"`
	Status    models.Status         `json:"status"`
	Result    *models.ScoringResult `json:"result,omitempty"`
	ErrorKind string                `json:"error_kind,omitempty"`
	ErrorMsg  string                `json:"error_msg,omitempty"`
}

// BuildAttemptRecord constructs an AttemptRecord from a batch item.
func BuildAttemptRecord(item models.ItemOutcome, scoredAt time.Time) *AttemptRecord {
	return &AttemptRecord{
		AttemptID: item.AttemptID,
		ScoredAt:  scoredAt,
		Status:    item.Status,
		Result:    item.Result,
		ErrorKind: item.ErrorKind,
		ErrorMsg:  item.Error,
	}
}

// Write serializes an AttemptRecord and writes it to dir.
func Write(dir string, rec *AttemptRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	name := Filename(rec.AttemptID, rec.ScoredAt)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal attempt record: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write attempt record: %w", err)
	}

	return path, nil
}
