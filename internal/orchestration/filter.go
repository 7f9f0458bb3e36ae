package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/repcoach/callscore/internal/models"
)

// FilterAttempts returns the subset of attempts whose ID or persona role
// matches at least one of the given glob patterns. An empty patterns slice
// returns all attempts unchanged.
func FilterAttempts(attempts []*models.Attempt, patterns []string) ([]*models.Attempt, error) {
	if len(patterns) == 0 {
		return attempts, nil
	}

	var matched []*models.Attempt
	for _, a := range attempts {
		ok, err := matchesAny(a, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// FilterOutcomes applies the same patterns to items that never became
// attempts, such as files that failed to load. Only the attempt ID is matched.
func FilterOutcomes(items []models.ItemOutcome, patterns []string) ([]models.ItemOutcome, error) {
	if len(patterns) == 0 {
		return items, nil
	}

	var matched []models.ItemOutcome
	for _, item := range items {
		ok, err := matchesAny(&models.Attempt{ID: item.AttemptID}, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// matchesAny reports whether an attempt's ID or persona role matches any pattern.
func matchesAny(a *models.Attempt, patterns []string) (bool, error) {
	for _, p := range patterns {
		idMatch, err := filepath.Match(p, a.ID)
		if err != nil {
			return false, fmt.Errorf("invalid attempt filter pattern %q: %w", p, err)
		}
		if idMatch {
			return true, nil
		}
		if a.Persona == nil || a.Persona.Role == "" {
			continue
		}
		roleMatch, err := filepath.Match(p, a.Persona.Role)
		if err != nil {
			return false, fmt.Errorf("invalid attempt filter pattern %q: %w", p, err)
		}
		if roleMatch {
			return true, nil
		}
	}
	return false, nil
}
