package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Attempt is one completed simulated call together with the scenario data
// needed to score it.
type Attempt struct {
	ID         string              `json:"id" yaml:"id"`
	Transcript []TranscriptSegment `json:"transcript" yaml:"transcript"`
	// CallDurationSec is the platform-reported duration. Zero means unknown.
	CallDurationSec float64  `json:"call_duration_sec,omitempty" yaml:"call_duration_sec,omitempty"`
	Persona         *Persona `json:"persona,omitempty" yaml:"persona,omitempty"`
	Rubric          *Rubric  `json:"rubric,omitempty" yaml:"rubric,omitempty"`
}

// LoadAttempt loads an attempt from a YAML or JSON file. When the file has no
// id, the file name without extension is used.
func LoadAttempt(path string) (*Attempt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a Attempt
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing attempt %s: %w", path, err)
	}

	if a.ID == "" {
		a.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &a, nil
}

// LoadRubric loads a rubric from a YAML or JSON file.
func LoadRubric(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rubric %s: %w", path, err)
	}
	return &r, nil
}

// LoadPersona loads a persona from a YAML or JSON file.
func LoadPersona(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing persona %s: %w", path, err)
	}
	return &p, nil
}
