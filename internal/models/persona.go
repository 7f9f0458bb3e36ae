package models

// Persona describes the simulated counterpart of a scenario.
type Persona struct {
	Role        string   `json:"role" yaml:"role"`
	Objectives  []string `json:"objectives,omitempty" yaml:"objectives,omitempty"`
	PainPoints  []string `json:"pain_points,omitempty" yaml:"pain_points,omitempty"`
	Personality []string `json:"personality,omitempty" yaml:"personality,omitempty"`
}
