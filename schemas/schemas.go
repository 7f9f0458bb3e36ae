// Package schemas embeds the JSON Schemas of the files callscore reads.
package schemas

import _ "embed"

// AttemptSchemaJSON is the schema of an attempt file.
//
//go:embed attempt.schema.json
var AttemptSchemaJSON string

// RubricSchemaJSON is the schema of a rubric mapping.
//
//go:embed rubric.schema.json
var RubricSchemaJSON string

// PersonaSchemaJSON is the schema of a persona.
//
//go:embed persona.schema.json
var PersonaSchemaJSON string
