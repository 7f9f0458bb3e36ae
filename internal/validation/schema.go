// Package validation checks attempt, rubric and persona files against their
// JSON Schemas before anything tries to score them.
package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// DocumentKind identifies which schema a file is checked against.
type DocumentKind string

const (
	KindAttempt DocumentKind = "attempt"
	KindRubric  DocumentKind = "rubric"
	KindPersona DocumentKind = "persona"
)

var (
	attemptSchema *jsonschema.Schema
	rubricSchema  *jsonschema.Schema
	personaSchema *jsonschema.Schema
)

func init() {
	resources := map[string]string{
		"attempt.schema.json": schemas.AttemptSchemaJSON,
		"rubric.schema.json":  schemas.RubricSchemaJSON,
		"persona.schema.json": schemas.PersonaSchemaJSON,
	}

	compiler := jsonschema.NewCompiler()
	for name, raw := range resources {
		var schemaDoc any
		if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
			panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
		}
		if err := compiler.AddResource(name, schemaDoc); err != nil {
			panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
		}
	}

	attemptSchema = mustCompile(compiler, "attempt.schema.json")
	rubricSchema = mustCompile(compiler, "rubric.schema.json")
	personaSchema = mustCompile(compiler, "persona.schema.json")
}

func mustCompile(compiler *jsonschema.Compiler, name string) *jsonschema.Schema {
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateFile detects the kind of the YAML or JSON file at path and validates
// it against the matching schema.
func ValidateFile(path string) (DocumentKind, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	kind, err := DetectKind(data)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}

	return kind, ValidateBytes(kind, data), nil
}

// DetectKind guesses the document kind from its top-level keys: a transcript
// makes an attempt, criterion names make a rubric, anything else is a persona.
func DetectKind(data []byte) (DocumentKind, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("YAML parse error: %w", err)
	}

	if _, ok := doc["transcript"]; ok {
		return KindAttempt, nil
	}
	for key := range doc {
		if slices.Contains(models.CriterionKinds, models.CriterionKind(key)) {
			return KindRubric, nil
		}
	}
	return KindPersona, nil
}

// ValidateBytes validates raw YAML or JSON bytes against the schema of kind.
func ValidateBytes(kind DocumentKind, data []byte) []string {
	switch kind {
	case KindAttempt:
		return ValidateAttemptBytes(data)
	case KindRubric:
		return ValidateRubricBytes(data)
	case KindPersona:
		return ValidatePersonaBytes(data)
	default:
		return []string{fmt.Sprintf("unknown document kind %q", kind)}
	}
}

// ValidateAttemptBytes validates raw YAML bytes against the attempt schema.
func ValidateAttemptBytes(data []byte) []string {
	return validateYAMLBytes(attemptSchema, data)
}

// ValidateRubricBytes validates raw YAML bytes against the rubric schema.
func ValidateRubricBytes(data []byte) []string {
	return validateYAMLBytes(rubricSchema, data)
}

// ValidatePersonaBytes validates raw YAML bytes against the persona schema.
func ValidatePersonaBytes(data []byte) []string {
	return validateYAMLBytes(personaSchema, data)
}

// ProblemsError turns schema problems into an error wrapping the matching
// sentinel: rubric documents and problems under /rubric are rubric errors,
// everything else is a transcript error. It returns nil for no problems.
func ProblemsError(kind DocumentKind, source string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}

	sentinel := models.ErrInvalidTranscript
	if kind == KindRubric {
		sentinel = models.ErrInvalidRubric
	} else {
		for _, p := range problems {
			if strings.HasPrefix(p, "/rubric") {
				sentinel = models.ErrInvalidRubric
				break
			}
		}
	}

	return fmt.Errorf("%w: %s has %s: %s", sentinel, source, Summary(len(problems)), strings.Join(problems, "; "))
}

// Summary formats a count of problems in English, e.g. "1,204 problems".
func Summary(n int) string {
	if n == 1 {
		return defaultPrinter.Sprintf("%d problem", n)
	}
	return defaultPrinter.Sprintf("%d problems", n)
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	// YAML is a superset of JSON, so this also reads JSON documents
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}

	return validateAgainstSchema(schema, convertToJSONCompatible(yamlDoc))
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible rewrites YAML-decoded values into the types the
// schema validator understands. yaml.v3 may produce map[any]any for
// non-string keys.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
