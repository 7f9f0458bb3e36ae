package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/repcoach/callscore/internal/models"
)

// Answers holds the raw form values collected by the rubric wizard. A blank
// weight leaves the criterion out of the rubric.
type Answers struct {
	GoalWeight       string
	ClosingPhrases   string
	PhrasesWeight    string
	Phrases          string
	QuestionsWeight  string
	MinimumQuestions string
	ObjectionsWeight string
	ObjectionTypes   string
	QualityWeight    string
}

// RunRubricWizard runs an interactive huh form that walks through every
// criterion kind and returns the validated rubric.
func RunRubricWizard(in io.Reader, out io.Writer) (*models.Rubric, error) {
	a := Answers{MinimumQuestions: "2"}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Goal achievement weight").
				Description("Blank to skip. Did the call reach its goal?").
				Placeholder("2").
				Value(&a.GoalWeight).
				Validate(validateWeight),
			huh.NewInput().
				Title("Closing phrases").
				Description("Comma-separated phrases that count as reaching the goal").
				Placeholder("book a demo, send the contract").
				Value(&a.ClosingPhrases),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Required phrases weight").
				Description("Blank to skip").
				Placeholder("1").
				Value(&a.PhrasesWeight).
				Validate(validateWeight),
			huh.NewInput().
				Title("Required phrases").
				Description("Comma-separated phrases the trainee must say").
				Placeholder("pricing, roi, next steps").
				Value(&a.Phrases),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Open questions weight").
				Description("Blank to skip").
				Placeholder("1").
				Value(&a.QuestionsWeight).
				Validate(validateWeight),
			huh.NewInput().
				Title("Minimum questions").
				Description("How many questions the trainee should ask").
				Value(&a.MinimumQuestions).
				Validate(validateCount),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Objections handled weight").
				Description("Blank to skip").
				Placeholder("1").
				Value(&a.ObjectionsWeight).
				Validate(validateWeight),
			huh.NewInput().
				Title("Objection types").
				Description("Comma-separated, e.g. price, timing, competitor, authority").
				Placeholder("price, timing").
				Value(&a.ObjectionTypes),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Conversation quality weight").
				Description("Blank to skip. Fillers, interruptions, pace and tone").
				Placeholder("1").
				Value(&a.QualityWeight).
				Validate(validateWeight),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return BuildRubric(a)
}

// BuildRubric turns wizard answers into a validated rubric.
func BuildRubric(a Answers) (*models.Rubric, error) {
	raw := map[string]any{}

	add := func(kind models.CriterionKind, weight string, params map[string]any) error {
		w, ok, err := parseWeight(weight)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", models.ErrInvalidRubric, kind, err)
		}
		if !ok {
			return nil
		}
		params["weight"] = w
		raw[string(kind)] = params
		return nil
	}

	minimum := 0
	if s := strings.TrimSpace(a.MinimumQuestions); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: minimum questions must be a non-negative whole number", models.ErrInvalidRubric)
		}
		minimum = n
	}

	steps := []struct {
		kind   models.CriterionKind
		weight string
		params map[string]any
	}{
		{models.CriterionGoalAchievement, a.GoalWeight, map[string]any{"closing_phrases": toAny(splitAndTrim(a.ClosingPhrases))}},
		{models.CriterionRequiredPhrases, a.PhrasesWeight, map[string]any{"phrases": toAny(splitAndTrim(a.Phrases))}},
		{models.CriterionOpenQuestions, a.QuestionsWeight, map[string]any{"minimum_count": minimum}},
		{models.CriterionObjectionsHandled, a.ObjectionsWeight, map[string]any{"objection_types": toAny(splitAndTrim(a.ObjectionTypes))}},
		{models.CriterionConversationQuality, a.QualityWeight, map[string]any{}},
	}
	for _, s := range steps {
		if err := add(s.kind, s.weight, s.params); err != nil {
			return nil, err
		}
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: give at least one criterion a weight", models.ErrInvalidRubric)
	}

	r, err := models.ParseRubric(raw)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// RenderYAML renders a rubric in its file form.
func RenderYAML(r *models.Rubric) (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to render rubric: %w", err)
	}
	return string(data), nil
}

func validateWeight(s string) error {
	_, _, err := parseWeight(s)
	return err
}

func validateCount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative whole number")
	}
	return nil
}

// parseWeight reports ok=false for a blank weight.
func parseWeight(s string) (w float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	w, err = strconv.ParseFloat(s, 64)
	if err != nil || w < 0 {
		return 0, false, fmt.Errorf("weight must be a non-negative number, got %q", s)
	}
	return w, true, nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
