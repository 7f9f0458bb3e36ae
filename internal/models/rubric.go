package models

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// CriterionKind names a rubric criterion. The set is closed: an unknown name
// is rejected when the rubric is parsed.
type CriterionKind string

const (
	CriterionGoalAchievement     CriterionKind = "goal_achievement"
	CriterionRequiredPhrases     CriterionKind = "required_phrases"
	CriterionOpenQuestions       CriterionKind = "open_questions"
	CriterionObjectionsHandled   CriterionKind = "objections_handled"
	CriterionConversationQuality CriterionKind = "conversation_quality"
)

// CriterionKinds lists every criterion kind in canonical order. Parsed rubrics
// keep their criteria in this order.
var CriterionKinds = []CriterionKind{
	CriterionGoalAchievement,
	CriterionRequiredPhrases,
	CriterionOpenQuestions,
	CriterionObjectionsHandled,
	CriterionConversationQuality,
}

func kindRank(k CriterionKind) int {
	for i, known := range CriterionKinds {
		if known == k {
			return i
		}
	}
	return len(CriterionKinds)
}

// Defaults for optional criterion parameters.
const (
	DefaultResponseWindow = 3
	DefaultPaceMinWPM     = 120.0
	DefaultPaceMaxWPM     = 160.0
)

// CriterionParams is implemented by the typed parameter struct of each kind.
type CriterionParams interface {
	Kind() CriterionKind
	wire() map[string]any
}

// GoalAchievementParams configures the goal_achievement criterion.
type GoalAchievementParams struct {
	// ClosingPhrases, when any is said by the trainee, count as the goal being reached.
	ClosingPhrases []string `mapstructure:"closing_phrases"`
}

func (GoalAchievementParams) Kind() CriterionKind { return CriterionGoalAchievement }

func (p GoalAchievementParams) wire() map[string]any {
	m := map[string]any{}
	if len(p.ClosingPhrases) > 0 {
		m["closing_phrases"] = p.ClosingPhrases
	}
	return m
}

// RequiredPhrasesParams configures the required_phrases criterion.
type RequiredPhrasesParams struct {
	Phrases []string `mapstructure:"phrases"`
}

func (RequiredPhrasesParams) Kind() CriterionKind { return CriterionRequiredPhrases }

func (p RequiredPhrasesParams) wire() map[string]any {
	phrases := p.Phrases
	if phrases == nil {
		phrases = []string{}
	}
	return map[string]any{"phrases": phrases}
}

// OpenQuestionsParams configures the open_questions criterion.
type OpenQuestionsParams struct {
	MinimumCount int `mapstructure:"minimum_count"`
}

func (OpenQuestionsParams) Kind() CriterionKind { return CriterionOpenQuestions }

func (p OpenQuestionsParams) wire() map[string]any {
	return map[string]any{"minimum_count": p.MinimumCount}
}

// ObjectionsHandledParams configures the objections_handled criterion.
type ObjectionsHandledParams struct {
	ObjectionTypes []string `mapstructure:"objection_types"`
	// Cues overrides or extends the built-in cue phrases per objection type.
	Cues map[string][]string `mapstructure:"cues"`
	// ResponseWindow is how many trainee turns after an objection may answer it.
	ResponseWindow int `mapstructure:"response_window"`
}

func (ObjectionsHandledParams) Kind() CriterionKind { return CriterionObjectionsHandled }

func (p ObjectionsHandledParams) wire() map[string]any {
	types := p.ObjectionTypes
	if types == nil {
		types = []string{}
	}
	m := map[string]any{"objection_types": types}
	if len(p.Cues) > 0 {
		m["cues"] = p.Cues
	}
	if p.ResponseWindow > 0 && p.ResponseWindow != DefaultResponseWindow {
		m["response_window"] = p.ResponseWindow
	}
	return m
}

// ConversationQualityParams configures the conversation_quality criterion.
type ConversationQualityParams struct {
	PaceMinWPM float64 `mapstructure:"pace_min_wpm"`
	PaceMaxWPM float64 `mapstructure:"pace_max_wpm"`
}

func (ConversationQualityParams) Kind() CriterionKind { return CriterionConversationQuality }

func (p ConversationQualityParams) wire() map[string]any {
	return map[string]any{
		"pace_min_wpm": p.PaceMinWPM,
		"pace_max_wpm": p.PaceMaxWPM,
	}
}

// Criterion is one weighted entry of a rubric. Params always holds the struct
// matching Kind.
type Criterion struct {
	Kind   CriterionKind
	Weight float64
	Params CriterionParams
}

// Rubric is the organization-authored scoring contract of a scenario.
type Rubric struct {
	Criteria []Criterion
}

// ParseRubric builds a Rubric from its wire form: a mapping of criterion name
// to a mapping holding "weight" and the criterion's parameters.
func ParseRubric(raw map[string]any) (*Rubric, error) {
	r := &Rubric{}

	for name, v := range raw {
		body, ok := v.(map[string]any)
		if !ok {
			if v != nil {
				return nil, fmt.Errorf("%w: criterion %q must be a mapping, got %T", ErrInvalidRubric, name, v)
			}
			body = map[string]any{}
		}

		c, err := parseCriterion(CriterionKind(name), body)
		if err != nil {
			return nil, err
		}
		r.Criteria = append(r.Criteria, c)
	}

	sort.Slice(r.Criteria, func(i, j int) bool {
		return kindRank(r.Criteria[i].Kind) < kindRank(r.Criteria[j].Kind)
	})

	return r, nil
}

func parseCriterion(kind CriterionKind, body map[string]any) (Criterion, error) {
	c := Criterion{Kind: kind}

	params := make(map[string]any, len(body))
	for k, v := range body {
		if k == "weight" {
			continue
		}
		params[k] = v
	}

	var weight struct {
		Weight *float64 `mapstructure:"weight"`
	}
	if err := mapstructure.Decode(map[string]any{"weight": body["weight"]}, &weight); err != nil {
		return c, fmt.Errorf("%w: criterion %q: weight: %v", ErrInvalidRubric, kind, err)
	}
	if weight.Weight == nil {
		return c, fmt.Errorf("%w: criterion %q is missing 'weight'", ErrInvalidRubric, kind)
	}
	c.Weight = *weight.Weight
	if math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) || c.Weight < 0 {
		return c, fmt.Errorf("%w: criterion %q has invalid weight %v", ErrInvalidRubric, kind, c.Weight)
	}

	switch kind {
	case CriterionGoalAchievement:
		var v GoalAchievementParams
		if err := decodeParams(kind, params, &v); err != nil {
			return c, err
		}
		c.Params = v
	case CriterionRequiredPhrases:
		var v struct {
			Phrases *[]string `mapstructure:"phrases"`
		}
		if err := decodeParams(kind, params, &v); err != nil {
			return c, err
		}
		if v.Phrases == nil {
			return c, fmt.Errorf("%w: criterion %q requires a 'phrases' list", ErrInvalidRubric, kind)
		}
		c.Params = RequiredPhrasesParams{Phrases: *v.Phrases}
	case CriterionOpenQuestions:
		var v struct {
			MinimumCount *int `mapstructure:"minimum_count"`
		}
		if err := decodeParams(kind, params, &v); err != nil {
			return c, err
		}
		if v.MinimumCount == nil {
			return c, fmt.Errorf("%w: criterion %q requires 'minimum_count'", ErrInvalidRubric, kind)
		}
		if *v.MinimumCount < 0 {
			return c, fmt.Errorf("%w: criterion %q: minimum_count must be >= 0, got %d", ErrInvalidRubric, kind, *v.MinimumCount)
		}
		c.Params = OpenQuestionsParams{MinimumCount: *v.MinimumCount}
	case CriterionObjectionsHandled:
		var v struct {
			ObjectionTypes *[]string           `mapstructure:"objection_types"`
			Cues           map[string][]string `mapstructure:"cues"`
			ResponseWindow int                 `mapstructure:"response_window"`
		}
		if err := decodeParams(kind, params, &v); err != nil {
			return c, err
		}
		if v.ObjectionTypes == nil {
			return c, fmt.Errorf("%w: criterion %q requires an 'objection_types' list", ErrInvalidRubric, kind)
		}
		if v.ResponseWindow < 0 {
			return c, fmt.Errorf("%w: criterion %q: response_window must be >= 0, got %d", ErrInvalidRubric, kind, v.ResponseWindow)
		}
		if v.ResponseWindow == 0 {
			v.ResponseWindow = DefaultResponseWindow
		}
		c.Params = ObjectionsHandledParams{
			ObjectionTypes: *v.ObjectionTypes,
			Cues:           v.Cues,
			ResponseWindow: v.ResponseWindow,
		}
	case CriterionConversationQuality:
		v := ConversationQualityParams{PaceMinWPM: DefaultPaceMinWPM, PaceMaxWPM: DefaultPaceMaxWPM}
		if err := decodeParams(kind, params, &v); err != nil {
			return c, err
		}
		if v.PaceMinWPM < 0 || v.PaceMaxWPM < v.PaceMinWPM {
			return c, fmt.Errorf("%w: criterion %q: pace band [%v, %v] is not valid", ErrInvalidRubric, kind, v.PaceMinWPM, v.PaceMaxWPM)
		}
		c.Params = v
	default:
		return c, fmt.Errorf("%w: unknown criterion %q", ErrInvalidRubric, kind)
	}

	return c, nil
}

func decodeParams(kind CriterionKind, params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncType(integralNumberHook),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: criterion %q: %v", ErrInvalidRubric, kind, err)
	}
	return nil
}

// integralNumberHook rejects fractional numbers bound for integer fields.
// JSON decodes every number as float64 and mapstructure would truncate it.
func integralNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() == reflect.Pointer {
		to = to.Elem()
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("expected a whole number, got %v", f)
	}
	return data, nil
}

// Lookup returns the criterion of the given kind, if the rubric declares it.
func (r *Rubric) Lookup(kind CriterionKind) (Criterion, bool) {
	if r == nil {
		return Criterion{}, false
	}
	for _, c := range r.Criteria {
		if c.Kind == kind {
			return c, true
		}
	}
	return Criterion{}, false
}

// Evaluated returns the criteria that take part in aggregation (weight > 0).
func (r *Rubric) Evaluated() []Criterion {
	if r == nil {
		return nil
	}
	var out []Criterion
	for _, c := range r.Criteria {
		if c.Weight > 0 {
			out = append(out, c)
		}
	}
	return out
}

// TotalWeight sums the weights of the evaluated criteria.
func (r *Rubric) TotalWeight() float64 {
	total := 0.0
	for _, c := range r.Evaluated() {
		total += c.Weight
	}
	return total
}

// Validate fails with ErrInvalidRubric when no criterion carries weight.
func (r *Rubric) Validate() error {
	if r == nil || len(r.Criteria) == 0 {
		return fmt.Errorf("%w: rubric declares no criteria", ErrInvalidRubric)
	}
	if r.TotalWeight() <= 0 {
		return fmt.Errorf("%w: total weight is zero", ErrInvalidRubric)
	}
	return nil
}

// Wire returns the rubric in its serialized mapping form.
func (r *Rubric) Wire() map[string]any {
	out := make(map[string]any)
	if r == nil {
		return out
	}
	for _, c := range r.Criteria {
		body := map[string]any{}
		if c.Params != nil {
			body = c.Params.wire()
		}
		body["weight"] = c.Weight
		out[string(c.Kind)] = body
	}
	return out
}

func (r Rubric) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Wire())
}

func (r *Rubric) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}
	parsed, err := ParseRubric(raw)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

func (r Rubric) MarshalYAML() (any, error) {
	return r.Wire(), nil
}

func (r *Rubric) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}
	parsed, err := ParseRubric(raw)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}
