// Package scenario computes the KPIs that depend on scenario content: which
// required phrases the trainee said, which objections were answered, and
// whether the call reached its goal.
package scenario

import (
	"fmt"
	"math"
	"strings"

	"github.com/repcoach/callscore/internal/metrics"
	"github.com/repcoach/callscore/internal/models"
)

// Params are the rubric parameters the calculator needs. Weights are not part
// of it: how much a signal matters is decided by the aggregator alone.
type Params struct {
	RequiredPhrases []string
	ClosingPhrases  []string
	ObjectionTypes  []string
	ObjectionCues   map[string][]string
	ResponseWindow  int
}

// ParamsFromRubric collects the criterion parameters of r, regardless of weight.
func ParamsFromRubric(r *models.Rubric) Params {
	p := Params{ResponseWindow: models.DefaultResponseWindow}

	if c, ok := r.Lookup(models.CriterionRequiredPhrases); ok {
		if rp, ok := c.Params.(models.RequiredPhrasesParams); ok {
			p.RequiredPhrases = rp.Phrases
		}
	}
	if c, ok := r.Lookup(models.CriterionGoalAchievement); ok {
		if gp, ok := c.Params.(models.GoalAchievementParams); ok {
			p.ClosingPhrases = gp.ClosingPhrases
		}
	}
	if c, ok := r.Lookup(models.CriterionObjectionsHandled); ok {
		op, _ := c.Params.(models.ObjectionsHandledParams)
		p.ObjectionTypes = op.ObjectionTypes
		p.ObjectionCues = op.Cues
		if op.ResponseWindow > 0 {
			p.ResponseWindow = op.ResponseWindow
		}
	}

	return p
}

// ComputeScenario evaluates the scenario-dependent signals of a normalized
// transcript. persona may be nil.
func ComputeScenario(segments []models.TranscriptSegment, persona *models.Persona, p Params) models.ScenarioKPIs {
	spoken := traineeText(segments)

	k := models.ScenarioKPIs{
		RequiredPhrasesMentioned: MentionedPhrases(spoken, p.RequiredPhrases),
		ObjectionsRaised:         []string{},
		ObjectionsHandled:        []string{},
	}

	window := p.ResponseWindow
	if window <= 0 {
		window = models.DefaultResponseWindow
	}

	for _, objType := range Distinct(p.ObjectionTypes) {
		raised, handled := objectionOutcome(segments, cuesFor(objType, p.ObjectionCues), window)
		if raised {
			k.ObjectionsRaised = append(k.ObjectionsRaised, objType)
		}
		if handled {
			k.ObjectionsHandled = append(k.ObjectionsHandled, objType)
		}
	}

	k.GoalAchieved, k.GoalEvidence = goalAchieved(segments, spoken, persona, p.ClosingPhrases)
	return k
}

// MentionedPhrases returns the phrases found in text, case-insensitively, in
// declared order with duplicates collapsed.
func MentionedPhrases(text string, phrases []string) []string {
	found := []string{}
	for _, phrase := range Distinct(phrases) {
		if metrics.ContainsPhrase(text, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

// objectionOutcome scans agent turns for a cue. A raised objection is handled
// when one of the next window trainee turns is a substantive answer.
func objectionOutcome(segments []models.TranscriptSegment, cues []string, window int) (raised, handled bool) {
	for i, seg := range segments {
		if seg.Speaker != models.SpeakerAgent || !matchesAny(metrics.Words(seg.Text), cues) {
			continue
		}
		raised = true

		traineeTurns := 0
		for _, next := range segments[i+1:] {
			if !next.IsTrainee() {
				continue
			}
			traineeTurns++
			if traineeTurns > window {
				break
			}
			if len(metrics.Words(next.Text)) >= minResponseWords {
				return true, true
			}
		}
	}
	return raised, false
}

// cuesFor resolves the cue phrases of an objection type. Rubric-supplied cues
// are added to the built-in ones; an unknown type falls back to its own name.
func cuesFor(objType string, custom map[string][]string) []string {
	key := metrics.Fold(strings.TrimSpace(objType))
	cues := append([]string{}, objectionCues[key]...)
	for k, extra := range custom {
		if metrics.Fold(k) == key {
			cues = append(cues, extra...)
		}
	}
	if len(cues) == 0 {
		cues = []string{strings.NewReplacer("_", " ", "-", " ").Replace(key)}
	}
	return cues
}

// goalAchieved is a heuristic placeholder: a closing phrase said by the
// trainee, or a persona objective referenced affirmatively near the end.
func goalAchieved(segments []models.TranscriptSegment, spoken string, persona *models.Persona, closing []string) (bool, string) {
	for _, phrase := range closing {
		if metrics.ContainsPhrase(spoken, phrase) {
			return true, fmt.Sprintf("closing phrase %q", phrase)
		}
	}

	if persona == nil || len(persona.Objectives) == 0 || len(segments) == 0 {
		return false, ""
	}

	tail := int(math.Ceil(tailFraction * float64(len(segments))))
	tail = max(1, tail)

	for _, seg := range segments[len(segments)-tail:] {
		words := metrics.Words(seg.Text)
		if !matchesAny(words, affirmativeCues) {
			continue
		}
		for _, objective := range persona.Objectives {
			if referencesObjective(words, objective) {
				return true, fmt.Sprintf("objective %q affirmed", objective)
			}
		}
	}
	return false, ""
}

// referencesObjective reports whether at least half of the significant words
// of objective appear in words.
func referencesObjective(words []string, objective string) bool {
	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}

	significant, matched := 0, 0
	for _, w := range metrics.Words(objective) {
		if len([]rune(w)) < 4 || stopwords[w] {
			continue
		}
		significant++
		if present[w] {
			matched++
		}
	}
	return significant > 0 && matched*2 >= significant
}

func matchesAny(words []string, phrases []string) bool {
	for _, p := range phrases {
		if metrics.HasWords(words, p) {
			return true
		}
	}
	return false
}

func traineeText(segments []models.TranscriptSegment) string {
	var parts []string
	for _, seg := range segments {
		if seg.IsTrainee() {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Distinct drops case-insensitive duplicates and blanks, keeping first occurrences.
func Distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := metrics.Fold(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
