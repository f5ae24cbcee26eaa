package detect

import (
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// Category is one entry of the keyword taxonomy: a crisis type with its
// three keyword tiers. HIGH and MEDIUM phrases match on word
// boundaries; CONTEXTUAL keywords match as plain substrings.
type Category struct {
	Type       types.CrisisType
	High       []string
	Medium     []string
	Contextual []string
}

// DefaultTaxonomy returns the built-in keyword table. Declaration order
// matters: when two categories accumulate the same score, the earlier
// one wins. Phrases deliberately overlap within a category ("kill
// myself" is contained in "want to kill myself") so that stronger
// statements accumulate proportionally higher scores.
func DefaultTaxonomy() []Category {
	return []Category{
		{
			Type: types.CrisisSuicideRisk,
			High: []string{
				"suicide", "kill myself", "want to kill myself", "end my life",
				"want to die", "better off dead", "no reason to live", "end it all",
			},
			Medium: []string{
				"kill", "hopeless", "can't go on", "worthless", "no way out",
			},
			Contextual: []string{
				"myself", "goodbye", "tired of living", "what's the point",
			},
		},
		{
			Type: types.CrisisSelfHarm,
			High: []string{
				"cut myself", "hurt myself", "self harm", "burned myself",
			},
			Medium: []string{
				"cutting", "deserve pain", "punish myself",
			},
			Contextual: []string{
				"razor", "scars", "bleeding",
			},
		},
		{
			Type: types.CrisisSubstanceAbuse,
			High: []string{
				"overdose", "can't stop drinking", "can't stop using", "relapsed",
			},
			Medium: []string{
				"blackout drunk", "using again", "withdrawal",
			},
			Contextual: []string{
				"pills", "drunk", "high again",
			},
		},
		{
			Type: types.CrisisDomesticViolence,
			High: []string{
				"hits me", "beats me", "afraid to go home", "threatened to kill",
			},
			Medium: []string{
				"abusive", "threatens me", "controls everything", "not safe at home",
			},
			Contextual: []string{
				"bruises", "scared of him", "scared of her", "locked in",
			},
		},
		{
			Type: types.CrisisMedicalEmergency,
			High: []string{
				"chest pain", "can't breathe", "heart attack", "stroke",
			},
			Medium: []string{
				"severe pain", "bleeding heavily", "passed out",
			},
			Contextual: []string{
				"dizzy", "numb", "fainted",
			},
		},
		{
			Type: types.CrisisPanicAttack,
			High: []string{
				"panic attack", "can't calm down",
			},
			Medium: []string{
				"heart racing", "hyperventilating", "shaking uncontrollably",
			},
			Contextual: []string{
				"anxious", "trembling", "sweating",
			},
		},
		{
			Type: types.CrisisSevereDistress,
			High: []string{
				"can't take it anymore", "falling apart", "losing my mind",
			},
			Medium: []string{
				"breaking down", "completely alone", "nobody cares",
			},
			Contextual: []string{
				"crying", "overwhelmed", "desperate",
			},
		},
		{
			Type: types.CrisisBurnout,
			High: []string{
				"completely burned out", "can't work anymore",
			},
			Medium: []string{
				"exhausted all the time", "dread every day",
			},
			Contextual: []string{
				"burnout", "drained", "no energy",
			},
		},
	}
}

// suggestedActions maps (crisis type, strongest tier hit) to the action
// message attached to a detection. Missing entries fall back to
// genericAction.
var suggestedActions = map[types.CrisisType]map[types.KeywordTier]string{
	types.CrisisSuicideRisk: {
		types.TierHigh:   "Contact a crisis line immediately. You do not have to face this alone.",
		types.TierMedium: "Please talk to someone you trust or reach a helpline today.",
	},
	types.CrisisSelfHarm: {
		types.TierHigh:   "Reach out to a crisis counselor now. Support is available around the clock.",
		types.TierMedium: "Consider talking to a counselor about what you are going through.",
	},
	types.CrisisMedicalEmergency: {
		types.TierHigh:   "Call emergency services now if you are in danger.",
		types.TierMedium: "Seek medical attention as soon as possible.",
	},
	types.CrisisDomesticViolence: {
		types.TierHigh:   "If you are in immediate danger, call emergency services. A domestic violence hotline can help you plan safely.",
		types.TierMedium: "A domestic violence advocate can talk through your options confidentially.",
	},
	types.CrisisPanicAttack: {
		types.TierHigh: "Try slow breathing: in for four counts, out for six. A crisis line can stay with you until it passes.",
	},
	types.CrisisSubstanceAbuse: {
		types.TierHigh: "A substance-use helpline can connect you with treatment options right now.",
	},
}

const genericAction = "Consider connecting with one of the support resources below, or reach out to someone you trust."

// emergencyNumbers is the fixed list checked by DetectReferences.
// Matching is whole-word to avoid triggering on arbitrary digits.
var emergencyNumbers = []string{"911", "112", "999", "988"}

// helplineKeywords is the fixed substring list checked by DetectReferences
var helplineKeywords = []string{"helpline", "hotline", "crisis line", "lifeline", "suicide prevention"}
