package usecase

import "github.com/haven-lab/lifeline/pkg/domain/types"

// nextStepsFor builds the guidance shown to the subject right after
// intake. Urgency picks the lead-in; crisis type adds one targeted
// step.
func nextStepsFor(crisisType types.CrisisType, urgency types.UrgencyLevel) []string {
	var steps []string

	switch urgency {
	case types.UrgencyImmediate:
		steps = append(steps,
			"If you are in immediate danger, call your local emergency number now",
			"Stay on this channel, a crisis line is listed below",
		)
	case types.UrgencyHigh:
		steps = append(steps,
			"A trained responder is being connected to you",
			"Review the crisis resources listed below",
		)
	default:
		steps = append(steps,
			"Review the support resources listed below",
			"A responder will reach out if one is available",
		)
	}

	if step, ok := crisisSteps[crisisType]; ok {
		steps = append(steps, step)
	}
	steps = append(steps, "We will follow up with you to check how you are doing")

	return steps
}

var crisisSteps = map[types.CrisisType]string{
	types.CrisisSuicideRisk:      "Remove access to anything you could use to hurt yourself",
	types.CrisisSelfHarm:         "Try a grounding exercise while you wait: name five things you can see",
	types.CrisisSubstanceAbuse:   "If you suspect an overdose, call emergency services immediately",
	types.CrisisDomesticViolence: "If it is safe, move to a room with an exit and keep your phone with you",
	types.CrisisMedicalEmergency: "Call your local emergency number before anything else",
	types.CrisisPanicAttack:      "Breathe in for four counts, hold for four, out for four",
	types.CrisisSevereDistress:   "You are not alone, a listener is available around the clock",
	types.CrisisBurnout:          "Consider stepping away from your current obligations for today",
}
