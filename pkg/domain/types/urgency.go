package types

import (
	"fmt"
	"time"
)

// UrgencyLevel represents how quickly an incident requires a response.
// It is assigned once at incident creation and never changed afterwards.
type UrgencyLevel string

const (
	UrgencyImmediate UrgencyLevel = "IMMEDIATE"
	UrgencyHigh      UrgencyLevel = "HIGH"
	UrgencyModerate  UrgencyLevel = "MODERATE"
	UrgencyLow       UrgencyLevel = "LOW"
)

// AllUrgencyLevels returns all valid urgency levels
func AllUrgencyLevels() []UrgencyLevel {
	return []UrgencyLevel{
		UrgencyImmediate,
		UrgencyHigh,
		UrgencyModerate,
		UrgencyLow,
	}
}

// IsValid checks if the urgency level is valid
func (u UrgencyLevel) IsValid() bool {
	switch u {
	case UrgencyImmediate, UrgencyHigh, UrgencyModerate, UrgencyLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the urgency level
func (u UrgencyLevel) String() string {
	return string(u)
}

// ParseUrgencyLevel parses a string into an UrgencyLevel
func ParseUrgencyLevel(s string) (UrgencyLevel, error) {
	u := UrgencyLevel(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid urgency level: %s", s)
	}
	return u, nil
}

// FollowUpAfter returns how long after incident creation a follow-up
// check-in becomes due for this urgency level.
func (u UrgencyLevel) FollowUpAfter() time.Duration {
	switch u {
	case UrgencyImmediate:
		return time.Hour
	case UrgencyHigh:
		return 6 * time.Hour
	case UrgencyModerate:
		return 24 * time.Hour
	default:
		return 48 * time.Hour
	}
}

// defaultUrgency maps each crisis type to the urgency used when the
// caller supplies none and the detector cannot derive one.
var defaultUrgency = map[CrisisType]UrgencyLevel{
	CrisisSuicideRisk:      UrgencyImmediate,
	CrisisSelfHarm:         UrgencyHigh,
	CrisisMedicalEmergency: UrgencyImmediate,
	CrisisDomesticViolence: UrgencyHigh,
	CrisisSubstanceAbuse:   UrgencyModerate,
	CrisisPanicAttack:      UrgencyModerate,
	CrisisSevereDistress:   UrgencyModerate,
	CrisisBurnout:          UrgencyLow,
}

// DefaultUrgencyFor returns the static default urgency for a crisis type
func DefaultUrgencyFor(c CrisisType) UrgencyLevel {
	if u, ok := defaultUrgency[c]; ok {
		return u
	}
	return UrgencyModerate
}
