package types

import "fmt"

// CrisisType represents the classified category of a crisis
type CrisisType string

const (
	CrisisSuicideRisk      CrisisType = "SUICIDE_RISK"
	CrisisSelfHarm         CrisisType = "SELF_HARM"
	CrisisSubstanceAbuse   CrisisType = "SUBSTANCE_ABUSE"
	CrisisDomesticViolence CrisisType = "DOMESTIC_VIOLENCE"
	CrisisMedicalEmergency CrisisType = "MEDICAL_EMERGENCY"
	CrisisPanicAttack      CrisisType = "PANIC_ATTACK"
	CrisisSevereDistress   CrisisType = "SEVERE_DISTRESS"
	CrisisBurnout          CrisisType = "BURNOUT"
)

// AllCrisisTypes returns all valid crisis types
func AllCrisisTypes() []CrisisType {
	return []CrisisType{
		CrisisSuicideRisk,
		CrisisSelfHarm,
		CrisisSubstanceAbuse,
		CrisisDomesticViolence,
		CrisisMedicalEmergency,
		CrisisPanicAttack,
		CrisisSevereDistress,
		CrisisBurnout,
	}
}

// IsValid checks if the crisis type is valid
func (c CrisisType) IsValid() bool {
	switch c {
	case CrisisSuicideRisk,
		CrisisSelfHarm,
		CrisisSubstanceAbuse,
		CrisisDomesticViolence,
		CrisisMedicalEmergency,
		CrisisPanicAttack,
		CrisisSevereDistress,
		CrisisBurnout:
		return true
	default:
		return false
	}
}

// String returns the string representation of the crisis type
func (c CrisisType) String() string {
	return string(c)
}

// ParseCrisisType parses a string into a CrisisType
func ParseCrisisType(s string) (CrisisType, error) {
	t := CrisisType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid crisis type: %s", s)
	}
	return t, nil
}
