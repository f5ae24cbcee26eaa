package types

// KeywordTier represents the weight bucket of a detection keyword
type KeywordTier string

const (
	TierHigh       KeywordTier = "HIGH"
	TierMedium     KeywordTier = "MEDIUM"
	TierContextual KeywordTier = "CONTEXTUAL"
)

// Weight returns the score contribution of a single keyword hit at this tier
func (t KeywordTier) Weight() int {
	switch t {
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	case TierContextual:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether t is a stronger signal than other.
// HIGH > MEDIUM > CONTEXTUAL.
func (t KeywordTier) Outranks(other KeywordTier) bool {
	return t.Weight() > other.Weight()
}

// String returns the string representation of the keyword tier
func (t KeywordTier) String() string {
	return string(t)
}

// RiskLevel is the coarse conversation-level classification produced by
// pattern analysis.
type RiskLevel string

const (
	RiskHigh     RiskLevel = "HIGH"
	RiskModerate RiskLevel = "MODERATE"
	RiskLow      RiskLevel = "LOW"
)

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}
