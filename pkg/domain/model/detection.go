package model

import (
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// Detection is the result of scanning one piece of free text against
// the keyword taxonomy.
type Detection struct {
	Detected        bool
	CrisisType      types.CrisisType
	MatchedKeywords []string
	Confidence      float64 // [0, 1]
	Priority        types.KeywordTier
	SuggestedAction string
	ShowResources   bool
}

// ReferenceCheck reports whether text mentions emergency numbers or
// helpline services.
type ReferenceCheck struct {
	HasEmergencyNumbers   bool
	HasHelplineReferences bool
}

// Message is one entry of a conversation history
type Message struct {
	Content   string
	Timestamp time.Time
}

// ConversationInsight is the result of analyzing a conversation window
type ConversationInsight struct {
	Escalating     bool
	RiskLevel      types.RiskLevel
	Recommendation string
}
