package model

import (
	"strings"
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// DefaultMaxConcurrentCases is the caseload cap applied to newly
// registered responders.
const DefaultMaxConcurrentCases = 3

// Responder is a vetted human who can be dispatched to incidents.
// Dispatch is permitted only while IsActive, IsAvailable and
// TrainingCompleted all hold and CurrentCaseCount is below
// MaxConcurrentCases.
type Responder struct {
	ID                 types.ResponderID
	SubjectID          string
	TrainingCompleted  bool
	IsActive           bool
	IsAvailable        bool
	Specializations    []types.CrisisType
	Languages          []string
	Region             string
	City               string
	MaxConcurrentCases int
	CurrentCaseCount   int
	TotalCasesHandled  int
	AverageRating      float64 // 0 = never rated
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Specializes reports whether the responder covers the given crisis type
func (r *Responder) Specializes(t types.CrisisType) bool {
	for _, s := range r.Specializations {
		if s == t {
			return true
		}
	}
	return false
}

// Speaks reports whether the responder lists the given language
func (r *Responder) Speaks(lang string) bool {
	for _, l := range r.Languages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

// Dispatchable reports whether the responder can take one more case
func (r *Responder) Dispatchable() bool {
	return r.IsActive && r.IsAvailable && r.TrainingCompleted &&
		r.CurrentCaseCount < r.MaxConcurrentCases
}

// MatchesLocation applies the region/city narrowing used by dispatch:
// the responder's region contains the requested region, or its city
// equals the requested city. An empty location matches everyone.
func (r *Responder) MatchesLocation(city, region string) bool {
	if city == "" && region == "" {
		return true
	}
	if region != "" && strings.Contains(strings.ToLower(r.Region), strings.ToLower(region)) {
		return true
	}
	if city != "" && strings.EqualFold(r.City, city) {
		return true
	}
	return false
}
