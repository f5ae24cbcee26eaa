package model

import (
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// Incident represents one tracked crisis episode opened for a subject.
// UrgencyLevel is assigned at creation and never mutated afterwards;
// Status follows the lifecycle state machine; ResponderID is populated
// only once a responder has been reserved for the incident.
type Incident struct {
	ID                types.IncidentID
	SubjectID         string
	CrisisType        types.CrisisType
	UrgencyLevel      types.UrgencyLevel
	Status            types.IncidentStatus
	Description       string
	Location          string // "city, region"
	ContactNumber     string
	PreferredLanguage string
	TriggerKeywords   []string
	ResponderID       types.ResponderID
	FollowUpDeadline  *time.Time
	FollowUpCompleted bool
	Resolution        string
	ResolvedAt        *time.Time
	ResolvedBy        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IncidentUpdate carries the mutable fields of an incident update
// request. Nil pointers mean "leave unchanged".
type IncidentUpdate struct {
	Status     *types.IncidentStatus
	Resolution *string
}

// IncidentLogEntry is an immutable audit record of one action taken
// against an incident.
type IncidentLogEntry struct {
	ID         types.LogEntryID
	IncidentID types.IncidentID
	Action     string
	Detail     map[string]any
	Actor      string
	CreatedAt  time.Time
}
