package types

import "fmt"

// IncidentStatus represents the lifecycle state of an incident
type IncidentStatus string

const (
	IncidentStatusActive          IncidentStatus = "ACTIVE"
	IncidentStatusInProgress      IncidentStatus = "IN_PROGRESS"
	IncidentStatusFollowUpPending IncidentStatus = "FOLLOWUP_PENDING"
	IncidentStatusResolved        IncidentStatus = "RESOLVED"
)

// AllIncidentStatuses returns all valid incident statuses
func AllIncidentStatuses() []IncidentStatus {
	return []IncidentStatus{
		IncidentStatusActive,
		IncidentStatusInProgress,
		IncidentStatusFollowUpPending,
		IncidentStatusResolved,
	}
}

// IsValid checks if the incident status is valid
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusActive,
		IncidentStatusInProgress,
		IncidentStatusFollowUpPending,
		IncidentStatusResolved:
		return true
	default:
		return false
	}
}

// String returns the string representation of the incident status
func (s IncidentStatus) String() string {
	return string(s)
}

// ParseIncidentStatus parses a string into an IncidentStatus
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	status := IncidentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid incident status: %s", s)
	}
	return status, nil
}

// Rank orders statuses by how far along the lifecycle they are.
// Scheduling a follow-up must never move an incident backwards, so
// transitions to a lower-ranked status are rejected for that path.
func (s IncidentStatus) Rank() int {
	switch s {
	case IncidentStatusActive:
		return 0
	case IncidentStatusFollowUpPending:
		return 1
	case IncidentStatusInProgress:
		return 2
	case IncidentStatusResolved:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo reports whether the state machine permits moving from
// s to next. RESOLVED is terminal.
func (s IncidentStatus) CanTransitionTo(next IncidentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case IncidentStatusActive:
		return next == IncidentStatusInProgress ||
			next == IncidentStatusFollowUpPending ||
			next == IncidentStatusResolved
	case IncidentStatusFollowUpPending:
		return next == IncidentStatusInProgress || next == IncidentStatusResolved
	case IncidentStatusInProgress:
		return next == IncidentStatusResolved
	default:
		return false
	}
}
