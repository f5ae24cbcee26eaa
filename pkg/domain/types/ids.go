package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// IncidentID represents a unique identifier for an incident
type IncidentID string

// NewIncidentID generates a new random IncidentID
func NewIncidentID() IncidentID {
	return IncidentID(uuid.New().String())
}

// Validate checks if the IncidentID is valid
func (i IncidentID) Validate() error {
	if i == "" {
		return goerr.New("incident ID cannot be empty")
	}
	return nil
}

// String returns the string representation of IncidentID
func (i IncidentID) String() string {
	return string(i)
}

// ConnectionID represents a unique identifier for a connection
type ConnectionID string

// NewConnectionID generates a new random ConnectionID
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.New().String())
}

// String returns the string representation of ConnectionID
func (c ConnectionID) String() string {
	return string(c)
}

// ResponderID represents a unique identifier for a responder
type ResponderID string

// NewResponderID generates a new random ResponderID
func NewResponderID() ResponderID {
	return ResponderID(uuid.New().String())
}

// String returns the string representation of ResponderID
func (r ResponderID) String() string {
	return string(r)
}

// ResourceID represents a unique identifier for a support resource
type ResourceID string

// NewResourceID generates a new random ResourceID
func NewResourceID() ResourceID {
	return ResourceID(uuid.New().String())
}

// String returns the string representation of ResourceID
func (r ResourceID) String() string {
	return string(r)
}

// LogEntryID represents a unique identifier for an incident log entry
type LogEntryID string

// NewLogEntryID generates a new random LogEntryID
func NewLogEntryID() LogEntryID {
	return LogEntryID(uuid.New().String())
}

// String returns the string representation of LogEntryID
func (l LogEntryID) String() string {
	return string(l)
}
