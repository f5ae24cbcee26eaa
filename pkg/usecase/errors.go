package usecase

import "errors"

// Sentinel errors for the use case layer. "No responder available" and
// "no resource found" are NOT errors; those operations return nil/empty
// results instead.
var (
	// Not found errors
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrResponderNotFound  = errors.New("responder not found")

	// Conflict errors
	ErrResponderExists = errors.New("responder already registered for subject")

	// Validation errors
	ErrRoleNotPermitted   = errors.New("role is not permitted to register as responder")
	ErrTrainingIncomplete = errors.New("availability requires completed training and admin approval")
	ErrInvalidTransition  = errors.New("invalid incident status transition")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")

	// Access control errors
	ErrNotAuthorized = errors.New("not authorized to view this incident")
)

// Context keys for error values
const (
	IncidentIDKey   = "incident_id"
	ConnectionIDKey = "connection_id"
	ResponderIDKey  = "responder_id"
	SubjectIDKey    = "subject_id"
)
