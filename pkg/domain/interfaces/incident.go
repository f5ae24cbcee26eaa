package interfaces

import (
	"context"
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// IncidentRepository defines the interface for incident data access
type IncidentRepository interface {
	// Create persists a new incident with a generated ID
	Create(ctx context.Context, incident *model.Incident) (*model.Incident, error)

	// Get retrieves an incident by ID
	Get(ctx context.Context, id types.IncidentID) (*model.Incident, error)

	// Update persists the mutable fields of an existing incident
	Update(ctx context.Context, incident *model.Incident) (*model.Incident, error)

	// ListBySubject retrieves all incidents opened for a subject,
	// newest first
	ListBySubject(ctx context.Context, subjectID string) ([]*model.Incident, error)

	// ListDueFollowUps retrieves incidents whose follow-up deadline has
	// elapsed at the given instant and whose follow-up has not yet been
	// completed. Only ACTIVE and FOLLOWUP_PENDING incidents qualify.
	ListDueFollowUps(ctx context.Context, now time.Time) ([]*model.Incident, error)

	// MarkFollowUpComplete sets the follow-up completed flag. It
	// returns false without error when the flag was already set, which
	// makes repeated sweeps idempotent per incident.
	MarkFollowUpComplete(ctx context.Context, id types.IncidentID) (bool, error)
}
