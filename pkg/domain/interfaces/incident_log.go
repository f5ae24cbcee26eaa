package interfaces

import (
	"context"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// IncidentLogRepository is the append-only audit sink for incident
// actions. Entries are never mutated or deleted.
type IncidentLogRepository interface {
	// Append persists a new log entry with a generated ID
	Append(ctx context.Context, entry *model.IncidentLogEntry) (*model.IncidentLogEntry, error)

	// ListByIncident retrieves all log entries of an incident,
	// oldest first
	ListByIncident(ctx context.Context, incidentID types.IncidentID) ([]*model.IncidentLogEntry, error)
}
