package interfaces

import (
	"context"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// ConnectionRepository defines the interface for connection data access
type ConnectionRepository interface {
	// Create persists a new connection with a generated ID
	Create(ctx context.Context, conn *model.Connection) (*model.Connection, error)

	// Get retrieves a connection by ID
	Get(ctx context.Context, id types.ConnectionID) (*model.Connection, error)

	// Update persists the close-out fields of an existing connection
	Update(ctx context.Context, conn *model.Connection) (*model.Connection, error)

	// ListByIncident retrieves all connections of an incident,
	// oldest first
	ListByIncident(ctx context.Context, incidentID types.IncidentID) ([]*model.Connection, error)
}
