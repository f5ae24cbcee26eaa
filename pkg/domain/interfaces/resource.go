package interfaces

import (
	"context"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// ResourceRepository defines the interface for support-resource data access
type ResourceRepository interface {
	// Create persists a new resource with a generated ID
	Create(ctx context.Context, resource *model.Resource) (*model.Resource, error)

	// Get retrieves a resource by ID
	Get(ctx context.Context, id types.ResourceID) (*model.Resource, error)

	// Update persists an existing resource
	Update(ctx context.Context, resource *model.Resource) (*model.Resource, error)

	// ListByCategory retrieves active resources covering the given
	// crisis type.
	ListByCategory(ctx context.Context, crisisType types.CrisisType) ([]*model.Resource, error)

	// ListNational retrieves active, verified national-level resources
	// (default country, no region) covering the given crisis type.
	ListNational(ctx context.Context, crisisType types.CrisisType) ([]*model.Resource, error)

	// ListActive retrieves all active resources
	ListActive(ctx context.Context) ([]*model.Resource, error)

	// IncrementUsage bumps the usage counter of each given resource in
	// a single transactional write.
	IncrementUsage(ctx context.Context, ids []types.ResourceID) error
}
