package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type resourceRepository struct {
	mu        sync.RWMutex
	resources map[types.ResourceID]*model.Resource
}

func newResourceRepository() *resourceRepository {
	return &resourceRepository{
		resources: make(map[types.ResourceID]*model.Resource),
	}
}

// copyResource creates a deep copy of a resource
func copyResource(in *model.Resource) *model.Resource {
	categories := make([]types.CrisisType, len(in.CrisisCategories))
	copy(categories, in.CrisisCategories)
	langs := make([]string, len(in.Languages))
	copy(langs, in.Languages)

	out := *in
	out.CrisisCategories = categories
	out.Languages = langs
	return &out
}

func (r *resourceRepository) Create(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyResource(resource)
	created.ID = types.NewResourceID()
	if created.Country == "" {
		created.Country = model.DefaultCountry
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.resources[created.ID] = created
	return copyResource(created), nil
}

func (r *resourceRepository) Get(ctx context.Context, id types.ResourceID) (*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, exists := r.resources[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "resource not found", goerr.V("id", id))
	}
	return copyResource(resource), nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.resources[resource.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "resource not found", goerr.V("id", resource.ID))
	}

	updated := copyResource(resource)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.resources[resource.ID] = updated
	return copyResource(updated), nil
}

func (r *resourceRepository) ListByCategory(ctx context.Context, crisisType types.CrisisType) ([]*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Resource{}
	for _, resource := range r.resources {
		if !resource.IsActive || !resource.Covers(crisisType) {
			continue
		}
		result = append(result, copyResource(resource))
	}
	return result, nil
}

func (r *resourceRepository) ListNational(ctx context.Context, crisisType types.CrisisType) ([]*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Resource{}
	for _, resource := range r.resources {
		if !resource.IsActive || !resource.IsVerified || !resource.IsNational() {
			continue
		}
		if !resource.Covers(crisisType) {
			continue
		}
		result = append(result, copyResource(resource))
	}
	return result, nil
}

func (r *resourceRepository) ListActive(ctx context.Context) ([]*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Resource{}
	for _, resource := range r.resources {
		if resource.IsActive {
			result = append(result, copyResource(resource))
		}
	}
	return result, nil
}

// IncrementUsage bumps all given counters under one lock acquisition,
// mirroring the transactional batch write of the Firestore backend.
func (r *resourceRepository) IncrementUsage(ctx context.Context, ids []types.ResourceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, exists := r.resources[id]; !exists {
			return goerr.Wrap(ErrNotFound, "resource not found", goerr.V("id", id))
		}
	}
	now := time.Now().UTC()
	for _, id := range ids {
		r.resources[id].UsageCount++
		r.resources[id].UpdatedAt = now
	}
	return nil
}
