package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type responderRepository struct {
	mu         sync.Mutex
	responders map[types.ResponderID]*model.Responder
}

func newResponderRepository() *responderRepository {
	return &responderRepository{
		responders: make(map[types.ResponderID]*model.Responder),
	}
}

// copyResponder creates a deep copy of a responder
func copyResponder(in *model.Responder) *model.Responder {
	specs := make([]types.CrisisType, len(in.Specializations))
	copy(specs, in.Specializations)
	langs := make([]string, len(in.Languages))
	copy(langs, in.Languages)

	out := *in
	out.Specializations = specs
	out.Languages = langs
	return &out
}

func (r *responderRepository) Create(ctx context.Context, responder *model.Responder) (*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyResponder(responder)
	created.ID = types.NewResponderID()
	if created.MaxConcurrentCases == 0 {
		created.MaxConcurrentCases = model.DefaultMaxConcurrentCases
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.responders[created.ID] = created
	return copyResponder(created), nil
}

func (r *responderRepository) Get(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	responder, exists := r.responders[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
	}
	return copyResponder(responder), nil
}

func (r *responderRepository) GetBySubject(ctx context.Context, subjectID string) (*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, responder := range r.responders {
		if responder.SubjectID == subjectID {
			return copyResponder(responder), nil
		}
	}
	return nil, nil
}

func (r *responderRepository) Update(ctx context.Context, responder *model.Responder) (*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.responders[responder.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", responder.ID))
	}

	updated := copyResponder(responder)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.responders[responder.ID] = updated
	return copyResponder(updated), nil
}

func (r *responderRepository) ListBySpecialization(ctx context.Context, crisisType types.CrisisType) ([]*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []*model.Responder{}
	for _, responder := range r.responders {
		if !responder.IsActive || !responder.IsAvailable || !responder.TrainingCompleted {
			continue
		}
		if !responder.Specializes(crisisType) {
			continue
		}
		result = append(result, copyResponder(responder))
	}
	return result, nil
}

// Reserve performs the capacity check and the caseload increment under
// the same lock, so two concurrent dispatches cannot both take the last
// slot of a responder.
func (r *responderRepository) Reserve(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	responder, exists := r.responders[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
	}
	if responder.CurrentCaseCount >= responder.MaxConcurrentCases {
		return nil, goerr.Wrap(ErrCapacityExhausted, "responder is at capacity",
			goerr.V("id", id),
			goerr.V("case_count", responder.CurrentCaseCount),
		)
	}

	responder.CurrentCaseCount++
	responder.UpdatedAt = time.Now().UTC()
	return copyResponder(responder), nil
}

func (r *responderRepository) Release(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	responder, exists := r.responders[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
	}

	if responder.CurrentCaseCount > 0 {
		responder.CurrentCaseCount--
	}
	responder.UpdatedAt = time.Now().UTC()
	return copyResponder(responder), nil
}

func (r *responderRepository) RecordRating(ctx context.Context, id types.ResponderID, rating int) (*model.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	responder, exists := r.responders[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
	}

	handled := float64(responder.TotalCasesHandled)
	responder.AverageRating = (responder.AverageRating*handled + float64(rating)) / (handled + 1)
	responder.TotalCasesHandled++
	responder.UpdatedAt = time.Now().UTC()
	return copyResponder(responder), nil
}
