package interfaces

import (
	"context"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// ResponderRepository defines the interface for responder data access.
//
// Reserve and Release maintain the one race-sensitive counter of the
// engine: a responder's current caseload. Both must be atomic with
// respect to concurrent dispatch attempts against the same responder.
type ResponderRepository interface {
	// Create persists a new responder with a generated ID
	Create(ctx context.Context, responder *model.Responder) (*model.Responder, error)

	// Get retrieves a responder by ID
	Get(ctx context.Context, id types.ResponderID) (*model.Responder, error)

	// GetBySubject retrieves the responder registered for a subject.
	// Returns nil, nil when the subject has no responder record.
	GetBySubject(ctx context.Context, subjectID string) (*model.Responder, error)

	// Update persists the administrative fields of an existing responder
	Update(ctx context.Context, responder *model.Responder) (*model.Responder, error)

	// ListBySpecialization retrieves active, available, fully trained
	// responders covering the given crisis type. Caseload capacity is
	// NOT filtered here; callers check it against each row's own cap.
	ListBySpecialization(ctx context.Context, crisisType types.CrisisType) ([]*model.Responder, error)

	// Reserve atomically increments the responder's caseload if and
	// only if it is below the responder's cap. Returns
	// ErrCapacityExhausted when the responder is already full.
	Reserve(ctx context.Context, id types.ResponderID) (*model.Responder, error)

	// Release atomically decrements the responder's caseload, clamped
	// at zero.
	Release(ctx context.Context, id types.ResponderID) (*model.Responder, error)

	// RecordRating atomically folds a new 1-5 rating into the
	// responder's running average and increments its handled-case
	// count.
	RecordRating(ctx context.Context, id types.ResponderID, rating int) (*model.Responder, error)
}
