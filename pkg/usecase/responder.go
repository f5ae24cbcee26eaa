package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// dispatchShortlist is how many ranked candidates are considered per
// dispatch attempt.
const dispatchShortlist = 5

// ResponderUseCase finds, reserves and administers human responders
type ResponderUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

// FindAvailable selects the best dispatchable responder for a crisis
// and reserves one caseload slot on them. Returns nil, nil when nobody
// matches; that is an expected outcome the caller must handle, not an
// error. There is no national fallback for responders: an empty result
// within location+language stays empty.
func (uc *ResponderUseCase) FindAvailable(ctx context.Context, crisisType types.CrisisType, location, language string) (*model.Responder, error) {
	candidates, err := uc.repo.Responder().ListBySpecialization(ctx, crisisType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list responders")
	}

	city, region := model.ParseLocation(location)

	eligible := make([]*model.Responder, 0, len(candidates))
	for _, responder := range candidates {
		// The repository pre-filters on active/available/trained;
		// the caseload cap is checked here against each responder's
		// own limit.
		if responder.CurrentCaseCount >= responder.MaxConcurrentCases {
			continue
		}
		if location != "" && !responder.MatchesLocation(city, region) {
			continue
		}
		if language != "" && !responder.Speaks(language) {
			continue
		}
		eligible = append(eligible, responder)
	}

	if len(eligible) == 0 {
		logging.From(ctx).Warn("no responder available",
			"crisis_type", crisisType,
			"location", location,
			"language", language,
		)
		return nil, nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.CurrentCaseCount != b.CurrentCaseCount {
			return a.CurrentCaseCount < b.CurrentCaseCount
		}
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.TotalCasesHandled > b.TotalCasesHandled
	})

	if len(eligible) > dispatchShortlist {
		eligible = eligible[:dispatchShortlist]
	}

	// The reservation re-checks capacity atomically; a concurrent
	// dispatch that took the last slot first turns this into a clean
	// "no responder" outcome.
	reserved, err := uc.repo.Responder().Reserve(ctx, eligible[0].ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrCapacityExhausted) {
			logging.From(ctx).Warn("responder filled up during dispatch",
				"responder_id", eligible[0].ID,
				"crisis_type", crisisType,
			)
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to reserve responder", goerr.V(ResponderIDKey, eligible[0].ID))
	}

	return reserved, nil
}

// Release frees one caseload slot of a responder, clamped at zero
func (uc *ResponderUseCase) Release(ctx context.Context, id types.ResponderID) error {
	if _, err := uc.repo.Responder().Release(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrResponderNotFound, "cannot release unknown responder", goerr.V(ResponderIDKey, id))
		}
		return goerr.Wrap(err, "failed to release responder", goerr.V(ResponderIDKey, id))
	}
	return nil
}

// Register creates a responder record for a subject. New responders
// start inactive and unavailable, pending admin approval and training.
func (uc *ResponderUseCase) Register(ctx context.Context, subjectID string, role types.Role, specializations []types.CrisisType, languages []string, region, city string) (*model.Responder, error) {
	if role == types.RoleSubject {
		return nil, goerr.Wrap(ErrRoleNotPermitted, "subjects cannot register as responders", goerr.V(SubjectIDKey, subjectID))
	}

	existing, err := uc.repo.Responder().GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check existing responder")
	}
	if existing != nil {
		return nil, goerr.Wrap(ErrResponderExists, "duplicate responder registration", goerr.V(SubjectIDKey, subjectID))
	}

	responder := &model.Responder{
		SubjectID:          subjectID,
		Specializations:    specializations,
		Languages:          languages,
		Region:             region,
		City:               city,
		MaxConcurrentCases: model.DefaultMaxConcurrentCases,
	}

	created, err := uc.repo.Responder().Create(ctx, responder)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create responder")
	}
	return created, nil
}

// CompleteTraining marks the responder's training as finished
func (uc *ResponderUseCase) CompleteTraining(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	responder, err := uc.getResponder(ctx, id)
	if err != nil {
		return nil, err
	}

	responder.TrainingCompleted = true
	updated, err := uc.repo.Responder().Update(ctx, responder)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update responder", goerr.V(ResponderIDKey, id))
	}
	return updated, nil
}

// Approve activates a responder (admin action)
func (uc *ResponderUseCase) Approve(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	responder, err := uc.getResponder(ctx, id)
	if err != nil {
		return nil, err
	}

	responder.IsActive = true
	updated, err := uc.repo.Responder().Update(ctx, responder)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update responder", goerr.V(ResponderIDKey, id))
	}
	return updated, nil
}

// UpdateAvailability toggles the responder's self-managed availability.
// Going available requires completed training and admin approval.
// Going offline resets the current caseload to zero, dropping any
// in-flight reservation accounting.
func (uc *ResponderUseCase) UpdateAvailability(ctx context.Context, id types.ResponderID, available bool) (*model.Responder, error) {
	responder, err := uc.getResponder(ctx, id)
	if err != nil {
		return nil, err
	}

	if available && (!responder.TrainingCompleted || !responder.IsActive) {
		return nil, goerr.Wrap(ErrTrainingIncomplete, "responder cannot go available",
			goerr.V(ResponderIDKey, id),
			goerr.V("training_completed", responder.TrainingCompleted),
			goerr.V("is_active", responder.IsActive),
		)
	}

	responder.IsAvailable = available
	if !available {
		responder.CurrentCaseCount = 0
	}

	updated, err := uc.repo.Responder().Update(ctx, responder)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update responder", goerr.V(ResponderIDKey, id))
	}
	return updated, nil
}

func (uc *ResponderUseCase) getResponder(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	responder, err := uc.repo.Responder().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrResponderNotFound, "responder not found", goerr.V(ResponderIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get responder", goerr.V(ResponderIDKey, id))
	}
	return responder, nil
}
