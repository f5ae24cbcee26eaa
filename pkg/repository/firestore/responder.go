package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type responderRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newResponderRepository(client *firestore.Client) *responderRepository {
	return &responderRepository{client: client}
}

func (r *responderRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_responders"
	}
	return "responders"
}

func (r *responderRepository) Create(ctx context.Context, responder *model.Responder) (*model.Responder, error) {
	now := time.Now().UTC()
	created := *responder
	created.ID = types.NewResponderID()
	if created.MaxConcurrentCases == 0 {
		created.MaxConcurrentCases = model.DefaultMaxConcurrentCases
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.client.Collection(r.collection()).Doc(created.ID.String()).Set(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create responder", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *responderRepository) Get(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	doc, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get responder", goerr.V("id", id))
	}

	var responder model.Responder
	if err := doc.DataTo(&responder); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal responder", goerr.V("id", id))
	}
	return &responder, nil
}

func (r *responderRepository) GetBySubject(ctx context.Context, subjectID string) (*model.Responder, error) {
	iter := r.client.Collection(r.collection()).
		Where("SubjectID", "==", subjectID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query responder by subject", goerr.V("subject_id", subjectID))
	}

	var responder model.Responder
	if err := doc.DataTo(&responder); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal responder")
	}
	return &responder, nil
}

func (r *responderRepository) Update(ctx context.Context, responder *model.Responder) (*model.Responder, error) {
	docRef := r.client.Collection(r.collection()).Doc(responder.ID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", responder.ID))
		}
		return nil, goerr.Wrap(err, "failed to get responder", goerr.V("id", responder.ID))
	}

	updated := *responder
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update responder", goerr.V("id", responder.ID))
	}
	return &updated, nil
}

func (r *responderRepository) ListBySpecialization(ctx context.Context, crisisType types.CrisisType) ([]*model.Responder, error) {
	iter := r.client.Collection(r.collection()).
		Where("IsActive", "==", true).
		Where("IsAvailable", "==", true).
		Where("TrainingCompleted", "==", true).
		Where("Specializations", "array-contains", crisisType.String()).
		Documents(ctx)
	defer iter.Stop()

	responders := []*model.Responder{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate responders")
		}

		var responder model.Responder
		if err := doc.DataTo(&responder); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal responder")
		}
		responders = append(responders, &responder)
	}
	return responders, nil
}

// Reserve runs the capacity check and increment in one transaction so
// concurrent dispatches against the same responder serialize on the
// document.
func (r *responderRepository) Reserve(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var reserved model.Responder
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get responder", goerr.V("id", id))
		}

		if err := doc.DataTo(&reserved); err != nil {
			return goerr.Wrap(err, "failed to unmarshal responder", goerr.V("id", id))
		}

		if reserved.CurrentCaseCount >= reserved.MaxConcurrentCases {
			return goerr.Wrap(ErrCapacityExhausted, "responder is at capacity",
				goerr.V("id", id),
				goerr.V("case_count", reserved.CurrentCaseCount),
			)
		}

		reserved.CurrentCaseCount++
		reserved.UpdatedAt = time.Now().UTC()
		return tx.Update(docRef, []firestore.Update{
			{Path: "CurrentCaseCount", Value: reserved.CurrentCaseCount},
			{Path: "UpdatedAt", Value: reserved.UpdatedAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return &reserved, nil
}

func (r *responderRepository) Release(ctx context.Context, id types.ResponderID) (*model.Responder, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var released model.Responder
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get responder", goerr.V("id", id))
		}

		if err := doc.DataTo(&released); err != nil {
			return goerr.Wrap(err, "failed to unmarshal responder", goerr.V("id", id))
		}

		if released.CurrentCaseCount > 0 {
			released.CurrentCaseCount--
		}
		released.UpdatedAt = time.Now().UTC()
		return tx.Update(docRef, []firestore.Update{
			{Path: "CurrentCaseCount", Value: released.CurrentCaseCount},
			{Path: "UpdatedAt", Value: released.UpdatedAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return &released, nil
}

func (r *responderRepository) RecordRating(ctx context.Context, id types.ResponderID, rating int) (*model.Responder, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var rated model.Responder
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "responder not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get responder", goerr.V("id", id))
		}

		if err := doc.DataTo(&rated); err != nil {
			return goerr.Wrap(err, "failed to unmarshal responder", goerr.V("id", id))
		}

		handled := float64(rated.TotalCasesHandled)
		rated.AverageRating = (rated.AverageRating*handled + float64(rating)) / (handled + 1)
		rated.TotalCasesHandled++
		rated.UpdatedAt = time.Now().UTC()
		return tx.Update(docRef, []firestore.Update{
			{Path: "AverageRating", Value: rated.AverageRating},
			{Path: "TotalCasesHandled", Value: rated.TotalCasesHandled},
			{Path: "UpdatedAt", Value: rated.UpdatedAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return &rated, nil
}
