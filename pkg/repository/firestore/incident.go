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

type incidentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newIncidentRepository(client *firestore.Client) *incidentRepository {
	return &incidentRepository{client: client}
}

func (r *incidentRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_incidents"
	}
	return "incidents"
}

func (r *incidentRepository) Create(ctx context.Context, incident *model.Incident) (*model.Incident, error) {
	now := time.Now().UTC()
	created := *incident
	created.ID = types.NewIncidentID()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.client.Collection(r.collection()).Doc(created.ID.String()).Set(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create incident", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *incidentRepository) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	doc, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get incident", goerr.V("id", id))
	}

	var incident model.Incident
	if err := doc.DataTo(&incident); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal incident", goerr.V("id", id))
	}
	return &incident, nil
}

func (r *incidentRepository) Update(ctx context.Context, incident *model.Incident) (*model.Incident, error) {
	docRef := r.client.Collection(r.collection()).Doc(incident.ID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", incident.ID))
		}
		return nil, goerr.Wrap(err, "failed to get incident", goerr.V("id", incident.ID))
	}

	updated := *incident
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update incident", goerr.V("id", incident.ID))
	}
	return &updated, nil
}

func (r *incidentRepository) ListBySubject(ctx context.Context, subjectID string) ([]*model.Incident, error) {
	iter := r.client.Collection(r.collection()).
		Where("SubjectID", "==", subjectID).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectIncidents(iter)
}

func (r *incidentRepository) ListDueFollowUps(ctx context.Context, now time.Time) ([]*model.Incident, error) {
	// Firestore cannot combine an inequality on FollowUpDeadline with
	// an IN filter on Status in a single query, so the status check
	// happens client-side.
	iter := r.client.Collection(r.collection()).
		Where("FollowUpCompleted", "==", false).
		Where("FollowUpDeadline", "<=", now).
		Documents(ctx)
	defer iter.Stop()

	incidents, err := collectIncidents(iter)
	if err != nil {
		return nil, err
	}

	due := make([]*model.Incident, 0, len(incidents))
	for _, incident := range incidents {
		if incident.Status == types.IncidentStatusActive ||
			incident.Status == types.IncidentStatusFollowUpPending {
			due = append(due, incident)
		}
	}
	return due, nil
}

func (r *incidentRepository) MarkFollowUpComplete(ctx context.Context, id types.IncidentID) (bool, error) {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	var marked bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get incident", goerr.V("id", id))
		}

		completed, err := doc.DataAt("FollowUpCompleted")
		if err != nil {
			return goerr.Wrap(err, "failed to read follow-up flag", goerr.V("id", id))
		}
		if done, ok := completed.(bool); ok && done {
			marked = false
			return nil
		}

		marked = true
		return tx.Update(docRef, []firestore.Update{
			{Path: "FollowUpCompleted", Value: true},
			{Path: "UpdatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return false, err
	}
	return marked, nil
}

func collectIncidents(iter *firestore.DocumentIterator) ([]*model.Incident, error) {
	incidents := []*model.Incident{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate incidents")
		}

		var incident model.Incident
		if err := doc.DataTo(&incident); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal incident")
		}
		incidents = append(incidents, &incident)
	}
	return incidents, nil
}
