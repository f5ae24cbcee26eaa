package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type incidentLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newIncidentLogRepository(client *firestore.Client) *incidentLogRepository {
	return &incidentLogRepository{client: client}
}

func (r *incidentLogRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_incident_logs"
	}
	return "incident_logs"
}

func (r *incidentLogRepository) Append(ctx context.Context, entry *model.IncidentLogEntry) (*model.IncidentLogEntry, error) {
	created := *entry
	created.ID = types.NewLogEntryID()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.Collection(r.collection()).Doc(created.ID.String()).Set(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append incident log entry", goerr.V("incident_id", created.IncidentID))
	}
	return &created, nil
}

func (r *incidentLogRepository) ListByIncident(ctx context.Context, incidentID types.IncidentID) ([]*model.IncidentLogEntry, error) {
	iter := r.client.Collection(r.collection()).
		Where("IncidentID", "==", incidentID.String()).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	entries := []*model.IncidentLogEntry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate incident log entries")
		}

		var entry model.IncidentLogEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal incident log entry")
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
