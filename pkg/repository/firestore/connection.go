package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type connectionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newConnectionRepository(client *firestore.Client) *connectionRepository {
	return &connectionRepository{client: client}
}

func (r *connectionRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_connections"
	}
	return "connections"
}

func (r *connectionRepository) Create(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	created := *conn
	created.ID = types.NewConnectionID()

	_, err := r.client.Collection(r.collection()).Doc(created.ID.String()).Set(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create connection", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *connectionRepository) Get(ctx context.Context, id types.ConnectionID) (*model.Connection, error) {
	doc, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V("id", id))
	}

	var conn model.Connection
	if err := doc.DataTo(&conn); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal connection", goerr.V("id", id))
	}
	return &conn, nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	docRef := r.client.Collection(r.collection()).Doc(conn.ID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V("id", conn.ID))
		}
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V("id", conn.ID))
	}

	updated := *conn
	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update connection", goerr.V("id", conn.ID))
	}
	return &updated, nil
}

func (r *connectionRepository) ListByIncident(ctx context.Context, incidentID types.IncidentID) ([]*model.Connection, error) {
	iter := r.client.Collection(r.collection()).
		Where("IncidentID", "==", incidentID.String()).
		OrderBy("StartedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	conns := []*model.Connection{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate connections")
		}

		var conn model.Connection
		if err := doc.DataTo(&conn); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal connection")
		}
		conns = append(conns, &conn)
	}
	return conns, nil
}
