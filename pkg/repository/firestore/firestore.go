package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
)

// Sentinel errors shared by all Firestore repositories
var (
	ErrNotFound          = interfaces.ErrNotFound
	ErrCapacityExhausted = interfaces.ErrCapacityExhausted
)

// Firestore is the Firestore persistence backend
type Firestore struct {
	client      *firestore.Client
	incident    *incidentRepository
	connection  *connectionRepository
	responder   *responderRepository
	resource    *resourceRepository
	incidentLog *incidentLogRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests
// sharing a project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.incident.collectionPrefix = prefix
		f.connection.collectionPrefix = prefix
		f.responder.collectionPrefix = prefix
		f.resource.collectionPrefix = prefix
		f.incidentLog.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:      client,
		incident:    newIncidentRepository(client),
		connection:  newConnectionRepository(client),
		responder:   newResponderRepository(client),
		resource:    newResourceRepository(client),
		incidentLog: newIncidentLogRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Incident() interfaces.IncidentRepository {
	return f.incident
}

func (f *Firestore) Connection() interfaces.ConnectionRepository {
	return f.connection
}

func (f *Firestore) Responder() interfaces.ResponderRepository {
	return f.responder
}

func (f *Firestore) Resource() interfaces.ResourceRepository {
	return f.resource
}

func (f *Firestore) IncidentLog() interfaces.IncidentLogRepository {
	return f.incidentLog
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
