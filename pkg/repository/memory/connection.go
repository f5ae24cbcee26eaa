package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type connectionRepository struct {
	mu          sync.RWMutex
	connections map[types.ConnectionID]*model.Connection
}

func newConnectionRepository() *connectionRepository {
	return &connectionRepository{
		connections: make(map[types.ConnectionID]*model.Connection),
	}
}

// copyConnection creates a deep copy of a connection
func copyConnection(in *model.Connection) *model.Connection {
	out := *in
	if in.EndedAt != nil {
		endedAt := *in.EndedAt
		out.EndedAt = &endedAt
	}
	return &out
}

func (r *connectionRepository) Create(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyConnection(conn)
	created.ID = types.NewConnectionID()

	r.connections[created.ID] = created
	return copyConnection(created), nil
}

func (r *connectionRepository) Get(ctx context.Context, id types.ConnectionID) (*model.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.connections[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V("id", id))
	}
	return copyConnection(conn), nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connections[conn.ID]; !exists {
		return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V("id", conn.ID))
	}

	updated := copyConnection(conn)
	r.connections[conn.ID] = updated
	return copyConnection(updated), nil
}

func (r *connectionRepository) ListByIncident(ctx context.Context, incidentID types.IncidentID) ([]*model.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Connection{}
	for _, conn := range r.connections {
		if conn.IncidentID == incidentID {
			result = append(result, copyConnection(conn))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result, nil
}
