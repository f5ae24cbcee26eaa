package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type incidentLogRepository struct {
	mu      sync.RWMutex
	entries map[types.IncidentID][]*model.IncidentLogEntry
}

func newIncidentLogRepository() *incidentLogRepository {
	return &incidentLogRepository{
		entries: make(map[types.IncidentID][]*model.IncidentLogEntry),
	}
}

// copyLogEntry creates a deep copy of a log entry
func copyLogEntry(in *model.IncidentLogEntry) *model.IncidentLogEntry {
	out := *in
	if in.Detail != nil {
		detail := make(map[string]any, len(in.Detail))
		for k, v := range in.Detail {
			detail[k] = v
		}
		out.Detail = detail
	}
	return &out
}

func (r *incidentLogRepository) Append(ctx context.Context, entry *model.IncidentLogEntry) (*model.IncidentLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyLogEntry(entry)
	created.ID = types.NewLogEntryID()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.entries[created.IncidentID] = append(r.entries[created.IncidentID], created)
	return copyLogEntry(created), nil
}

func (r *incidentLogRepository) ListByIncident(ctx context.Context, incidentID types.IncidentID) ([]*model.IncidentLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.IncidentLogEntry, 0, len(r.entries[incidentID]))
	for _, entry := range r.entries[incidentID] {
		result = append(result, copyLogEntry(entry))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
