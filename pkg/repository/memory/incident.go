package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type incidentRepository struct {
	mu        sync.RWMutex
	incidents map[types.IncidentID]*model.Incident
}

func newIncidentRepository() *incidentRepository {
	return &incidentRepository{
		incidents: make(map[types.IncidentID]*model.Incident),
	}
}

// copyIncident creates a deep copy of an incident
func copyIncident(in *model.Incident) *model.Incident {
	keywords := make([]string, len(in.TriggerKeywords))
	copy(keywords, in.TriggerKeywords)

	out := *in
	out.TriggerKeywords = keywords
	if in.FollowUpDeadline != nil {
		deadline := *in.FollowUpDeadline
		out.FollowUpDeadline = &deadline
	}
	if in.ResolvedAt != nil {
		resolvedAt := *in.ResolvedAt
		out.ResolvedAt = &resolvedAt
	}
	return &out
}

func (r *incidentRepository) Create(ctx context.Context, incident *model.Incident) (*model.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyIncident(incident)
	created.ID = types.NewIncidentID()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.incidents[created.ID] = created
	return copyIncident(created), nil
}

func (r *incidentRepository) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	incident, exists := r.incidents[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
	}
	return copyIncident(incident), nil
}

func (r *incidentRepository) Update(ctx context.Context, incident *model.Incident) (*model.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.incidents[incident.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", incident.ID))
	}

	updated := copyIncident(incident)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.incidents[incident.ID] = updated
	return copyIncident(updated), nil
}

func (r *incidentRepository) ListBySubject(ctx context.Context, subjectID string) ([]*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Incident{}
	for _, incident := range r.incidents {
		if incident.SubjectID == subjectID {
			result = append(result, copyIncident(incident))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *incidentRepository) ListDueFollowUps(ctx context.Context, now time.Time) ([]*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Incident{}
	for _, incident := range r.incidents {
		if incident.Status != types.IncidentStatusActive &&
			incident.Status != types.IncidentStatusFollowUpPending {
			continue
		}
		if incident.FollowUpCompleted || incident.FollowUpDeadline == nil {
			continue
		}
		if incident.FollowUpDeadline.After(now) {
			continue
		}
		result = append(result, copyIncident(incident))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FollowUpDeadline.Before(*result[j].FollowUpDeadline)
	})
	return result, nil
}

func (r *incidentRepository) MarkFollowUpComplete(ctx context.Context, id types.IncidentID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	incident, exists := r.incidents[id]
	if !exists {
		return false, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
	}
	if incident.FollowUpCompleted {
		return false, nil
	}
	incident.FollowUpCompleted = true
	incident.UpdatedAt = time.Now().UTC()
	return true, nil
}
