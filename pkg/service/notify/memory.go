package notify

import (
	"context"
	"sync"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
)

// Memory records notifications instead of delivering them. Intended
// for tests and local development without Slack credentials.
type Memory struct {
	mu        sync.Mutex
	moderator []*model.Incident
	followUp  []*model.Incident

	// Err, when set, is returned by every notify call
	Err error
}

var _ interfaces.Notifier = &Memory{}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) NotifyModerators(_ context.Context, incident *model.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.moderator = append(m.moderator, incident)
	return nil
}

func (m *Memory) NotifyFollowUp(_ context.Context, incident *model.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.followUp = append(m.followUp, incident)
	return nil
}

// ModeratorAlerts returns a copy of the recorded moderator alerts
func (m *Memory) ModeratorAlerts() []*model.Incident {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Incident, len(m.moderator))
	copy(out, m.moderator)
	return out
}

// FollowUpPings returns a copy of the recorded follow-up pings
func (m *Memory) FollowUpPings() []*model.Incident {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Incident, len(m.followUp))
	copy(out, m.followUp)
	return out
}
