package memory

import (
	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
)

// Sentinel errors shared by all in-memory repositories
var (
	ErrNotFound          = interfaces.ErrNotFound
	ErrCapacityExhausted = interfaces.ErrCapacityExhausted
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory persistence backend, intended for tests and
// development mode.
type Memory struct {
	incident    *incidentRepository
	connection  *connectionRepository
	responder   *responderRepository
	resource    *resourceRepository
	incidentLog *incidentLogRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		incident:    newIncidentRepository(),
		connection:  newConnectionRepository(),
		responder:   newResponderRepository(),
		resource:    newResourceRepository(),
		incidentLog: newIncidentLogRepository(),
	}
}

func (m *Memory) Incident() interfaces.IncidentRepository {
	return m.incident
}

func (m *Memory) Connection() interfaces.ConnectionRepository {
	return m.connection
}

func (m *Memory) Responder() interfaces.ResponderRepository {
	return m.responder
}

func (m *Memory) Resource() interfaces.ResourceRepository {
	return m.resource
}

func (m *Memory) IncidentLog() interfaces.IncidentLogRepository {
	return m.incidentLog
}

func (m *Memory) Close() error {
	return nil
}
