package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Incident() IncidentRepository
	Connection() ConnectionRepository
	Responder() ResponderRepository
	Resource() ResourceRepository
	IncidentLog() IncidentLogRepository

	// Close releases any resources held by the backend
	Close() error
}
