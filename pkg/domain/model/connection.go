package model

import (
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// Connection is a link between an incident and either a responder or a
// resource, representing one contact attempt or session. At most one of
// ResponderID/ResourceID is set; both may be empty for a general
// pending connection. EndedAt is stamped together with Outcome when the
// contact concludes.
type Connection struct {
	ID              types.ConnectionID
	IncidentID      types.IncidentID
	ResponderID     types.ResponderID
	ResourceID      types.ResourceID
	Channel         types.ConnectionChannel
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds int64
	Outcome         types.ConnectionOutcome
	Rating          int // 1-5, 0 = unrated
	Feedback        string
	Notes           string
}

// ConnectionClose carries the fields applied when a contact concludes
type ConnectionClose struct {
	Outcome  types.ConnectionOutcome
	Rating   int
	Feedback string
	Notes    string
}
