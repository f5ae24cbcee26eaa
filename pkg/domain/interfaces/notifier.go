package interfaces

import (
	"context"

	"github.com/haven-lab/lifeline/pkg/domain/model"
)

// Notifier is a fire-and-forget side channel for moderator alerts and
// follow-up notifications. Implementations may fail; callers never
// propagate those failures into the primary operation.
type Notifier interface {
	// NotifyModerators alerts the moderation channel about a newly
	// created high-urgency incident.
	NotifyModerators(ctx context.Context, incident *model.Incident) error

	// NotifyFollowUp pings the follow-up channel that an incident's
	// check-in deadline has elapsed.
	NotifyFollowUp(ctx context.Context, incident *model.Incident) error
}
