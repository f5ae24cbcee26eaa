package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/utils/errutil"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// DefaultSweepInterval is how often the background follow-up sweep runs
const DefaultSweepInterval = 5 * time.Minute

// FollowUpWorker sweeps incidents whose follow-up deadline has elapsed
// and pings the follow-up channel for each.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - MarkFollowUpComplete is the idempotence barrier: a deadline is
//   acted on at most once even when sweeps overlap or repeat
type FollowUpWorker struct {
	repo     interfaces.Repository
	notifier interfaces.Notifier
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Option is a functional option for worker configuration
type Option func(*FollowUpWorker)

// WithInterval overrides the sweep interval
func WithInterval(interval time.Duration) Option {
	return func(w *FollowUpWorker) {
		w.interval = interval
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(w *FollowUpWorker) {
		w.now = now
	}
}

// New creates a follow-up sweep worker. A nil notifier is allowed;
// due incidents are then marked without a ping.
func New(repo interfaces.Repository, notifier interfaces.Notifier, opts ...Option) *FollowUpWorker {
	w := &FollowUpWorker{
		repo:     repo,
		notifier: notifier,
		interval: DefaultSweepInterval,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start begins the background sweep loop. Does not block server
// startup.
func (w *FollowUpWorker) Start(ctx context.Context) error {
	logging.Default().Info("Follow-up worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *FollowUpWorker) Stop() {
	logging.Default().Info("Follow-up worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Follow-up worker stopped")
}

func (w *FollowUpWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Follow-up sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Follow-up worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Follow-up worker context cancelled")
			return
		}
	}
}

// Sweep performs one sweep cycle and returns how many incidents were
// acted on. One broken incident never blocks the rest of the batch.
func (w *FollowUpWorker) Sweep(ctx context.Context) (int, error) {
	startTime := w.now()

	due, err := w.repo.Incident().ListDueFollowUps(ctx, startTime)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list due follow-ups")
	}

	var acted int
	for _, incident := range due {
		marked, err := w.repo.Incident().MarkFollowUpComplete(ctx, incident.ID)
		if err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to mark follow-up complete",
				goerr.V("incident_id", incident.ID)), "follow-up sweep")
			continue
		}
		if !marked {
			// Another sweep got here first
			continue
		}

		if w.notifier != nil {
			if err := w.notifier.NotifyFollowUp(ctx, incident); err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "failed to send follow-up ping",
					goerr.V("incident_id", incident.ID)), "follow-up sweep")
			}
		}
		acted++
	}

	if acted > 0 {
		logging.From(ctx).Info("Follow-up sweep completed",
			"due", len(due),
			"acted", acted,
			"duration", time.Since(startTime).String())
	}

	return acted, nil
}
