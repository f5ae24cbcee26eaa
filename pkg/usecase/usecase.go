package usecase

import (
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/service/detect"
)

// UseCases bundles the engine's operations around a shared repository,
// detector, notifier and clock.
type UseCases struct {
	repo     interfaces.Repository
	detector *detect.Detector
	notifier interfaces.Notifier
	now      func() time.Time

	Incident  *IncidentUseCase
	Responder *ResponderUseCase
	Resource  *ResourceUseCase
}

// Detector exposes the configured detector for transport-layer
// endpoints that score text without opening an incident.
func (uc *UseCases) Detector() *detect.Detector {
	return uc.detector
}

type Option func(*UseCases)

// WithNotifier sets the fire-and-forget notification channel
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

// WithDetector replaces the default detector, e.g. one compiled from a
// taxonomy config file.
func WithDetector(detector *detect.Detector) Option {
	return func(uc *UseCases) {
		uc.detector = detector
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.detector == nil {
		uc.detector = detect.New()
	}

	uc.Responder = &ResponderUseCase{repo: repo, now: uc.now}
	uc.Resource = &ResourceUseCase{repo: repo}
	uc.Incident = &IncidentUseCase{
		repo:      repo,
		detector:  uc.detector,
		notifier:  uc.notifier,
		now:       uc.now,
		responder: uc.Responder,
		resource:  uc.Resource,
	}

	return uc
}
