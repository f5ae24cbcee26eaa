package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// It creates a background context and handles errors and panics, so a
// failing best-effort step (audit write, usage counter, notification)
// can never surface into the primary operation that dispatched it.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	// Detach from the caller's cancellation but preserve its logger
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
