package interfaces

import "errors"

// Sentinel errors every repository backend wraps, so callers can test
// outcomes without knowing which backend is in use.
var (
	// ErrNotFound indicates the referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrCapacityExhausted indicates a Reserve hit a responder whose
	// caseload is already at its cap.
	ErrCapacityExhausted = errors.New("responder capacity exhausted")
)
