package models

import "errors"

// Error taxonomy shared across the service. Request-boundary errors are
// surfaced synchronously by handlers; job-internal errors are captured into
// the failing job's ErrorMessage.
var (
	ErrInvalidParams    = errors.New("invalid params")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrModelNotLoaded   = errors.New("model not loaded")
	ErrUnknownSeedItem  = errors.New("unknown seed item")
	ErrInsufficientData = errors.New("insufficient data")
	ErrTrainingDiverged = errors.New("training diverged")
)
