package registry

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"game-recommender/core/models"
	"game-recommender/core/monitoring"
	"game-recommender/core/recommender"
)

// Status is the registry lifecycle state
type Status string

const (
	StatusNotLoaded Status = "not_loaded"
	StatusLoading   Status = "loading"
	StatusLoaded    Status = "loaded"
	StatusError     Status = "error"
)

// Registry holds the currently-serving model. It is written only by the
// training job and read by the serving path, so a single RWMutex around an
// atomic artifact swap is the whole discipline.
type Registry struct {
	mu       sync.RWMutex
	status   Status
	progress float64
	artifact *recommender.Artifact
	logger   *zap.Logger
}

// New creates a registry in the not_loaded state
func New(logger *zap.Logger) *Registry {
	return &Registry{
		status: StatusNotLoaded,
		logger: logger.Named("registry"),
	}
}

// Snapshot returns the current status and progress
func (r *Registry) Snapshot() (Status, float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status, r.progress
}

// Artifact returns the installed model, or ErrModelNotLoaded when no
// training run has completed yet
func (r *Registry) Artifact() (*recommender.Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.status != StatusLoaded || r.artifact == nil {
		return nil, models.ErrModelNotLoaded
	}
	return r.artifact, nil
}

// BeginTraining marks the registry as loading. A registry that is already
// serving a model stays loaded so requests keep being answered by the
// previous artifact while the new one trains.
func (r *Registry) BeginTraining() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusLoaded {
		return
	}
	r.status = StatusLoading
	r.progress = 0
}

// SetProgress reports training progress while no model is serving yet.
// Progress never decreases and stays below 100 until installation.
func (r *Registry) SetProgress(p float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusLoading {
		return
	}
	if p > 99 {
		p = 99
	}
	if p > r.progress {
		r.progress = p
	}
}

// Install swaps in a fully-built artifact and marks the registry loaded.
// The previous artifact, if any, is released only after the swap.
func (r *Registry) Install(artifact *recommender.Artifact) error {
	if artifact == nil {
		return fmt.Errorf("nil artifact: %w", models.ErrInsufficientData)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifact = artifact
	r.status = StatusLoaded
	r.progress = 100

	monitoring.SetModelLoaded(true)
	r.logger.Info("model installed", zap.String("version", artifact.Version))
	return nil
}

// Fail records a failed training run. A registry that is already serving
// a model is left untouched; one that never loaded moves to the error
// state so clients can tell a failed first train from one in flight.
func (r *Registry) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusLoaded {
		return
	}
	r.status = StatusError
	r.logger.Warn("training failed before any model was installed", zap.Error(err))
}
