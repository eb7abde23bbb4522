package repository

import "game-recommender/core/models"

// JobStore persists jobs. Implementations return ErrNotFound for unknown
// ids and assign monotonic ids starting at 1 on Create. Callers receive
// and pass copies; the scheduler serializes writers.
type JobStore interface {
	// Create assigns the next id and persists the job
	Create(job *models.Job) error
	// Get returns a copy of the job
	Get(id int64) (*models.Job, error)
	// List returns copies of all jobs ordered by id ascending
	List() ([]*models.Job, error)
	// Update overwrites the stored job with the given state
	Update(job *models.Job) error
	// Delete removes the job permanently
	Delete(id int64) error
	// LatestByType returns the most recently created job of the type
	LatestByType(jobType models.JobType) (*models.Job, error)
	// Close releases any underlying resources
	Close() error
}
