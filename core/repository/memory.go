package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"game-recommender/core/models"
)

// MemoryJobStore is the in-process JobStore used when no database is
// configured, and by tests
type MemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[int64]*models.Job
	nextID int64
}

// NewMemoryJobStore creates an empty in-memory store
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs:   make(map[int64]*models.Job),
		nextID: 1,
	}
}

// Create assigns the next id and stores a copy of the job
func (s *MemoryJobStore) Create(job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.ID = s.nextID
	s.nextID++
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a copy of the job
func (s *MemoryJobStore) Get(id int64) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %d: %w", id, models.ErrNotFound)
	}
	return job.Clone(), nil
}

// List returns copies of all jobs, id ascending
func (s *MemoryJobStore) List() ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

// Update overwrites the stored job
func (s *MemoryJobStore) Update(job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("job %d: %w", job.ID, models.ErrNotFound)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Delete removes the job
func (s *MemoryJobStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("job %d: %w", id, models.ErrNotFound)
	}
	delete(s.jobs, id)
	return nil
}

// LatestByType returns the highest-id job of the given type
func (s *MemoryJobStore) LatestByType(jobType models.JobType) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Job
	for _, job := range s.jobs {
		if job.Type != jobType {
			continue
		}
		if latest == nil || job.ID > latest.ID {
			latest = job
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no %s job: %w", jobType, models.ErrNotFound)
	}
	return latest.Clone(), nil
}

// Close is a no-op for the in-memory store
func (s *MemoryJobStore) Close() error { return nil }
