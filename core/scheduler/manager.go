package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"game-recommender/core/evaluator"
	"game-recommender/core/models"
	"game-recommender/core/monitoring"
	"game-recommender/core/recommender"
	"game-recommender/core/registry"
	"game-recommender/core/repository"
)

const defaultEvaluationK = 10

// Manager owns job lifecycle: validation on creation, a FIFO queue, and
// the single worker that executes training and evaluation pipelines.
// One job runs at a time system-wide, so the registry only ever has one
// writer.
type Manager struct {
	store     repository.JobStore
	queue     *JobQueue
	registry  *registry.Registry
	trainer   *recommender.Trainer
	evaluator *evaluator.Evaluator
	logger    *zap.Logger

	mu sync.Mutex // serializes job state transitions against Delete
	wg sync.WaitGroup
}

// NewManager creates a job manager
func NewManager(
	store repository.JobStore,
	reg *registry.Registry,
	trainer *recommender.Trainer,
	eval *evaluator.Evaluator,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		store:     store,
		queue:     NewJobQueue(),
		registry:  reg,
		trainer:   trainer,
		evaluator: eval,
		logger:    logger.Named("scheduler"),
	}
}

// Start launches the worker. The worker drains the queue in FIFO order
// and exits once the context is cancelled and the in-flight job finished.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			id, ok := m.queue.Pop()
			if !ok {
				return
			}
			m.execute(ctx, id)
		}
	}()

	go func() {
		<-ctx.Done()
		m.queue.Close()
	}()
}

// Stop closes the queue and waits for the worker to drain
func (m *Manager) Stop() {
	m.queue.Close()
	m.wg.Wait()
}

// Create validates params for the job type, persists the job as pending
// and enqueues it. Submission never blocks on execution.
func (m *Manager) Create(jobType models.JobType, params models.JobParams) (*models.Job, error) {
	switch jobType {
	case models.JobTypeTraining:
		if params.Evaluation != nil {
			return nil, fmt.Errorf("training jobs take no evaluation params: %w", models.ErrInvalidParams)
		}
		if params.Training == nil {
			params.Training = &models.TrainingParams{}
		}
	case models.JobTypeEvaluation:
		if params.Evaluation == nil {
			return nil, fmt.Errorf("evaluation jobs require params: %w", models.ErrInvalidParams)
		}
		if params.Evaluation.MaxUsers <= 0 {
			return nil, fmt.Errorf("max_users must be positive, got %d: %w", params.Evaluation.MaxUsers, models.ErrInvalidParams)
		}
		if params.Evaluation.K == 0 {
			params.Evaluation.K = defaultEvaluationK
		}
		if params.Evaluation.K < 0 {
			return nil, fmt.Errorf("k must be positive, got %d: %w", params.Evaluation.K, models.ErrInvalidParams)
		}
	default:
		return nil, fmt.Errorf("unknown job type %q: %w", jobType, models.ErrInvalidParams)
	}

	job := &models.Job{
		Type:      jobType,
		Status:    models.JobStatusPending,
		Progress:  0,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Create(job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	m.queue.Enqueue(job.ID)
	monitoring.JobCreated(jobType)
	m.logger.Info("job accepted",
		zap.Int64("job_id", job.ID),
		zap.String("type", string(jobType)),
		zap.Int("queued", m.queue.Len()))

	return job.Clone(), nil
}

// Get returns a snapshot of the job
func (m *Manager) Get(id int64) (*models.Job, error) {
	return m.store.Get(id)
}

// List returns snapshots of all jobs, id ascending
func (m *Manager) List() ([]*models.Job, error) {
	return m.store.List()
}

// LatestByType returns the most recently created job of the given type
func (m *Manager) LatestByType(jobType models.JobType) (*models.Job, error) {
	return m.store.LatestByType(jobType)
}

// Delete removes a job. Running jobs cannot be deleted; there is no stop
// operation, so deletion would orphan the worker's writes.
func (m *Manager) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := m.store.Get(id)
	if err != nil {
		return err
	}
	if job.Status == models.JobStatusRunning {
		return fmt.Errorf("job %d is running: %w", id, models.ErrConflict)
	}
	return m.store.Delete(id)
}

// execute runs a single job through its pipeline
func (m *Manager) execute(ctx context.Context, id int64) {
	job, ok := m.markRunning(id)
	if !ok {
		return
	}

	logger := m.logger.With(zap.Int64("job_id", id), zap.String("type", string(job.Type)))
	logger.Info("job started")
	start := time.Now()

	var (
		results *models.EvaluationResult
		err     error
	)
	switch job.Type {
	case models.JobTypeTraining:
		err = m.runTraining(ctx, id)
	case models.JobTypeEvaluation:
		results, err = m.runEvaluation(ctx, id, job.Params.Evaluation)
	default:
		err = fmt.Errorf("unknown job type %q: %w", job.Type, models.ErrInvalidParams)
	}

	status := models.JobStatusCompleted
	if err != nil {
		status = models.JobStatusFailed
		m.markFailed(id, err)
		logger.Warn("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	} else {
		m.markCompleted(id, results)
		logger.Info("job completed", zap.Duration("elapsed", time.Since(start)))
	}
	monitoring.JobFinished(job.Type, status, time.Since(start))
}

// runTraining builds a new artifact and installs it. Failures leave the
// registry serving whatever it served before.
func (m *Manager) runTraining(ctx context.Context, id int64) error {
	m.registry.BeginTraining()
	report := m.progressReporter(id)

	artifact, err := m.trainer.Train(ctx, func(p float64) {
		report(p)
		m.registry.SetProgress(p)
	})
	if err != nil {
		m.registry.Fail(err)
		return err
	}
	return m.registry.Install(artifact)
}

// runEvaluation measures the currently installed model. With no model
// installed the job fails immediately.
func (m *Manager) runEvaluation(ctx context.Context, id int64, params *models.EvaluationParams) (*models.EvaluationResult, error) {
	if params == nil {
		return nil, fmt.Errorf("evaluation job %d has no params: %w", id, models.ErrInvalidParams)
	}
	artifact, err := m.registry.Artifact()
	if err != nil {
		return nil, err
	}
	return m.evaluator.Evaluate(ctx, artifact, params.MaxUsers, params.K, m.progressReporter(id))
}

// progressReporter returns a callback that persists monotonically
// non-decreasing progress, capped below 100 until completion
func (m *Manager) progressReporter(id int64) func(float64) {
	last := 0.0
	return func(p float64) {
		if p > 99 {
			p = 99
		}
		if p <= last {
			return
		}
		last = p

		m.mu.Lock()
		defer m.mu.Unlock()
		job, err := m.store.Get(id)
		if err != nil || job.Status != models.JobStatusRunning {
			return
		}
		job.Progress = p
		if err := m.store.Update(job); err != nil {
			m.logger.Warn("failed to persist progress", zap.Int64("job_id", id), zap.Error(err))
		}
	}
}

func (m *Manager) markRunning(id int64) (*models.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := m.store.Get(id)
	if err != nil {
		// deleted while queued
		if !errors.Is(err, models.ErrNotFound) {
			m.logger.Error("failed to load queued job", zap.Int64("job_id", id), zap.Error(err))
		}
		return nil, false
	}
	if job.Status != models.JobStatusPending {
		return nil, false
	}

	now := time.Now().UTC()
	job.Status = models.JobStatusRunning
	job.StartedAt = &now
	if err := m.store.Update(job); err != nil {
		m.logger.Error("failed to mark job running", zap.Int64("job_id", id), zap.Error(err))
		return nil, false
	}
	return job, true
}

func (m *Manager) markCompleted(id int64, results *models.EvaluationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := m.store.Get(id)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	job.Status = models.JobStatusCompleted
	job.Progress = 100
	job.Results = results
	job.FinishedAt = &now
	if err := m.store.Update(job); err != nil {
		m.logger.Error("failed to mark job completed", zap.Int64("job_id", id), zap.Error(err))
	}
}

func (m *Manager) markFailed(id int64, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := m.store.Get(id)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	job.Status = models.JobStatusFailed
	job.ErrorMessage = cause.Error()
	job.FinishedAt = &now
	if err := m.store.Update(job); err != nil {
		m.logger.Error("failed to mark job failed", zap.Int64("job_id", id), zap.Error(err))
	}
}
