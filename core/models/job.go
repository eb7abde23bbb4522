package models

import "time"

// Job represents a unit of background work (training or evaluation)
// submitted to the service
type Job struct {
	ID           int64
	Type         JobType
	Status       JobStatus
	Progress     float64 // 0-100, monotonically non-decreasing
	Params       JobParams
	Results      *EvaluationResult
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// JobType represents the type of job
type JobType string

const (
	JobTypeTraining   JobType = "training"
	JobTypeEvaluation JobType = "evaluation"
)

// JobStatus represents the current status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobParams holds the per-type job options. Exactly one section is set,
// keyed by the job's Type.
type JobParams struct {
	Training   *TrainingParams   `json:"training,omitempty"`
	Evaluation *EvaluationParams `json:"evaluation,omitempty"`
}

// TrainingParams holds training job options. Training exposes no tunables
// at the API boundary; model hyperparameters are fixed in configuration.
type TrainingParams struct{}

// EvaluationParams holds evaluation job options
type EvaluationParams struct {
	MaxUsers int `json:"max_users"`
	K        int `json:"k"`
}

// EvaluationResult holds the metrics produced by a completed evaluation job
type EvaluationResult struct {
	NumUsersEvaluated int     `json:"num_users_evaluated"`
	PrecisionAtK      float64 `json:"precision_at_k"`
	Coverage          float64 `json:"coverage"`
	Novelty           float64 `json:"novelty"`
	K                 int     `json:"k"`
}

// Clone returns a deep copy of the job so callers get snapshots rather
// than worker-owned state
func (j *Job) Clone() *Job {
	c := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	if j.Params.Training != nil {
		p := *j.Params.Training
		c.Params.Training = &p
	}
	if j.Params.Evaluation != nil {
		p := *j.Params.Evaluation
		c.Params.Evaluation = &p
	}
	if j.Results != nil {
		r := *j.Results
		c.Results = &r
	}
	return &c
}
