package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/lib/pq"

	"game-recommender/core/models"
)

const jobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id            BIGSERIAL PRIMARY KEY,
	type          TEXT NOT NULL,
	status        TEXT NOT NULL,
	progress      DOUBLE PRECISION NOT NULL DEFAULT 0,
	params        JSONB,
	results       JSONB,
	error_message TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	started_at    TIMESTAMPTZ,
	finished_at   TIMESTAMPTZ
)`

// PostgresJobStore persists jobs in a Postgres jobs table
type PostgresJobStore struct {
	db *sql.DB
}

// NewPostgresJobStore connects to the database and ensures the jobs table
// exists
func NewPostgresJobStore(databaseURL string) (*PostgresJobStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(jobsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create jobs table: %w", err)
	}
	return &PostgresJobStore{db: db}, nil
}

// Create inserts the job and fills in its assigned id
func (s *PostgresJobStore) Create(job *models.Job) error {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO jobs (type, status, progress, params, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return s.db.QueryRow(query, job.Type, job.Status, job.Progress, params, job.CreatedAt).Scan(&job.ID)
}

// Get retrieves a job by id
func (s *PostgresJobStore) Get(id int64) (*models.Job, error) {
	query := `
		SELECT id, type, status, progress, params, results, error_message,
			created_at, started_at, finished_at
		FROM jobs
		WHERE id = $1
	`
	job, err := scanJob(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d: %w", id, models.ErrNotFound)
	}
	return job, err
}

// List returns all jobs ordered by id ascending
func (s *PostgresJobStore) List() ([]*models.Job, error) {
	query := `
		SELECT id, type, status, progress, params, results, error_message,
			created_at, started_at, finished_at
		FROM jobs
		ORDER BY id ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Update overwrites the stored job state
func (s *PostgresJobStore) Update(job *models.Job) error {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	var results []byte
	if job.Results != nil {
		results, err = json.Marshal(job.Results)
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	}

	query := `
		UPDATE jobs
		SET status = $1, progress = $2, params = $3, results = $4,
			error_message = $5, started_at = $6, finished_at = $7
		WHERE id = $8
	`
	res, err := s.db.Exec(query, job.Status, job.Progress, params,
		nullBytes(results), nullString(job.ErrorMessage),
		nullTime(job.StartedAt), nullTime(job.FinishedAt), job.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %d: %w", job.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes the job row
func (s *PostgresJobStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// LatestByType returns the most recently created job of the type
func (s *PostgresJobStore) LatestByType(jobType models.JobType) (*models.Job, error) {
	query := `
		SELECT id, type, status, progress, params, results, error_message,
			created_at, started_at, finished_at
		FROM jobs
		WHERE type = $1
		ORDER BY id DESC
		LIMIT 1
	`
	job, err := scanJob(s.db.QueryRow(query, jobType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no %s job: %w", jobType, models.ErrNotFound)
	}
	return job, err
}

// Close closes the database connection
func (s *PostgresJobStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var params, results []byte
	var errorMessage sql.NullString
	var startedAt, finishedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.Type,
		&job.Status,
		&job.Progress,
		&params,
		&results,
		&errorMessage,
		&job.CreatedAt,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		if err := json.Unmarshal(params, &job.Params); err != nil {
			return nil, fmt.Errorf("failed to decode params for job %d: %w", job.ID, err)
		}
	}
	if len(results) > 0 {
		job.Results = &models.EvaluationResult{}
		if err := json.Unmarshal(results, job.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results for job %d: %w", job.ID, err)
		}
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}

	return &job, nil
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
