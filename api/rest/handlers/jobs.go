package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"game-recommender/core/models"
	"game-recommender/core/scheduler"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	manager *scheduler.Manager
	logger  *zap.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(manager *scheduler.Manager, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		manager: manager,
		logger:  logger.Named("jobs"),
	}
}

// jobResponse is the wire representation of a job
type jobResponse struct {
	ID           int64                    `json:"id"`
	Type         models.JobType           `json:"type"`
	Status       models.JobStatus         `json:"status"`
	Progress     float64                  `json:"progress"`
	Params       models.JobParams         `json:"params"`
	Results      *models.EvaluationResult `json:"results,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	StartedAt    *time.Time               `json:"started_at,omitempty"`
	FinishedAt   *time.Time               `json:"finished_at,omitempty"`
}

func toJobResponse(job *models.Job) jobResponse {
	return jobResponse{
		ID:           job.ID,
		Type:         job.Type,
		Status:       job.Status,
		Progress:     job.Progress,
		Params:       job.Params,
		Results:      job.Results,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
	}
}

// Train handles POST /train. The job is queued; training never blocks the
// request.
func (h *JobHandler) Train(w http.ResponseWriter, r *http.Request) {
	job, err := h.manager.Create(models.JobTypeTraining, models.JobParams{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobResponse(job))
}

// Evaluate handles POST /evaluate with max_users and optional k query
// parameters
func (h *JobHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	maxUsers, err := intQuery(r, "max_users", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	k, err := intQuery(r, "k", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := h.manager.Create(models.JobTypeEvaluation, models.JobParams{
		Evaluation: &models.EvaluationParams{MaxUsers: maxUsers, K: k},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobResponse(job))
}

// EvaluateStatus handles GET /evaluate/status, reporting the most recent
// evaluation job
func (h *JobHandler) EvaluateStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.manager.LatestByType(models.JobTypeEvaluation)
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "not started",
			"progress": 0,
			"results":  nil,
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   job.Status,
		"progress": job.Progress,
		"results":  job.Results,
	})
}

// ListJobs handles GET /jobs, most recently created first
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.manager.List()
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]jobResponse, 0, len(jobs))
	for i := len(jobs) - 1; i >= 0; i-- {
		items = append(items, toJobResponse(jobs[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

// GetJob handles GET /jobs/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := h.manager.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}

// DeleteJob handles DELETE /jobs/{id}
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.manager.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, models.ErrInvalidParams
	}
	return id, nil
}

// intQuery parses an optional integer query parameter. Missing values
// fall back to def; malformed values are InvalidParams.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.ErrInvalidParams
	}
	return n, nil
}
