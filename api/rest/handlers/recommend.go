package handlers

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"game-recommender/core/models"
	"game-recommender/core/monitoring"
	"game-recommender/core/registry"
)

const (
	defaultRecommendN  = 10
	maxSearchLimit     = 10
	defaultSearchLimit = 10
)

// RecommendHandler serves the recommendation and catalog-search endpoints.
// Both read only from the registry snapshot; they never touch jobs.
type RecommendHandler struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// NewRecommendHandler creates a new recommend handler
func NewRecommendHandler(reg *registry.Registry, logger *zap.Logger) *RecommendHandler {
	return &RecommendHandler{
		registry: reg,
		logger:   logger.Named("recommend"),
	}
}

// Status handles GET /status, reporting the registry lifecycle
func (h *RecommendHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, progress := h.registry.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"progress": progress,
	})
}

// Recommend handles GET /recommend with user_id, seed_title and n query
// parameters
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := intQuery(r, "user_id", 0)
	if err != nil {
		monitoring.RecommendServed("invalid", time.Since(start))
		writeError(w, err)
		return
	}
	n, err := intQuery(r, "n", defaultRecommendN)
	if err != nil || n <= 0 {
		monitoring.RecommendServed("invalid", time.Since(start))
		writeError(w, fmt.Errorf("n must be positive: %w", models.ErrInvalidParams))
		return
	}
	seedTitle := r.URL.Query().Get("seed_title")
	if seedTitle == "" {
		monitoring.RecommendServed("invalid", time.Since(start))
		writeError(w, fmt.Errorf("seed_title is required: %w", models.ErrInvalidParams))
		return
	}

	artifact, err := h.registry.Artifact()
	if err != nil {
		monitoring.RecommendServed("model_not_loaded", time.Since(start))
		writeError(w, err)
		return
	}

	recs, err := artifact.Recommend(int64(userID), seedTitle, n)
	if err != nil {
		monitoring.RecommendServed("error", time.Since(start))
		writeError(w, err)
		return
	}

	monitoring.RecommendServed("ok", time.Since(start))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         userID,
		"seed_title":      seedTitle,
		"recommendations": recs,
	})
}

// SearchGames handles GET /games/search with q and limit query parameters
func (h *RecommendHandler) SearchGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, fmt.Errorf("q is required: %w", models.ErrInvalidParams))
		return
	}
	limit, err := intQuery(r, "limit", defaultSearchLimit)
	if err != nil || limit <= 0 {
		writeError(w, fmt.Errorf("limit must be positive: %w", models.ErrInvalidParams))
		return
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	artifact, err := h.registry.Artifact()
	if err != nil {
		writeError(w, err)
		return
	}

	titles := artifact.Catalog().Search(q, limit)
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"games": titles})
}
