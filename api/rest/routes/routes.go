package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"game-recommender/api/rest/handlers"
	"game-recommender/core/registry"
	"game-recommender/core/scheduler"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, manager *scheduler.Manager, reg *registry.Registry, logger *zap.Logger) {
	jobHandler := handlers.NewJobHandler(manager, logger)
	recHandler := handlers.NewRecommendHandler(reg, logger)

	// Model lifecycle and serving
	r.HandleFunc("/status", recHandler.Status).Methods("GET")
	r.HandleFunc("/recommend", recHandler.Recommend).Methods("GET")
	r.HandleFunc("/games/search", recHandler.SearchGames).Methods("GET")

	// Jobs
	r.HandleFunc("/train", jobHandler.Train).Methods("POST")
	r.HandleFunc("/evaluate", jobHandler.Evaluate).Methods("POST")
	r.HandleFunc("/evaluate/status", jobHandler.EvaluateStatus).Methods("GET")
	r.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	r.HandleFunc("/jobs/{id}", jobHandler.GetJob).Methods("GET")
	r.HandleFunc("/jobs/{id}", jobHandler.DeleteJob).Methods("DELETE")

	// Operational
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}
