package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"game-recommender/core/models"
)

var (
	jobsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_jobs_created_total",
			Help: "Jobs accepted into the queue",
		},
		[]string{"type"},
	)

	jobsFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_jobs_finished_total",
			Help: "Jobs reaching a terminal state",
		},
		[]string{"type", "status"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_job_duration_seconds",
			Help:    "Wall time from job start to terminal state",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
		},
		[]string{"type"},
	)

	recommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_recommend_requests_total",
			Help: "recommend requests served",
		},
		[]string{"outcome"},
	)

	recommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_recommend_duration_seconds",
			Help:    "recommend request latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	modelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_model_loaded",
			Help: "1 when a trained model is installed and serving",
		},
	)
)

// JobCreated records a job accepted into the queue
func JobCreated(jobType models.JobType) {
	jobsCreatedTotal.WithLabelValues(string(jobType)).Inc()
}

// JobFinished records a job reaching a terminal state
func JobFinished(jobType models.JobType, status models.JobStatus, elapsed time.Duration) {
	jobsFinishedTotal.WithLabelValues(string(jobType), string(status)).Inc()
	jobDuration.WithLabelValues(string(jobType)).Observe(elapsed.Seconds())
}

// RecommendServed records one recommend request and its latency
func RecommendServed(outcome string, elapsed time.Duration) {
	recommendRequestsTotal.WithLabelValues(outcome).Inc()
	recommendDuration.Observe(elapsed.Seconds())
}

// SetModelLoaded flips the model-serving gauge
func SetModelLoaded(loaded bool) {
	if loaded {
		modelLoaded.Set(1)
	} else {
		modelLoaded.Set(0)
	}
}
