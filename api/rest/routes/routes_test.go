package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game-recommender/core/catalog"
	"game-recommender/core/evaluator"
	"game-recommender/core/models"
	"game-recommender/core/recommender"
	"game-recommender/core/registry"
	"game-recommender/core/repository"
	"game-recommender/core/scheduler"
)

type memorySource struct{}

func (memorySource) LoadCatalog() (*catalog.Catalog, error) {
	return catalog.New([]models.Game{
		{ID: 1, Title: "Alpha", ProductType: models.ProductTypeGame, ContentText: "action adventure"},
		{ID: 2, Title: "Alpha Soundtrack", ProductType: models.ProductTypeSoundtrack, ContentText: "action adventure music"},
		{ID: 3, Title: "Beta", ProductType: models.ProductTypeGame, ContentText: "action rpg"},
		{ID: 4, Title: "Gamma", ProductType: models.ProductTypeGame, ContentText: "puzzle strategy"},
	}), nil
}

func (memorySource) LoadInteractions() ([]models.Interaction, error) {
	return []models.Interaction{
		{UserID: 1, ItemID: 3, Signal: 5},
		{UserID: 1, ItemID: 1, Signal: 3},
		{UserID: 2, ItemID: 1, Signal: 4},
		{UserID: 2, ItemID: 4, Signal: 3.5},
	}, nil
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	logger := zap.NewNop()
	reg := registry.New(logger)
	trainer := recommender.NewTrainer(memorySource{}, recommender.TrainerConfig{
		Factors: 2, MaxIter: 50, RandomSeed: 42, Alpha: 0.5,
	}, logger)
	manager := scheduler.NewManager(repository.NewMemoryJobStore(), reg, trainer,
		evaluator.New(42, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	manager.Start(ctx)
	t.Cleanup(func() {
		cancel()
		manager.Stop()
	})

	r := mux.NewRouter()
	SetupRoutes(r, manager, reg, logger)
	return r
}

func do(t *testing.T, r *mux.Router, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

// waitForJob polls GET /jobs/{id} until the job reaches a terminal status
func waitForJob(t *testing.T, r *mux.Router, id float64) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec, body := do(t, r, "GET", fmt.Sprintf("/jobs/%.0f", id))
		require.Equal(t, http.StatusOK, rec.Code)
		status := body["status"].(string)
		if status == string(models.JobStatusCompleted) || status == string(models.JobStatusFailed) {
			return body
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %.0f never finished", id)
	return nil
}

func trainAndWait(t *testing.T, r *mux.Router) map[string]interface{} {
	t.Helper()
	rec, body := do(t, r, "POST", "/train")
	require.Equal(t, http.StatusCreated, rec.Code)
	done := waitForJob(t, r, body["id"].(float64))
	require.Equal(t, string(models.JobStatusCompleted), done["status"])
	return done
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	rec, _ := do(t, r, "GET", "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestStatusLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec, body := do(t, r, "GET", "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(registry.StatusNotLoaded), body["status"])
	assert.Equal(t, 0.0, body["progress"])

	trainAndWait(t, r)

	rec, body = do(t, r, "GET", "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(registry.StatusLoaded), body["status"])
	assert.Equal(t, 100.0, body["progress"])
}

func TestTrainReturnsPendingJob(t *testing.T) {
	r := newTestRouter(t)

	rec, body := do(t, r, "POST", "/train")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, string(models.JobTypeTraining), body["type"])
	assert.Equal(t, string(models.JobStatusPending), body["status"])
	assert.Equal(t, 0.0, body["progress"])
	assert.NotZero(t, body["id"])
}

func TestRecommendEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("model not loaded", func(t *testing.T) {
		rec, body := do(t, r, "GET", "/recommend?user_id=1&seed_title=Alpha")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, body["error"], "model not loaded")
	})

	trainAndWait(t, r)

	t.Run("missing seed_title", func(t *testing.T) {
		rec, _ := do(t, r, "GET", "/recommend?user_id=1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-positive n", func(t *testing.T) {
		rec, _ := do(t, r, "GET", "/recommend?user_id=1&seed_title=Alpha&n=0")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown seed", func(t *testing.T) {
		rec, _ := do(t, r, "GET", "/recommend?user_id=1&seed_title=Nonexistent")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		rec, body := do(t, r, "GET", "/recommend?user_id=1&seed_title=Alpha&n=5")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1.0, body["user_id"])
		assert.Equal(t, "Alpha", body["seed_title"])

		recs, ok := body["recommendations"].([]interface{})
		require.True(t, ok)
		require.NotEmpty(t, recs)
		assert.NotContains(t, recs, "Alpha", "seed is never recommended")
		assert.NotContains(t, recs, "Alpha Soundtrack", "soundtracks are filtered out")
	})
}

func TestSearchGamesEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("model not loaded", func(t *testing.T) {
		rec, _ := do(t, r, "GET", "/games/search?q=alpha")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	trainAndWait(t, r)

	t.Run("missing q", func(t *testing.T) {
		rec, _ := do(t, r, "GET", "/games/search")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("matches are case-insensitive", func(t *testing.T) {
		rec, body := do(t, r, "GET", "/games/search?q=ALPHA")
		require.Equal(t, http.StatusOK, rec.Code)
		games := body["games"].([]interface{})
		assert.Contains(t, games, "Alpha")
		assert.Contains(t, games, "Alpha Soundtrack")
	})

	t.Run("no matches yields empty list", func(t *testing.T) {
		rec, body := do(t, r, "GET", "/games/search?q=zzz")
		require.Equal(t, http.StatusOK, rec.Code)
		games, ok := body["games"].([]interface{})
		require.True(t, ok)
		assert.Empty(t, games)
	})

	t.Run("limit caps results", func(t *testing.T) {
		rec, body := do(t, r, "GET", "/games/search?q=a&limit=1")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["games"].([]interface{}), 1)
	})
}

func TestEvaluateEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("status before any run", func(t *testing.T) {
		rec, body := do(t, r, "GET", "/evaluate/status")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "not started", body["status"])
		assert.Equal(t, 0.0, body["progress"])
		assert.Nil(t, body["results"])
	})

	t.Run("missing max_users", func(t *testing.T) {
		rec, _ := do(t, r, "POST", "/evaluate")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed max_users", func(t *testing.T) {
		rec, _ := do(t, r, "POST", "/evaluate?max_users=many")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	trainAndWait(t, r)

	t.Run("full run", func(t *testing.T) {
		rec, body := do(t, r, "POST", "/evaluate?max_users=10&k=3")
		require.Equal(t, http.StatusCreated, rec.Code)
		done := waitForJob(t, r, body["id"].(float64))
		require.Equal(t, string(models.JobStatusCompleted), done["status"])

		results, ok := done["results"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, 3.0, results["k"])

		rec, body = do(t, r, "GET", "/evaluate/status")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, string(models.JobStatusCompleted), body["status"])
		assert.Equal(t, 100.0, body["progress"])
		assert.NotNil(t, body["results"])
	})
}

func TestJobsEndpoints(t *testing.T) {
	r := newTestRouter(t)

	t.Run("malformed id", func(t *testing.T) {
		rec, _ := do(t, r, "GET", "/jobs/abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, _ := do(t, r, "GET", "/jobs/999")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	first := trainAndWait(t, r)
	second := trainAndWait(t, r)

	t.Run("list newest first", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/jobs", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var jobs []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
		require.Len(t, jobs, 2)
		assert.Equal(t, second["id"], jobs[0]["id"])
		assert.Equal(t, first["id"], jobs[1]["id"])
	})

	t.Run("delete finished job", func(t *testing.T) {
		rec, body := do(t, r, "DELETE", fmt.Sprintf("/jobs/%.0f", first["id"].(float64)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, first["id"], body["deleted"])

		rec, _ = do(t, r, "GET", fmt.Sprintf("/jobs/%.0f", first["id"].(float64)))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = do(t, r, "DELETE", fmt.Sprintf("/jobs/%.0f", first["id"].(float64)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
