package evaluator

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"game-recommender/core/models"
	"game-recommender/core/recommender"
)

// Evaluator measures ranking quality of a trained model with a
// leave-one-out protocol: per sampled user one known-positive interaction
// is withheld and the model is asked to rank candidates without it.
type Evaluator struct {
	sampleSeed int64
	logger     *zap.Logger
}

// New creates an evaluator. The sample seed fixes user sampling so runs
// over the same model and data reproduce.
func New(sampleSeed int64, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		sampleSeed: sampleSeed,
		logger:     logger.Named("evaluator"),
	}
}

// Evaluate runs the offline metrics over up to maxUsers sampled users.
// Progress is reported proportionally to users processed.
func (e *Evaluator) Evaluate(ctx context.Context, art *recommender.Artifact, maxUsers, k int, progress func(float64)) (*models.EvaluationResult, error) {
	if art == nil {
		return nil, models.ErrModelNotLoaded
	}
	if maxUsers <= 0 || k <= 0 {
		return nil, fmt.Errorf("max_users and k must be positive: %w", models.ErrInvalidParams)
	}
	if progress == nil {
		progress = func(float64) {}
	}

	users := art.Users()
	if len(users) == 0 {
		return nil, fmt.Errorf("model has no users: %w", models.ErrInsufficientData)
	}

	sample := make([]int64, len(users))
	copy(sample, users)
	rng := rand.New(rand.NewSource(e.sampleSeed))
	rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	if len(sample) > maxUsers {
		sample = sample[:maxUsers]
	}

	fallbackSeed := art.MostPopularItem()
	cat := art.Catalog()

	evaluated := 0
	hits := 0
	covered := make(map[int64]struct{})
	noveltySum := 0.0

	for i, userID := range sample {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		withheld, seedID, ok := pickWithheld(art, userID, fallbackSeed)
		if !ok {
			progress(float64(i+1) / float64(len(sample)) * 100)
			continue
		}

		ranked := art.Rank(userID, seedID, k, withheld)

		userNovelty := 0.0
		novelItems := 0
		for _, s := range ranked {
			if s.ID == withheld {
				hits++
			}
			covered[s.ID] = struct{}{}
			if pop := art.Popularity(s.ID); pop > 0 {
				userNovelty += -math.Log2(pop)
				novelItems++
			}
		}
		if novelItems > 0 {
			noveltySum += userNovelty / float64(novelItems)
		}
		evaluated++

		progress(float64(i+1) / float64(len(sample)) * 100)
	}

	if evaluated == 0 {
		return nil, fmt.Errorf("no users with a positive interaction to withhold: %w", models.ErrInsufficientData)
	}

	result := &models.EvaluationResult{
		NumUsersEvaluated: evaluated,
		PrecisionAtK:      float64(hits) / float64(evaluated),
		Coverage:          float64(len(covered)) / float64(cat.Len()),
		Novelty:           noveltySum / float64(evaluated),
		K:                 k,
	}

	e.logger.Info("evaluation finished",
		zap.Int("users", evaluated),
		zap.Float64("precision_at_k", result.PrecisionAtK),
		zap.Float64("coverage", result.Coverage),
		zap.Float64("novelty", result.Novelty))
	return result, nil
}

// pickWithheld chooses the user's highest-signal liked item to withhold
// and a remaining liked item as ranking seed, falling back to the global
// most-popular item when the user has nothing else
func pickWithheld(art *recommender.Artifact, userID, fallbackSeed int64) (withheld, seedID int64, ok bool) {
	hist := art.History(userID)

	var liked []recommender.ItemSignal
	for _, h := range hist {
		if h.Signal >= recommender.LikedThreshold {
			liked = append(liked, h)
		}
	}
	if len(liked) == 0 {
		return 0, 0, false
	}

	withheld = liked[0].ItemID
	if len(liked) > 1 {
		seedID = liked[1].ItemID
	} else {
		seedID = fallbackSeed
		if seedID == withheld && len(hist) > 1 {
			seedID = hist[1].ItemID
		}
	}
	if seedID == withheld {
		// seeding with the withheld item would exclude it from ranking,
		// making a hit impossible; skip the user instead of biasing the metric
		return 0, 0, false
	}
	return withheld, seedID, true
}
