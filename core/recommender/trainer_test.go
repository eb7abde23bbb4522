package recommender

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game-recommender/core/models"
)

func TestTrainInsufficientData(t *testing.T) {
	trainer := NewTrainer(fixtureSource{
		games: fixture().games,
	}, TrainerConfig{Factors: 2, MaxIter: 10, RandomSeed: 42, Alpha: 0.5}, zap.NewNop())

	_, err := trainer.Train(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestTrainEmptyCatalog(t *testing.T) {
	trainer := NewTrainer(fixtureSource{
		interactions: fixture().interactions,
	}, TrainerConfig{Factors: 2, MaxIter: 10, RandomSeed: 42, Alpha: 0.5}, zap.NewNop())

	_, err := trainer.Train(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestTrainProgress(t *testing.T) {
	trainer := NewTrainer(fixture(), TrainerConfig{Factors: 2, MaxIter: 50, RandomSeed: 42, Alpha: 0.5}, zap.NewNop())

	var reported []float64
	_, err := trainer.Train(context.Background(), func(p float64) {
		reported = append(reported, p)
	})
	require.NoError(t, err)
	require.NotEmpty(t, reported)

	for i, p := range reported {
		assert.Less(t, p, 100.0, "pipeline never reports 100 itself")
		if i > 0 {
			assert.GreaterOrEqual(t, p, reported[i-1], "progress never decreases")
		}
	}
	assert.GreaterOrEqual(t, reported[len(reported)-1], progressContentBuilt)
}

func TestTrainDeterministicArtifacts(t *testing.T) {
	cfg := TrainerConfig{Factors: 2, MaxIter: 100, RandomSeed: 42, Alpha: 0.5}
	a := NewTrainer(fixture(), cfg, zap.NewNop())
	b := NewTrainer(fixture(), cfg, zap.NewNop())

	artA, err := a.Train(context.Background(), nil)
	require.NoError(t, err)
	artB, err := b.Train(context.Background(), nil)
	require.NoError(t, err)

	recsA, err := artA.Recommend(2, "Alpha", 5)
	require.NoError(t, err)
	recsB, err := artB.Recommend(2, "Alpha", 5)
	require.NoError(t, err)
	assert.Equal(t, recsA, recsB, "fixed seed and data reproduce the ranking")

	assert.NotEqual(t, artA.Version, artB.Version, "artifact versions stay distinct")
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	trainer := NewTrainer(fixture(), TrainerConfig{Factors: 2, MaxIter: 100, RandomSeed: 42, Alpha: 0.5}, zap.NewNop())
	_, err := trainer.Train(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
