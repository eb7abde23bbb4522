package recommender

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"game-recommender/core/catalog"
	"game-recommender/core/models"
)

// DataSource supplies the training inputs. The CSV-backed implementation
// lives in core/catalog; tests inject fixtures.
type DataSource interface {
	LoadCatalog() (*catalog.Catalog, error)
	LoadInteractions() ([]models.Interaction, error)
}

// FileSource loads training data from prepared CSV files
type FileSource struct {
	GamesPath        string
	InteractionsPath string
}

// LoadCatalog reads the games file
func (s FileSource) LoadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(s.GamesPath)
}

// LoadInteractions reads the interactions file
func (s FileSource) LoadInteractions() ([]models.Interaction, error) {
	return catalog.LoadInteractions(s.InteractionsPath)
}

// TrainerConfig holds the fixed model hyperparameters
type TrainerConfig struct {
	Factors    int
	MaxIter    int
	RandomSeed int64
	Alpha      float64
}

// Trainer builds hybrid recommender artifacts from a data source
type Trainer struct {
	source DataSource
	cfg    TrainerConfig
	logger *zap.Logger
}

// NewTrainer creates a trainer
func NewTrainer(source DataSource, cfg TrainerConfig, logger *zap.Logger) *Trainer {
	return &Trainer{
		source: source,
		cfg:    cfg,
		logger: logger.Named("trainer"),
	}
}

// Training progress milestones. Factorization dominates wall time, so it
// owns the bulk of the progress range.
const (
	progressLoaded       = 10.0
	progressFactorized   = 75.0
	progressContentBuilt = 95.0
)

// Train runs the full pipeline: load data, factorize interactions, build
// the content index, assemble the artifact. The progress callback receives
// monotonically increasing values below 100; installing the artifact and
// reporting completion is the caller's responsibility.
func (t *Trainer) Train(ctx context.Context, progress func(float64)) (*Artifact, error) {
	if progress == nil {
		progress = func(float64) {}
	}

	cat, err := t.source.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	interactions, err := t.source.LoadInteractions()
	if err != nil {
		return nil, fmt.Errorf("loading interactions: %w", err)
	}
	if len(interactions) == 0 {
		return nil, fmt.Errorf("no interactions to train on: %w", models.ErrInsufficientData)
	}
	if cat.Len() == 0 {
		return nil, fmt.Errorf("empty catalog: %w", models.ErrInsufficientData)
	}

	t.logger.Info("training data loaded",
		zap.Int("games", cat.Len()),
		zap.Int("interactions", len(interactions)))
	progress(progressLoaded)

	m := NewInteractionMatrix(interactions)
	t.logger.Info("interaction matrix built",
		zap.Int("users", m.NumUsers()),
		zap.Int("items", m.NumItems()),
		zap.Int("nnz", m.NNZ()))

	factors, err := FitNMF(ctx, m, t.cfg.Factors, t.cfg.MaxIter, t.cfg.RandomSeed, func(frac float64) {
		progress(progressLoaded + frac*(progressFactorized-progressLoaded))
	})
	if err != nil {
		return nil, fmt.Errorf("factorization failed: %w", err)
	}
	progress(progressFactorized)

	texts := make([]string, 0, cat.Len())
	for _, g := range cat.Games() {
		texts = append(texts, g.ContentText)
	}
	content := BuildContentIndex(texts)
	progress(progressContentBuilt)

	artifact, err := newArtifact(cat, m, factors, content, t.cfg.Alpha)
	if err != nil {
		return nil, fmt.Errorf("assembling artifact: %w", err)
	}

	t.logger.Info("artifact built",
		zap.String("version", artifact.Version),
		zap.Int("factors", factors.Factors))
	return artifact, nil
}
