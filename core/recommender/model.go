package recommender

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"game-recommender/core/catalog"
	"game-recommender/core/models"
)

// LikedThreshold is the minimum signal for an interaction to count as a
// positive preference
const LikedThreshold = 2.5

// ItemSignal is one (item, signal) pair of a user's history
type ItemSignal struct {
	ItemID int64
	Signal float64
}

// Artifact is a fully-built, immutable trained model: the collaborative
// factorization, the content index, and the catalog snapshot it was built
// against. An Artifact is only ever constructed whole; partially-built
// state never leaves the trainer.
type Artifact struct {
	Version   string
	TrainedAt time.Time
	Alpha     float64 // collaborative weight in the blend

	catalog *catalog.Catalog
	matrix  *InteractionMatrix
	factors *NMF
	content *ContentIndex

	docIndex map[int64]int          // game id -> content index document
	history  map[int64][]ItemSignal // per user, signal desc then id asc
	pop      map[int64]float64      // item id -> fraction of users interacting
}

// newArtifact assembles and validates the trained components
func newArtifact(cat *catalog.Catalog, m *InteractionMatrix, factors *NMF, content *ContentIndex, alpha float64) (*Artifact, error) {
	a := &Artifact{
		Version:   uuid.New().String(),
		TrainedAt: time.Now().UTC(),
		Alpha:     alpha,
		catalog:   cat,
		matrix:    m,
		factors:   factors,
		content:   content,
		docIndex:  make(map[int64]int, cat.Len()),
		history:   make(map[int64][]ItemSignal, m.NumUsers()),
		pop:       make(map[int64]float64, m.NumItems()),
	}

	for i, g := range cat.Games() {
		if _, ok := a.docIndex[g.ID]; !ok {
			a.docIndex[g.ID] = i
		}
	}

	numUsers := m.NumUsers()
	for u := 0; u < numUsers; u++ {
		userID := m.UserIDs[u]
		row := m.Row(u)
		hist := make([]ItemSignal, 0, len(row))
		for _, c := range row {
			itemID := m.ItemIDs[c.col]
			hist = append(hist, ItemSignal{ItemID: itemID, Signal: c.val})
			a.pop[itemID] += 1 / float64(numUsers)
		}
		sort.Slice(hist, func(i, j int) bool {
			if hist[i].Signal != hist[j].Signal {
				return hist[i].Signal > hist[j].Signal
			}
			return hist[i].ItemID < hist[j].ItemID
		})
		a.history[userID] = hist
	}

	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Artifact) validate() error {
	if a.catalog.Len() == 0 {
		return fmt.Errorf("artifact has empty catalog: %w", models.ErrInsufficientData)
	}
	if a.matrix.NumUsers() == 0 || a.matrix.NumItems() == 0 {
		return fmt.Errorf("artifact has empty interaction matrix: %w", models.ErrInsufficientData)
	}
	if len(a.factors.W) != a.matrix.NumUsers() || len(a.factors.H) != a.factors.Factors {
		return fmt.Errorf("factor dimensions inconsistent with matrix: %w", models.ErrTrainingDiverged)
	}
	for _, row := range a.factors.H {
		if len(row) != a.matrix.NumItems() {
			return fmt.Errorf("factor dimensions inconsistent with matrix: %w", models.ErrTrainingDiverged)
		}
	}
	if a.content.NumDocs() != a.catalog.Len() {
		return fmt.Errorf("content index inconsistent with catalog: %w", models.ErrTrainingDiverged)
	}
	return nil
}

// Catalog returns the catalog snapshot the model was trained against
func (a *Artifact) Catalog() *catalog.Catalog { return a.catalog }

// Users returns the ids of users seen at training time, in training order.
// Callers must not mutate.
func (a *Artifact) Users() []int64 { return a.matrix.UserIDs }

// History returns a user's interactions sorted by signal descending.
// Callers must not mutate.
func (a *Artifact) History(userID int64) []ItemSignal { return a.history[userID] }

// Popularity returns the fraction of training users who interacted with
// the item
func (a *Artifact) Popularity(itemID int64) float64 { return a.pop[itemID] }

// MostPopularItem returns the item id with the highest interaction count,
// ties broken by id ascending
func (a *Artifact) MostPopularItem() int64 {
	var best int64
	bestPop := -1.0
	for _, itemID := range a.matrix.ItemIDs {
		p := a.pop[itemID]
		if p > bestPop || (p == bestPop && itemID < best) {
			best = itemID
			bestPop = p
		}
	}
	return best
}

// ScoredItem is one ranked candidate
type ScoredItem struct {
	ID    int64
	Score float64
}

// Recommend returns up to n recommended titles for the user and seed
// title, best first. It never mutates model state.
func (a *Artifact) Recommend(userID int64, seedTitle string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive: %w", models.ErrInvalidParams)
	}
	seedID, ok := a.catalog.ResolveTitle(seedTitle)
	if !ok {
		return nil, fmt.Errorf("seed title %q: %w", seedTitle, models.ErrUnknownSeedItem)
	}

	ranked := a.Rank(userID, seedID, n, 0)
	titles := make([]string, 0, len(ranked))
	for _, s := range ranked {
		titles = append(titles, a.catalog.Title(s.ID))
	}
	return titles, nil
}

// Rank scores every eligible candidate against the seed item and returns
// the top n by blended score, ties broken by catalog id ascending.
// Eligibility excludes the seed itself, items classified as DLC or
// soundtrack, and items the user has already interacted with; withheldID,
// when non-zero, is treated as not-interacted so evaluation can test
// whether a held-out item is recovered.
func (a *Artifact) Rank(userID, seedID int64, n int, withheldID int64) []ScoredItem {
	seedDoc, hasSeedDoc := a.docIndex[seedID]
	var contentSims []float64
	if hasSeedDoc {
		contentSims = a.content.SimilaritiesTo(seedDoc)
	}

	cfScores, hasCF := a.cfScores(userID)

	interacted := map[int64]struct{}{}
	if hasCF {
		for _, h := range a.history[userID] {
			if h.ItemID == withheldID {
				continue
			}
			interacted[h.ItemID] = struct{}{}
		}
	}

	candidates := make([]ScoredItem, 0, a.catalog.Len())
	for doc, g := range a.catalog.Games() {
		if g.ID == seedID || g.ProductType.Excluded() {
			continue
		}
		if _, owned := interacted[g.ID]; owned {
			continue
		}

		score := 0.0
		if contentSims != nil {
			score += (1 - a.Alpha) * contentSims[doc]
		}
		if hasCF {
			if col, ok := a.matrix.ItemIndex(g.ID); ok {
				score += a.Alpha * cfScores[col]
			}
		}
		candidates = append(candidates, ScoredItem{ID: g.ID, Score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// cfScores returns the user's predicted affinity per item column, scaled
// to [0,1] so the collaborative term is comparable to content similarity.
// The second return is false for users without interaction history, whose
// ranking falls back to content only.
func (a *Artifact) cfScores(userID int64) ([]float64, bool) {
	u, ok := a.matrix.UserIndex(userID)
	if !ok {
		return nil, false
	}
	scores := make([]float64, a.matrix.NumItems())
	maxScore := 0.0
	for i := range scores {
		s := a.factors.Predict(u, i)
		scores[i] = s
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}
	return scores, true
}
