package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	toks := tokenize("The Action-Adventure of a Hero! 2d")
	assert.Equal(t, []string{"action", "adventure", "hero", "2d"}, toks)
}

func TestContentIndexSimilarity(t *testing.T) {
	idx := BuildContentIndex([]string{
		"action adventure fantasy",
		"action adventure",
		"puzzle casual relaxing",
		"",
	})

	require.Equal(t, 4, idx.NumDocs())

	sims := idx.SimilaritiesTo(0)
	require.Len(t, sims, 4)

	assert.Zero(t, sims[0], "self similarity is zeroed")
	assert.Greater(t, sims[1], sims[2], "shared vocabulary ranks higher")
	assert.Zero(t, sims[3], "empty document has no similarity")

	assert.InDelta(t, sims[1], idx.Similarity(0, 1), 1e-12)
	assert.InDelta(t, idx.Similarity(0, 1), idx.Similarity(1, 0), 1e-12, "cosine is symmetric")
}

func TestContentIndexIdenticalDocs(t *testing.T) {
	idx := BuildContentIndex([]string{"roguelike deckbuilder", "roguelike deckbuilder"})
	assert.InDelta(t, 1.0, idx.Similarity(0, 1), 1e-9)
}

func TestContentIndexOutOfRange(t *testing.T) {
	idx := BuildContentIndex([]string{"solo doc"})
	assert.Zero(t, idx.Similarity(0, 5))
	sims := idx.SimilaritiesTo(-1)
	for _, s := range sims {
		assert.Zero(t, s)
	}
}
