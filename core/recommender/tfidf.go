package recommender

import (
	"math"
	"sort"
	"strings"
)

// english stop words stripped before weighting, the usual short list
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "s": {}, "such": {},
	"that": {}, "the": {}, "their": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "to": {}, "was": {}, "we": {},
	"were": {}, "which": {}, "while": {}, "will": {}, "with": {}, "you": {},
	"your": {},
}

// termWeight is one entry of a document's sparse tf-idf vector
type termWeight struct {
	term   int
	weight float64
}

// ContentIndex is a tf-idf index over catalog content text with an
// inverted posting list for fast cosine lookups. Documents are keyed by
// catalog position, vectors are l2-normalized so cosine is a dot product.
type ContentIndex struct {
	numDocs  int
	vocab    map[string]int
	docs     [][]termWeight // per document, sorted by term id
	postings [][]docWeight  // per term
}

type docWeight struct {
	doc    int
	weight float64
}

// BuildContentIndex builds the index from one content string per document
func BuildContentIndex(texts []string) *ContentIndex {
	idx := &ContentIndex{
		numDocs: len(texts),
		vocab:   make(map[string]int),
	}

	counts := make([]map[int]int, len(texts))
	df := []int{}
	for d, text := range texts {
		counts[d] = make(map[int]int)
		for _, tok := range tokenize(text) {
			t, ok := idx.vocab[tok]
			if !ok {
				t = len(df)
				idx.vocab[tok] = t
				df = append(df, 0)
			}
			if counts[d][t] == 0 {
				df[t]++
			}
			counts[d][t]++
		}
	}

	// smooth idf: ln((1+n)/(1+df)) + 1
	n := float64(len(texts))
	idf := make([]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log((1+n)/(1+float64(d))) + 1
	}

	idx.docs = make([][]termWeight, len(texts))
	idx.postings = make([][]docWeight, len(df))
	for d := range counts {
		vec := make([]termWeight, 0, len(counts[d]))
		norm := 0.0
		for t, c := range counts[d] {
			w := float64(c) * idf[t]
			vec = append(vec, termWeight{term: t, weight: w})
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec {
				vec[i].weight /= norm
			}
		}
		sort.Slice(vec, func(i, j int) bool { return vec[i].term < vec[j].term })
		idx.docs[d] = vec
		for _, tw := range vec {
			idx.postings[tw.term] = append(idx.postings[tw.term], docWeight{doc: d, weight: tw.weight})
		}
	}

	return idx
}

// NumDocs returns the number of indexed documents
func (idx *ContentIndex) NumDocs() int { return idx.numDocs }

// SimilaritiesTo returns the cosine similarity of every document to doc.
// The seed document's own slot is zeroed.
func (idx *ContentIndex) SimilaritiesTo(doc int) []float64 {
	sims := make([]float64, idx.numDocs)
	if doc < 0 || doc >= idx.numDocs {
		return sims
	}
	for _, tw := range idx.docs[doc] {
		for _, dw := range idx.postings[tw.term] {
			sims[dw.doc] += tw.weight * dw.weight
		}
	}
	sims[doc] = 0
	return sims
}

// Similarity returns the cosine similarity between two documents
func (idx *ContentIndex) Similarity(a, b int) float64 {
	if a < 0 || a >= idx.numDocs || b < 0 || b >= idx.numDocs {
		return 0
	}
	va, vb := idx.docs[a], idx.docs[b]
	s := 0.0
	i, j := 0, 0
	for i < len(va) && j < len(vb) {
		switch {
		case va[i].term == vb[j].term:
			s += va[i].weight * vb[j].weight
			i++
			j++
		case va[i].term < vb[j].term:
			i++
		default:
			j++
		}
	}
	return s
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	out := tokens[:0]
	for _, tok := range tokens {
		if len(tok) < 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
