package recommender

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"game-recommender/core/models"
)

const (
	nmfEpsilon   = 1e-12
	nmfTolerance = 1e-4
	// loss is evaluated every this many iterations for the convergence check
	nmfCheckEvery = 10
)

// NMF holds the low-rank factorization of the interaction matrix:
// V (users x items) ~ W (users x k) * H (k x items). Entries stay
// non-negative under multiplicative updates.
type NMF struct {
	Factors int
	W       [][]float64 // one row of length Factors per user
	H       [][]float64 // one row of length items per factor
}

// FitNMF factorizes the matrix with multiplicative updates. Initialization
// draws from a rand source built on seed, so a fixed seed and fixed input
// reproduce the same factors. The progress callback receives values in
// [0,1] as iterations advance.
func FitNMF(ctx context.Context, m *InteractionMatrix, factors, maxIter int, seed int64, progress func(float64)) (*NMF, error) {
	n := m.NumUsers()
	items := m.NumItems()
	if n == 0 || items == 0 {
		return nil, fmt.Errorf("empty interaction matrix: %w", models.ErrInsufficientData)
	}
	if factors > items {
		factors = items
	}

	rng := rand.New(rand.NewSource(seed))
	scale := math.Sqrt(m.Mean()/float64(factors)) + nmfEpsilon

	model := &NMF{
		Factors: factors,
		W:       randomMatrix(rng, n, factors, scale),
		H:       randomMatrix(rng, factors, items, scale),
	}

	prevLoss := math.Inf(1)
	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		model.updateH(m)
		model.updateW(m)

		if progress != nil {
			progress(float64(iter+1) / float64(maxIter))
		}

		if (iter+1)%nmfCheckEvery == 0 || iter == maxIter-1 {
			loss := model.loss(m)
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return nil, fmt.Errorf("non-finite reconstruction loss at iteration %d: %w", iter+1, models.ErrTrainingDiverged)
			}
			if prevLoss-loss < nmfTolerance*prevLoss {
				break
			}
			prevLoss = loss
		}
	}

	if !model.finite() {
		return nil, fmt.Errorf("non-finite factors: %w", models.ErrTrainingDiverged)
	}

	return model, nil
}

// Predict returns the reconstructed affinity for a (user row, item column)
func (f *NMF) Predict(u, i int) float64 {
	s := 0.0
	for a := 0; a < f.Factors; a++ {
		s += f.W[u][a] * f.H[a][i]
	}
	return s
}

// H update: H <- H * (W^T V) / (W^T W H)
func (f *NMF) updateH(m *InteractionMatrix) {
	k := f.Factors
	items := m.NumItems()

	num := zeroMatrix(k, items)
	for u := 0; u < m.NumUsers(); u++ {
		for _, c := range m.Row(u) {
			for a := 0; a < k; a++ {
				num[a][c.col] += f.W[u][a] * c.val
			}
		}
	}

	gram := f.gramW(m.NumUsers())
	for a := 0; a < k; a++ {
		for i := 0; i < items; i++ {
			den := 0.0
			for b := 0; b < k; b++ {
				den += gram[a][b] * f.H[b][i]
			}
			f.H[a][i] *= num[a][i] / (den + nmfEpsilon)
		}
	}
}

// W update: W <- W * (V H^T) / (W H H^T)
func (f *NMF) updateW(m *InteractionMatrix) {
	k := f.Factors
	n := m.NumUsers()

	num := zeroMatrix(n, k)
	for u := 0; u < n; u++ {
		for _, c := range m.Row(u) {
			for a := 0; a < k; a++ {
				num[u][a] += c.val * f.H[a][c.col]
			}
		}
	}

	gram := f.gramH(m.NumItems())
	for u := 0; u < n; u++ {
		for a := 0; a < k; a++ {
			den := 0.0
			for b := 0; b < k; b++ {
				den += f.W[u][b] * gram[b][a]
			}
			f.W[u][a] *= num[u][a] / (den + nmfEpsilon)
		}
	}
}

// loss computes ||V - WH||_F^2 without materializing WH:
// ||V||^2 - 2<V,WH> + trace((W^T W)(H H^T))
func (f *NMF) loss(m *InteractionMatrix) float64 {
	normV := 0.0
	dot := 0.0
	for u := 0; u < m.NumUsers(); u++ {
		for _, c := range m.Row(u) {
			normV += c.val * c.val
			dot += c.val * f.Predict(u, c.col)
		}
	}

	gw := f.gramW(m.NumUsers())
	gh := f.gramH(m.NumItems())
	normWH := 0.0
	for a := 0; a < f.Factors; a++ {
		for b := 0; b < f.Factors; b++ {
			normWH += gw[a][b] * gh[a][b]
		}
	}

	return normV - 2*dot + normWH
}

// gramW returns W^T W (k x k)
func (f *NMF) gramW(n int) [][]float64 {
	k := f.Factors
	g := zeroMatrix(k, k)
	for u := 0; u < n; u++ {
		for a := 0; a < k; a++ {
			wa := f.W[u][a]
			if wa == 0 {
				continue
			}
			for b := 0; b < k; b++ {
				g[a][b] += wa * f.W[u][b]
			}
		}
	}
	return g
}

// gramH returns H H^T (k x k)
func (f *NMF) gramH(items int) [][]float64 {
	k := f.Factors
	g := zeroMatrix(k, k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			s := 0.0
			for i := 0; i < items; i++ {
				s += f.H[a][i] * f.H[b][i]
			}
			g[a][b] = s
		}
	}
	return g
}

func (f *NMF) finite() bool {
	for _, row := range f.W {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	for _, row := range f.H {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func randomMatrix(rng *rand.Rand, rows, cols int, scale float64) [][]float64 {
	m := make([][]float64, rows)
	for r := range m {
		m[r] = make([]float64, cols)
		for c := range m[r] {
			m[r][c] = rng.Float64() * scale
		}
	}
	return m
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for r := range m {
		m[r] = make([]float64, cols)
	}
	return m
}
