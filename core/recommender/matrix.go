package recommender

import (
	"game-recommender/core/models"
)

// cell is one stored entry of a sparse row
type cell struct {
	col int
	val float64
}

// InteractionMatrix is a sparse user x item matrix in row-major form.
// Row and column order follow first appearance in the interaction stream,
// which keeps factorization deterministic for a fixed input.
type InteractionMatrix struct {
	UserIDs []int64
	ItemIDs []int64

	userIdx map[int64]int
	itemIdx map[int64]int

	rows [][]cell
	nnz  int
}

// NewInteractionMatrix builds the sparse matrix from raw interactions.
// Duplicate (user, item) pairs accumulate.
func NewInteractionMatrix(interactions []models.Interaction) *InteractionMatrix {
	m := &InteractionMatrix{
		userIdx: make(map[int64]int),
		itemIdx: make(map[int64]int),
	}

	for _, in := range interactions {
		u, ok := m.userIdx[in.UserID]
		if !ok {
			u = len(m.UserIDs)
			m.userIdx[in.UserID] = u
			m.UserIDs = append(m.UserIDs, in.UserID)
			m.rows = append(m.rows, nil)
		}
		i, ok := m.itemIdx[in.ItemID]
		if !ok {
			i = len(m.ItemIDs)
			m.itemIdx[in.ItemID] = i
			m.ItemIDs = append(m.ItemIDs, in.ItemID)
		}

		merged := false
		for k := range m.rows[u] {
			if m.rows[u][k].col == i {
				m.rows[u][k].val += in.Signal
				merged = true
				break
			}
		}
		if !merged {
			m.rows[u] = append(m.rows[u], cell{col: i, val: in.Signal})
			m.nnz++
		}
	}

	return m
}

// NumUsers returns the number of distinct users
func (m *InteractionMatrix) NumUsers() int { return len(m.UserIDs) }

// NumItems returns the number of distinct items
func (m *InteractionMatrix) NumItems() int { return len(m.ItemIDs) }

// NNZ returns the number of stored entries
func (m *InteractionMatrix) NNZ() int { return m.nnz }

// UserIndex maps a user id to its row, if present
func (m *InteractionMatrix) UserIndex(userID int64) (int, bool) {
	i, ok := m.userIdx[userID]
	return i, ok
}

// ItemIndex maps an item id to its column, if present
func (m *InteractionMatrix) ItemIndex(itemID int64) (int, bool) {
	i, ok := m.itemIdx[itemID]
	return i, ok
}

// Row returns the stored cells of one user row. Callers must not mutate.
func (m *InteractionMatrix) Row(u int) []cell {
	return m.rows[u]
}

// Mean returns the mean of the stored entries, used to scale factor
// initialization
func (m *InteractionMatrix) Mean() float64 {
	if m.nnz == 0 {
		return 0
	}
	sum := 0.0
	for _, row := range m.rows {
		for _, c := range row {
			sum += c.val
		}
	}
	return sum / float64(m.nnz)
}
