package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"game-recommender/core/models"
)

// LoadInteractions reads the prepared ratings CSV (userId,gameId,rating)
func LoadInteractions(path string) ([]models.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open interactions file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read interactions header: %w", err)
	}
	col := columnIndex(header)
	userCol, ok := col["userId"]
	if !ok {
		return nil, fmt.Errorf("interactions file missing userId column")
	}
	itemCol, ok := col["gameId"]
	if !ok {
		return nil, fmt.Errorf("interactions file missing gameId column")
	}
	sigCol, ok := col["rating"]
	if !ok {
		return nil, fmt.Errorf("interactions file missing rating column")
	}

	var interactions []models.Interaction
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read interactions row: %w", err)
		}
		if len(record) <= userCol || len(record) <= itemCol || len(record) <= sigCol {
			continue // skip malformed rows rather than fail the load
		}
		userID, err1 := strconv.ParseInt(record[userCol], 10, 64)
		itemID, err2 := strconv.ParseInt(record[itemCol], 10, 64)
		signal, err3 := strconv.ParseFloat(record[sigCol], 64)
		if err1 != nil || err2 != nil || err3 != nil || signal < 0 {
			continue
		}
		interactions = append(interactions, models.Interaction{
			UserID: userID,
			ItemID: itemID,
			Signal: signal,
		})
	}

	return interactions, nil
}

// ImplicitSignal derives an interaction signal from a raw review row.
// Recommended reviews start from a higher base, playtime adds a
// logarithmic boost, and the result is capped at 5.
func ImplicitSignal(isRecommended bool, hours float64) float64 {
	base := 1.5
	if isRecommended {
		base = 2.5
	}
	if hours < 0 {
		hours = 0
	}
	boost := math.Log1p(hours) / math.Log(101)
	return math.Min(5, base+2*boost)
}
