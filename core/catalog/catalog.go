package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"game-recommender/core/models"
)

// Catalog is the read-only store of game identities and metadata
type Catalog struct {
	games   []models.Game
	byID    map[int64]int // game id -> index into games
	byTitle map[string]int64
}

// New builds a catalog from a slice of games. The first game with a given
// title wins title resolution, matching load order.
func New(games []models.Game) *Catalog {
	c := &Catalog{
		games:   games,
		byID:    make(map[int64]int, len(games)),
		byTitle: make(map[string]int64, len(games)),
	}
	for i, g := range games {
		c.byID[g.ID] = i
		if _, ok := c.byTitle[g.Title]; !ok {
			c.byTitle[g.Title] = g.ID
		}
	}
	return c
}

// Load reads the prepared games CSV (gameId,title,genres columns)
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open games file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read games header: %w", err)
	}
	col := columnIndex(header)
	idCol, ok := col["gameId"]
	if !ok {
		return nil, fmt.Errorf("games file missing gameId column")
	}
	titleCol, ok := col["title"]
	if !ok {
		return nil, fmt.Errorf("games file missing title column")
	}
	genresCol, hasGenres := col["genres"]

	var games []models.Game
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read games row: %w", err)
		}
		if len(record) <= idCol || len(record) <= titleCol {
			continue // skip malformed rows rather than fail the load
		}
		id, err := strconv.ParseInt(record[idCol], 10, 64)
		if err != nil {
			continue
		}
		title := record[titleCol]
		content := ""
		if hasGenres && genresCol < len(record) {
			content = record[genresCol]
		}
		games = append(games, models.Game{
			ID:          id,
			Title:       title,
			ProductType: ClassifyTitle(title),
			ContentText: content,
		})
	}

	return New(games), nil
}

// Games returns the full catalog in load order. Callers must not mutate.
func (c *Catalog) Games() []models.Game {
	return c.games
}

// Len returns the number of catalog entries
func (c *Catalog) Len() int {
	return len(c.games)
}

// ByID looks up a game by id
func (c *Catalog) ByID(id int64) (models.Game, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Game{}, false
	}
	return c.games[i], true
}

// ResolveTitle resolves a title to a game id
func (c *Catalog) ResolveTitle(title string) (int64, bool) {
	id, ok := c.byTitle[title]
	return id, ok
}

// Title returns the title for a game id, or "" when unknown
func (c *Catalog) Title(id int64) string {
	if g, ok := c.ByID(id); ok {
		return g.Title
	}
	return ""
}

// Search returns up to limit titles containing q, case-insensitive,
// in catalog order
func (c *Catalog) Search(q string, limit int) []string {
	q = strings.ToLower(q)
	var titles []string
	for _, g := range c.games {
		if strings.Contains(strings.ToLower(g.Title), q) {
			titles = append(titles, g.Title)
			if len(titles) >= limit {
				break
			}
		}
	}
	return titles
}

// ClassifyTitle tags a catalog entry by title keywords. The source data has
// no reliable product-type signal, so this stays best-effort and defaults
// to Unknown.
func ClassifyTitle(title string) models.ProductType {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "soundtrack") || strings.Contains(t, " ost"):
		return models.ProductTypeSoundtrack
	case strings.Contains(t, "dlc") || strings.Contains(t, "expansion pack") || strings.Contains(t, "season pass"):
		return models.ProductTypeDLC
	default:
		return models.ProductTypeUnknown
	}
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	return col
}
