package models

// Game represents a catalog entry. Immutable after catalog load.
type Game struct {
	ID          int64
	Title       string
	ProductType ProductType
	// ContentText is the metadata text (tags + description) the content
	// similarity index is built from
	ContentText string
}

// ProductType classifies a catalog entry. The source data carries no
// reliable signal, so classification is best-effort and Unknown is common.
type ProductType string

const (
	ProductTypeGame       ProductType = "game"
	ProductTypeDLC        ProductType = "dlc"
	ProductTypeSoundtrack ProductType = "soundtrack"
	ProductTypeUnknown    ProductType = "unknown"
)

// Excluded reports whether entries of this type are filtered out of
// recommendation results. Unknown entries are kept.
func (p ProductType) Excluded() bool {
	return p == ProductTypeDLC || p == ProductTypeSoundtrack
}

// Interaction is a single user-item ownership/playtime signal
type Interaction struct {
	UserID int64
	ItemID int64
	Signal float64 // >= 0
}
