package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Bundle is a curated, priced collection of listings.
// Agents is never persisted; it is resolved through the link table at read time.
type Bundle struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Slug          string    `json:"slug" db:"slug"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	OriginalPrice float64   `json:"original_price" db:"original_price"`
	Category      string    `json:"category" db:"category"`
	AtlasHint     string    `json:"atlas_hint" db:"atlas_hint"`
	Featured      bool      `json:"featured" db:"featured"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	Agents        []Listing `json:"agents" db:"-"`
}

// BundleRepository is the store contract for bundles and their listing links.
type BundleRepository interface {
	List(ctx context.Context) ([]Bundle, error)
	GetBySlug(ctx context.Context, slug string) (*Bundle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Bundle, error)

	// ListingIDs returns the listing ids linked to the bundle, in no particular order.
	// Links pointing at deleted listings are still returned; callers drop them.
	ListingIDs(ctx context.Context, bundleID uuid.UUID) ([]uuid.UUID, error)
}
