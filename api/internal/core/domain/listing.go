package domain

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of marketplace sections a listing can live in.
type Category string

const (
	CategoryProductivity Category = "productivity"
	CategoryMarketing    Category = "marketing"
	CategoryPersonal     Category = "personal"
	CategoryEcommerce    Category = "ecommerce"
	CategoryDevTools     Category = "dev-tools"
	CategoryFinance      Category = "finance"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryProductivity, CategoryMarketing, CategoryPersonal,
		CategoryEcommerce, CategoryDevTools, CategoryFinance:
		return true
	}
	return false
}

// PriceType describes how a listing is billed.
type PriceType string

const (
	PriceLifetime PriceType = "lifetime"
	PriceMonthly  PriceType = "monthly"
	PriceFree     PriceType = "free"
)

func (p PriceType) Valid() bool {
	switch p {
	case PriceLifetime, PriceMonthly, PriceFree:
		return true
	}
	return false
}

// InstallType describes how a buyer wires the agent into their stack.
type InstallType string

const (
	InstallAPI      InstallType = "api"
	InstallTelegram InstallType = "telegram"
	InstallZapier   InstallType = "zapier"
	InstallNoCode   InstallType = "nocode"
	InstallCustom   InstallType = "custom"
)

func (i InstallType) Valid() bool {
	switch i {
	case InstallAPI, InstallTelegram, InstallZapier, InstallNoCode, InstallCustom:
		return true
	}
	return false
}

// Listing is a purchasable agent product.
// SalesCount, Rating and ReviewCount are aggregates owned by the store: they are
// only ever moved through IncrementSales and AddReview, never written back whole.
type Listing struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	Name            string      `json:"name" db:"name"`
	Slug            string      `json:"slug" db:"slug"`
	Description     string      `json:"description" db:"description"`
	LongDescription string      `json:"long_description" db:"long_description"`
	Category        Category    `json:"category" db:"category"`
	Price           float64     `json:"price" db:"price"`
	PriceType       PriceType   `json:"price_type" db:"price_type"`
	OriginalPrice   float64     `json:"original_price" db:"original_price"`
	Icon            string      `json:"icon" db:"icon"`
	Screenshots     []string    `json:"screenshots" db:"screenshots"`
	DemoURL         string      `json:"demo_url" db:"demo_url"`
	InstallType     InstallType `json:"install_type" db:"install_type"`
	AtlasCompatible bool        `json:"atlas_compatible" db:"atlas_compatible"`
	DeveloperName   string      `json:"developer_name" db:"developer_name"`
	Rating          float64     `json:"rating" db:"rating"`
	ReviewCount     int         `json:"review_count" db:"review_count"`
	SalesCount      int         `json:"sales_count" db:"sales_count"`
	Featured        bool        `json:"featured" db:"featured"`
	Tags            []string    `json:"tags" db:"tags"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// MarshalJSON presents the rating at two decimals. The store keeps the running
// average at four so repeated folds do not drift.
func (l Listing) MarshalJSON() ([]byte, error) {
	type plain Listing
	out := plain(l)
	out.Rating = math.Round(l.Rating*100) / 100
	return json.Marshal(out)
}

// HasTag reports whether the listing carries exactly the given tag.
func (l *Listing) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ListingSort selects the ordering of a catalog browse.
type ListingSort string

const (
	SortPopular      ListingSort = "popular"
	SortHighestRated ListingSort = "highest-rated"
	SortPriceLow     ListingSort = "price-low"
	SortPriceHigh    ListingSort = "price-high"
)

// Normalize maps absent or unrecognised values to SortPopular.
func (s ListingSort) Normalize() ListingSort {
	switch s {
	case SortPopular, SortHighestRated, SortPriceLow, SortPriceHigh:
		return s
	}
	return SortPopular
}

// ListingQuery carries the optional browse filters. Zero values mean "no filter".
type ListingQuery struct {
	Category Category
	Sort     ListingSort
	Search   string
}

// ListingDraft is what a developer submits; everything else is derived.
type ListingDraft struct {
	Name            string
	Category        Category
	Description     string
	Price           float64
	PriceType       PriceType
	DemoURL         string
	InstallType     InstallType
	AtlasCompatible bool
}

// ListingRepository is the store contract for listings.
type ListingRepository interface {
	// List applies q's filters and ordering. An empty result is not an error.
	List(ctx context.Context, q ListingQuery) ([]Listing, error)
	GetBySlug(ctx context.Context, slug string) (*Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)

	// GetByIDs fetches every listing in ids in one round trip.
	// Unknown ids are omitted from the result, never reported.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error)

	// ListByDeveloper returns the developer's listings ordered by sales_count desc.
	ListByDeveloper(ctx context.Context, developerName string) ([]Listing, error)

	// Create inserts a new listing. Returns ErrConflict if the slug is taken.
	Create(ctx context.Context, l *Listing) error

	// IncrementSales atomically adds delta to sales_count and returns the new value.
	// Implementations must be linearizable per listing; ErrNotFound if the id is unknown.
	IncrementSales(ctx context.Context, id uuid.UUID, delta int) (int, error)
}
