// Package memory is an in-process implementation of the domain repositories.
// It backs tests and the STORE_DRIVER=memory development mode.
package memory

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

type link struct {
	bundleID  uuid.UUID
	listingID uuid.UUID
}

// DB holds every table behind one lock. Reads hand out copies, never the stored rows.
type DB struct {
	mu        sync.RWMutex
	listings  []domain.Listing // insertion order; mirrors a heap scan
	bundles   []domain.Bundle
	links     map[link]struct{}
	purchases []domain.Purchase
	reviews   []domain.Review
	waitlist  []domain.WaitlistEntry
	now       func() time.Time
}

func New() *DB {
	return &DB{
		links: make(map[link]struct{}),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) listingIndex(id uuid.UUID) int {
	return slices.IndexFunc(db.listings, func(l domain.Listing) bool { return l.ID == id })
}

func (db *DB) bundleIndex(id uuid.UUID) int {
	return slices.IndexFunc(db.bundles, func(b domain.Bundle) bool { return b.ID == id })
}

func cloneListing(l domain.Listing) domain.Listing {
	l.Tags = slices.Clone(l.Tags)
	l.Screenshots = slices.Clone(l.Screenshots)
	return l
}

// ==============================================================================
// Seeding (bundles and links have no write path through the API)
// ==============================================================================

// PutListing inserts or replaces a listing as-is, aggregates included.
func (db *DB) PutListing(l domain.Listing) domain.Listing {
	db.mu.Lock()
	defer db.mu.Unlock()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = db.now()
	}
	if i := db.listingIndex(l.ID); i >= 0 {
		db.listings[i] = cloneListing(l)
	} else {
		db.listings = append(db.listings, cloneListing(l))
	}
	return cloneListing(l)
}

// PutBundle inserts a bundle and links it to the given listings.
func (db *DB) PutBundle(b domain.Bundle, listingIDs ...uuid.UUID) domain.Bundle {
	db.mu.Lock()
	defer db.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = db.now()
	}
	b.Agents = nil
	if i := db.bundleIndex(b.ID); i >= 0 {
		db.bundles[i] = b
	} else {
		db.bundles = append(db.bundles, b)
	}
	for _, id := range listingIDs {
		db.links[link{bundleID: b.ID, listingID: id}] = struct{}{}
	}
	return b
}

// Link adds a bundle -> listing association. Duplicates collapse.
func (db *DB) Link(bundleID, listingID uuid.UUID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.links[link{bundleID: bundleID, listingID: listingID}] = struct{}{}
}

// DeleteListing removes the listing row but leaves any links pointing at it dangling,
// which is the state an administrative delete leaves the real store in.
func (db *DB) DeleteListing(id uuid.UUID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if i := db.listingIndex(id); i >= 0 {
		db.listings = slices.Delete(db.listings, i, i+1)
	}
}

// PurchaseCount reports how many ledger entries exist.
func (db *DB) PurchaseCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.purchases)
}

// Ping satisfies the health check contract.
func (db *DB) Ping(ctx context.Context) error { return ctx.Err() }

// ==============================================================================
// Listings
// ==============================================================================

type ListingRepository struct{ db *DB }

func NewListingRepository(db *DB) *ListingRepository { return &ListingRepository{db: db} }

func (r *ListingRepository) List(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	search := strings.ToLower(q.Search)
	out := []domain.Listing{}
	for _, l := range r.db.listings {
		if q.Category != "" && l.Category != q.Category {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(l.Name), search) && !l.HasTag(q.Search) {
			continue
		}
		out = append(out, cloneListing(l))
	}

	slices.SortStableFunc(out, func(a, b domain.Listing) int {
		switch q.Sort.Normalize() {
		case domain.SortHighestRated:
			return cmpDesc(a.Rating, b.Rating)
		case domain.SortPriceLow:
			return cmpAsc(a.Price, b.Price)
		case domain.SortPriceHigh:
			return cmpDesc(a.Price, b.Price)
		default:
			return cmpDesc(a.SalesCount, b.SalesCount)
		}
	})
	return out, nil
}

func cmpAsc[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpDesc[T int | float64](a, b T) int { return cmpAsc(b, a) }

func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := slices.IndexFunc(r.db.listings, func(l domain.Listing) bool { return l.Slug == slug })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	l := cloneListing(r.db.listings[i])
	return &l, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.db.listingIndex(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	l := cloneListing(r.db.listings[i])
	return &l, nil
}

func (r *ListingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []domain.Listing{}
	for _, l := range r.db.listings {
		if _, ok := want[l.ID]; ok {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (r *ListingRepository) ListByDeveloper(ctx context.Context, developerName string) ([]domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.Listing{}
	for _, l := range r.db.listings {
		if l.DeveloperName == developerName {
			out = append(out, cloneListing(l))
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Listing) int { return cmpDesc(a.SalesCount, b.SalesCount) })
	return out, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if slices.ContainsFunc(r.db.listings, func(x domain.Listing) bool { return x.Slug == l.Slug }) {
		return domain.ErrConflict
	}
	l.ID = uuid.New()
	l.CreatedAt = r.db.now()
	r.db.listings = append(r.db.listings, cloneListing(*l))
	return nil
}

// IncrementSales is the only write path for sales_count; it runs under the write lock.
func (r *ListingRepository) IncrementSales(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.listingIndex(id)
	if i < 0 {
		return 0, domain.ErrNotFound
	}
	r.db.listings[i].SalesCount += delta
	return r.db.listings[i].SalesCount, nil
}

// ==============================================================================
// Bundles
// ==============================================================================

type BundleRepository struct{ db *DB }

func NewBundleRepository(db *DB) *BundleRepository { return &BundleRepository{db: db} }

func (r *BundleRepository) List(ctx context.Context) ([]domain.Bundle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return slices.Clone(r.db.bundles), nil
}

func (r *BundleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Bundle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := slices.IndexFunc(r.db.bundles, func(b domain.Bundle) bool { return b.Slug == slug })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	b := r.db.bundles[i]
	return &b, nil
}

func (r *BundleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bundle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.db.bundleIndex(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	b := r.db.bundles[i]
	return &b, nil
}

func (r *BundleRepository) ListingIDs(ctx context.Context, bundleID uuid.UUID) ([]uuid.UUID, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ids := []uuid.UUID{}
	for l := range r.db.links {
		if l.bundleID == bundleID {
			ids = append(ids, l.listingID)
		}
	}
	return ids, nil
}

// ==============================================================================
// Purchases
// ==============================================================================

type PurchaseRepository struct{ db *DB }

func NewPurchaseRepository(db *DB) *PurchaseRepository { return &PurchaseRepository{db: db} }

func (r *PurchaseRepository) Create(ctx context.Context, p *domain.Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	// Mirrors the foreign keys of the SQL schema.
	switch p.Kind {
	case domain.PurchaseAgent:
		if r.db.listingIndex(*p.AgentID) < 0 {
			return domain.ErrNotFound
		}
	case domain.PurchaseBundle:
		if r.db.bundleIndex(*p.BundleID) < 0 {
			return domain.ErrNotFound
		}
	}

	p.ID = uuid.New()
	p.CreatedAt = r.db.now()
	r.db.purchases = append(r.db.purchases, *p)
	return nil
}

func (r *PurchaseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.Purchase{}
	// Newest first; appends are chronological so walk backwards.
	for i := len(r.db.purchases) - 1; i >= 0; i-- {
		if r.db.purchases[i].UserID == userID {
			out = append(out, r.db.purchases[i])
		}
	}
	return out, nil
}

// ==============================================================================
// Reviews & waitlist
// ==============================================================================

type ReviewRepository struct{ db *DB }

func NewReviewRepository(db *DB) *ReviewRepository { return &ReviewRepository{db: db} }

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Review, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.Review{}
	for _, rv := range r.db.reviews {
		if rv.AgentID == listingID {
			out = append(out, rv)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Review) int { return b.Date.Compare(a.Date) })
	return out, nil
}

func (r *ReviewRepository) AddReview(ctx context.Context, rv *domain.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.listingIndex(rv.AgentID)
	if i < 0 {
		return domain.ErrNotFound
	}
	l := &r.db.listings[i]
	l.Rating = round4((l.Rating*float64(l.ReviewCount) + rv.Rating) / float64(l.ReviewCount+1))
	l.ReviewCount++

	rv.ID = uuid.New()
	if rv.Date.IsZero() {
		rv.Date = r.db.now()
	}
	r.db.reviews = append(r.db.reviews, *rv)
	return nil
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

type WaitlistRepository struct{ db *DB }

func NewWaitlistRepository(db *DB) *WaitlistRepository { return &WaitlistRepository{db: db} }

func (r *WaitlistRepository) Add(ctx context.Context, e *domain.WaitlistEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	e.ID = uuid.New()
	e.CreatedAt = r.db.now()
	cp := *e
	cp.Goals = slices.Clone(e.Goals)
	r.db.waitlist = append(r.db.waitlist, cp)
	return nil
}

// Compile-time contract checks.
var (
	_ domain.ListingRepository  = (*ListingRepository)(nil)
	_ domain.BundleRepository   = (*BundleRepository)(nil)
	_ domain.PurchaseRepository = (*PurchaseRepository)(nil)
	_ domain.ReviewRepository   = (*ReviewRepository)(nil)
	_ domain.WaitlistRepository = (*WaitlistRepository)(nil)
)
