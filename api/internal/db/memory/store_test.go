package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

func TestListingRepository_IncrementSales(t *testing.T) {
	db := New()
	l := db.PutListing(domain.Listing{Slug: "a", SalesCount: 2})
	repo := NewListingRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementSales(ctx, l.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 52, got.SalesCount)

	_, err = repo.IncrementSales(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingRepository_CreateRejectsDuplicateSlug(t *testing.T) {
	db := New()
	repo := NewListingRepository(db)
	ctx := context.Background()

	first := &domain.Listing{Name: "A", Slug: "same"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	err := repo.Create(ctx, &domain.Listing{Name: "B", Slug: "same"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestListingRepository_ReadsAreCopies(t *testing.T) {
	db := New()
	l := db.PutListing(domain.Listing{Slug: "a", Tags: []string{"x"}})
	repo := NewListingRepository(db)

	got, err := repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	got.Tags[0] = "mutated"
	got.SalesCount = 1000

	again, err := repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, again.Tags)
	assert.Zero(t, again.SalesCount)
}

func TestListingRepository_GetByIDsOmitsUnknown(t *testing.T) {
	db := New()
	a := db.PutListing(domain.Listing{Slug: "a"})
	repo := NewListingRepository(db)

	got, err := repo.GetByIDs(context.Background(), []uuid.UUID{a.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	none, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBundleRepository_ListingIDsKeepsDanglingLinks(t *testing.T) {
	db := New()
	a := db.PutListing(domain.Listing{Slug: "a"})
	b := db.PutListing(domain.Listing{Slug: "b"})
	bundle := db.PutBundle(domain.Bundle{Slug: "kit"}, a.ID, b.ID)
	db.Link(bundle.ID, a.ID) // duplicate collapses
	db.DeleteListing(b.ID)

	ids, err := NewBundleRepository(db).ListingIDs(context.Background(), bundle.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)
}

func TestPurchaseRepository_Create(t *testing.T) {
	db := New()
	l := db.PutListing(domain.Listing{Slug: "a"})
	repo := NewPurchaseRepository(db)
	ctx := context.Background()

	p := domain.NewListingPurchase("u", l.ID)
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ID)

	err := repo.Create(ctx, domain.NewListingPurchase("u", uuid.New()))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Create(ctx, domain.NewBundlePurchase("u", uuid.New()))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	both := domain.NewListingPurchase("u", l.ID)
	both.BundleID = &l.ID
	assert.ErrorIs(t, repo.Create(ctx, both), domain.ErrInvalidInput)

	assert.Equal(t, 1, db.PurchaseCount())
}

func TestReviewRepository_AddReview(t *testing.T) {
	db := New()
	l := db.PutListing(domain.Listing{Slug: "a", Rating: 4, ReviewCount: 10})
	repo := NewReviewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddReview(ctx, &domain.Review{AgentID: l.ID, Rating: 2}))

	got, err := NewListingRepository(db).GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.8182, got.Rating)
	assert.Equal(t, 11, got.ReviewCount)

	err = repo.AddReview(ctx, &domain.Review{AgentID: uuid.New(), Rating: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepository_AddReview_TracksTrueMean(t *testing.T) {
	db := New()
	l := db.PutListing(domain.Listing{Slug: "a"})
	repo := NewReviewRepository(db)
	ctx := context.Background()

	ratings := []float64{5, 4, 4, 4, 5, 3, 4}
	sum := 0.0
	for _, r := range ratings {
		require.NoError(t, repo.AddReview(ctx, &domain.Review{AgentID: l.ID, Rating: r}))
		sum += r
	}

	got, err := NewListingRepository(db).GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, len(ratings), got.ReviewCount)
	assert.InDelta(t, sum/float64(len(ratings)), got.Rating, 0.0001)
}

func TestSeedDemo(t *testing.T) {
	db := New()
	SeedDemo(db)

	listings, err := NewListingRepository(db).List(context.Background(), domain.ListingQuery{})
	require.NoError(t, err)
	assert.Len(t, listings, 3)

	bundle, err := NewBundleRepository(db).GetBySlug(context.Background(), "solo-founder-kit")
	require.NoError(t, err)
	ids, err := NewBundleRepository(db).ListingIDs(context.Background(), bundle.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}
