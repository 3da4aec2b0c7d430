package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/core/services"
	"github.com/irgordon/bazaar/api/internal/db/memory"
)

func newCatalog(db *memory.DB) *services.CatalogService {
	return services.NewCatalogService(memory.NewListingRepository(db), memory.NewBundleRepository(db), discardLogger())
}

func slugs(listings []domain.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.Slug
	}
	return out
}

func seedCatalog(db *memory.DB) {
	a := listing("Inbox Helper", "inbox-helper", domain.CategoryProductivity, 20, 50)
	a.Rating, a.Tags = 4.0, []string{"email"}
	b := listing("Ad Writer", "ad-writer", domain.CategoryMarketing, 5, 200)
	b.Rating, b.Tags = 4.8, []string{"copy", "ads"}
	c := listing("Calendar Pal", "calendar-pal", domain.CategoryProductivity, 50, 10)
	c.Rating, c.Tags = 3.5, []string{"scheduling", "emailer"}

	db.PutListing(a)
	db.PutListing(b)
	db.PutListing(c)
}

func TestCatalogService_ListListings_Sorts(t *testing.T) {
	db := newDB(t)
	seedCatalog(db)
	svc := newCatalog(db)
	ctx := context.Background()

	cases := map[domain.ListingSort][]string{
		"":                      {"ad-writer", "inbox-helper", "calendar-pal"},
		"bogus":                 {"ad-writer", "inbox-helper", "calendar-pal"},
		domain.SortPopular:      {"ad-writer", "inbox-helper", "calendar-pal"},
		domain.SortHighestRated: {"ad-writer", "inbox-helper", "calendar-pal"},
		domain.SortPriceLow:     {"ad-writer", "inbox-helper", "calendar-pal"},
		domain.SortPriceHigh:    {"calendar-pal", "inbox-helper", "ad-writer"},
	}
	for sort, want := range cases {
		got, err := svc.ListListings(ctx, domain.ListingQuery{Sort: sort})
		require.NoError(t, err)
		assert.Equal(t, want, slugs(got), "sort=%q", sort)
	}
}

func TestCatalogService_ListListings_Filters(t *testing.T) {
	db := newDB(t)
	seedCatalog(db)
	svc := newCatalog(db)
	ctx := context.Background()

	t.Run("category", func(t *testing.T) {
		got, err := svc.ListListings(ctx, domain.ListingQuery{Category: domain.CategoryProductivity})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"inbox-helper", "calendar-pal"}, slugs(got))
	})

	t.Run("search matches name case-insensitively", func(t *testing.T) {
		got, err := svc.ListListings(ctx, domain.ListingQuery{Search: "WRITER"})
		require.NoError(t, err)
		assert.Equal(t, []string{"ad-writer"}, slugs(got))
	})

	t.Run("search matches exact tag only", func(t *testing.T) {
		got, err := svc.ListListings(ctx, domain.ListingQuery{Search: "email"})
		require.NoError(t, err)
		// "emailer" is not an exact tag match and neither name contains "email".
		assert.Equal(t, []string{"inbox-helper"}, slugs(got))
	})

	t.Run("filters combine", func(t *testing.T) {
		got, err := svc.ListListings(ctx, domain.ListingQuery{Category: domain.CategoryMarketing, Search: "email"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestCatalogService_GetListing(t *testing.T) {
	db := newDB(t)
	seedCatalog(db)
	svc := newCatalog(db)

	l, err := svc.GetListing(context.Background(), "ad-writer")
	require.NoError(t, err)
	assert.Equal(t, "Ad Writer", l.Name)

	_, err = svc.GetListing(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_BundleDropsDeletedListings(t *testing.T) {
	db := newDB(t)
	a := db.PutListing(listing("A", "a", domain.CategoryFinance, 1, 0))
	b := db.PutListing(listing("B", "b", domain.CategoryFinance, 1, 0))
	c := db.PutListing(listing("C", "c", domain.CategoryFinance, 1, 0))
	db.PutBundle(domain.Bundle{Name: "Kit", Slug: "kit"}, a.ID, b.ID, c.ID)
	db.DeleteListing(b.ID)

	svc := newCatalog(db)
	bundle, err := svc.GetBundle(context.Background(), "kit")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, slugs(bundle.Agents))

	all, err := svc.ListBundles(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Agents, 2)
}

func TestCatalogService_EmptyBundle(t *testing.T) {
	db := newDB(t)
	db.PutBundle(domain.Bundle{Name: "Empty", Slug: "empty"})

	bundle, err := newCatalog(db).GetBundle(context.Background(), "empty")
	require.NoError(t, err)
	assert.NotNil(t, bundle.Agents)
	assert.Empty(t, bundle.Agents)

	_, err = newCatalog(db).GetBundle(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
