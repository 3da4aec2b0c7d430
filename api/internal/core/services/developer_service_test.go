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

func TestComputeDeveloperStats_WeightsByReviewCount(t *testing.T) {
	listings := []domain.Listing{
		{Price: 10, SalesCount: 3, Rating: 4.0, ReviewCount: 10},
		{Price: 2.5, SalesCount: 4, Rating: 2.0, ReviewCount: 0},
	}

	stats := services.ComputeDeveloperStats("Northwind", listings)

	assert.Equal(t, "Northwind", stats.DeveloperName)
	assert.Equal(t, 4.0, stats.AvgRating, "a listing without reviews carries no weight")
	assert.Equal(t, 40.0, stats.TotalRevenue)
	assert.Equal(t, 7, stats.TotalSales)
	assert.Equal(t, 2, stats.AgentCount)
}

func TestComputeDeveloperStats_RoundsToCents(t *testing.T) {
	listings := []domain.Listing{
		{Price: 0.1, SalesCount: 3, Rating: 4.5, ReviewCount: 2},
		{Price: 0.2, SalesCount: 1, Rating: 3.0, ReviewCount: 1},
	}

	stats := services.ComputeDeveloperStats("d", listings)

	assert.Equal(t, 0.5, stats.TotalRevenue)
	assert.Equal(t, 4.0, stats.AvgRating)
}

func TestComputeDeveloperStats_Empty(t *testing.T) {
	stats := services.ComputeDeveloperStats("nobody", nil)
	assert.Equal(t, domain.DeveloperStats{DeveloperName: "nobody"}, *stats)

	noReviews := services.ComputeDeveloperStats("quiet", []domain.Listing{{Price: 5, SalesCount: 1}})
	assert.Zero(t, noReviews.AvgRating)
	assert.Equal(t, 5.0, noReviews.TotalRevenue)
}

func TestDeveloperService_Listings(t *testing.T) {
	db := newDB(t)
	for _, l := range []domain.Listing{
		listing("Low", "low", domain.CategoryFinance, 1, 2),
		listing("High", "high", domain.CategoryFinance, 1, 20),
		listing("Other", "other", domain.CategoryFinance, 1, 99),
	} {
		if l.Slug != "other" {
			l.DeveloperName = "Abacus"
		}
		db.PutListing(l)
	}
	svc := services.NewDeveloperService(memory.NewListingRepository(db), discardLogger())

	got, err := svc.Listings(context.Background(), "Abacus")
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low"}, slugs(got))

	stats, err := svc.Stats(context.Background(), "Abacus")
	require.NoError(t, err)
	assert.Equal(t, 22, stats.TotalSales)
	assert.Equal(t, 2, stats.AgentCount)
}

func TestDeveloperService_SubmitListing(t *testing.T) {
	db := newDB(t)
	svc := services.NewDeveloperService(memory.NewListingRepository(db), discardLogger())
	ctx := context.Background()

	l, err := svc.SubmitListing(ctx, domain.ListingDraft{
		Name:        "My Cool Agent!!",
		Category:    domain.CategoryDevTools,
		Description: "Reviews pull requests.",
		Price:       19,
		PriceType:   domain.PriceMonthly,
	})
	require.NoError(t, err)

	assert.Equal(t, "my-cool-agent", l.Slug)
	assert.Equal(t, 19.0, l.OriginalPrice)
	assert.Equal(t, domain.InstallAPI, l.InstallType)
	assert.Equal(t, services.DefaultIcon, l.Icon)
	assert.Empty(t, l.DeveloperName)
	assert.Zero(t, l.SalesCount)
	assert.Zero(t, l.ReviewCount)
	assert.Zero(t, l.Rating)
	assert.False(t, l.Featured)
	assert.NotNil(t, l.Tags)

	stored, err := memory.NewListingRepository(db).GetBySlug(ctx, "my-cool-agent")
	require.NoError(t, err)
	assert.Equal(t, l.ID, stored.ID)

	t.Run("slug collision is rejected", func(t *testing.T) {
		_, err := svc.SubmitListing(ctx, domain.ListingDraft{
			Name: "my cool agent", Category: domain.CategoryDevTools, PriceType: domain.PriceFree,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestDeveloperService_SubmitListing_Invalid(t *testing.T) {
	svc := services.NewDeveloperService(memory.NewListingRepository(newDB(t)), discardLogger())
	valid := domain.ListingDraft{Name: "Agent", Category: domain.CategoryFinance, PriceType: domain.PriceFree}

	cases := map[string]func(d *domain.ListingDraft){
		"empty name":        func(d *domain.ListingDraft) { d.Name = "   " },
		"name without slug": func(d *domain.ListingDraft) { d.Name = "!!!" },
		"unknown category":  func(d *domain.ListingDraft) { d.Category = "games" },
		"unknown price":     func(d *domain.ListingDraft) { d.PriceType = "weekly" },
		"unknown install":   func(d *domain.ListingDraft) { d.InstallType = "carrier-pigeon" },
		"negative price":    func(d *domain.ListingDraft) { d.Price = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := valid
			mutate(&d)
			_, err := svc.SubmitListing(context.Background(), d)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
