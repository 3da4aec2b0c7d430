package services_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/db/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// listing builds a valid listing with the fields the tests care about.
func listing(name, slug string, cat domain.Category, price float64, sales int) domain.Listing {
	return domain.Listing{
		Name: name, Slug: slug, Category: cat, Price: price, OriginalPrice: price,
		PriceType: domain.PriceLifetime, InstallType: domain.InstallAPI,
		SalesCount: sales, Tags: []string{}, Screenshots: []string{},
	}
}

func newDB(t *testing.T) *memory.DB {
	t.Helper()
	return memory.New()
}
