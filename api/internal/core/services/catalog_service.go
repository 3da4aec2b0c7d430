package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/irgordon/bazaar/api/internal/core/domain"
)

// CatalogService resolves browse queries and expands bundles into their listings.
type CatalogService struct {
	listings domain.ListingRepository
	bundles  domain.BundleRepository
	logger   *slog.Logger
}

func NewCatalogService(listings domain.ListingRepository, bundles domain.BundleRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		listings: listings,
		bundles:  bundles,
		logger:   logger,
	}
}

// ListListings returns the listings matching q, ordered by q.Sort (popular by default).
func (s *CatalogService) ListListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	q.Sort = q.Sort.Normalize()

	listings, err := s.listings.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

func (s *CatalogService) GetListing(ctx context.Context, slug string) (*domain.Listing, error) {
	l, err := s.listings.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get listing %q: %w", slug, err)
	}
	return l, nil
}

// ResolveBundle joins the bundle's links to listings in a single batch read.
// Links whose listing no longer exists are dropped silently.
func (s *CatalogService) ResolveBundle(ctx context.Context, bundleID uuid.UUID) ([]domain.Listing, error) {
	ids, err := s.bundles.ListingIDs(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("bundle %s links: %w", bundleID, err)
	}
	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}

	listings, err := s.listings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bundle %s listings: %w", bundleID, err)
	}
	if dangling := len(ids) - len(listings); dangling > 0 {
		s.logger.Warn("Bundle references missing listings",
			slog.String("bundle_id", bundleID.String()),
			slog.Int("dangling", dangling))
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

// ListBundles returns every bundle with its listings resolved.
func (s *CatalogService) ListBundles(ctx context.Context) ([]domain.Bundle, error) {
	bundles, err := s.bundles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}

	for i := range bundles {
		agents, err := s.ResolveBundle(ctx, bundles[i].ID)
		if err != nil {
			return nil, err
		}
		bundles[i].Agents = agents
	}
	if bundles == nil {
		bundles = []domain.Bundle{}
	}
	return bundles, nil
}

func (s *CatalogService) GetBundle(ctx context.Context, slug string) (*domain.Bundle, error) {
	b, err := s.bundles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get bundle %q: %w", slug, err)
	}

	agents, err := s.ResolveBundle(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Agents = agents
	return b, nil
}
