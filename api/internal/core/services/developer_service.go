package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

// DefaultIcon is given to every submitted listing until the developer uploads one.
const DefaultIcon = "🤖"

// DeveloperService serves the developer portal: submissions and revenue rollups.
type DeveloperService struct {
	listings domain.ListingRepository
	logger   *slog.Logger
}

func NewDeveloperService(listings domain.ListingRepository, logger *slog.Logger) *DeveloperService {
	return &DeveloperService{listings: listings, logger: logger}
}

// Stats rolls up revenue, sales and the review-weighted rating of a developer's listings.
func (s *DeveloperService) Stats(ctx context.Context, developerName string) (*domain.DeveloperStats, error) {
	listings, err := s.listings.ListByDeveloper(ctx, developerName)
	if err != nil {
		return nil, fmt.Errorf("stats for %q: %w", developerName, err)
	}
	return ComputeDeveloperStats(developerName, listings), nil
}

// ComputeDeveloperStats is the pure aggregation behind Stats.
// Listings without reviews carry no weight in AvgRating; no reviews at all yields 0.
func ComputeDeveloperStats(developerName string, listings []domain.Listing) *domain.DeveloperStats {
	stats := &domain.DeveloperStats{DeveloperName: developerName}
	if len(listings) == 0 {
		return stats
	}

	revenue := decimal.Zero
	weighted := decimal.Zero
	reviews := 0
	for _, l := range listings {
		revenue = revenue.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.SalesCount))))
		weighted = weighted.Add(decimal.NewFromFloat(l.Rating).Mul(decimal.NewFromInt(int64(l.ReviewCount))))
		stats.TotalSales += l.SalesCount
		reviews += l.ReviewCount
	}

	stats.TotalRevenue = revenue.Round(2).InexactFloat64()
	if reviews > 0 {
		stats.AvgRating = weighted.Div(decimal.NewFromInt(int64(reviews))).Round(2).InexactFloat64()
	}
	stats.AgentCount = len(listings)
	return stats
}

// Listings returns the developer's listings, best sellers first.
func (s *DeveloperService) Listings(ctx context.Context, developerName string) ([]domain.Listing, error) {
	listings, err := s.listings.ListByDeveloper(ctx, developerName)
	if err != nil {
		return nil, fmt.Errorf("listings for %q: %w", developerName, err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

// SubmitListing turns a draft into a fresh listing with zeroed aggregates and an empty
// developer_name (assigned later by moderation). A slug already in use is rejected
// with domain.ErrConflict by the store.
func (s *DeveloperService) SubmitListing(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !draft.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, draft.Category)
	}
	if !draft.PriceType.Valid() {
		return nil, fmt.Errorf("%w: unknown price_type %q", domain.ErrInvalidInput, draft.PriceType)
	}
	if draft.InstallType == "" {
		draft.InstallType = domain.InstallAPI
	}
	if !draft.InstallType.Valid() {
		return nil, fmt.Errorf("%w: unknown install_type %q", domain.ErrInvalidInput, draft.InstallType)
	}
	if draft.Price < 0 {
		return nil, fmt.Errorf("%w: price must be >= 0", domain.ErrInvalidInput)
	}

	slug := Slugify(draft.Name)
	if strings.Trim(slug, "-") == "" {
		return nil, fmt.Errorf("%w: name %q does not produce a usable slug", domain.ErrInvalidInput, draft.Name)
	}

	l := &domain.Listing{
		Name:            draft.Name,
		Slug:            slug,
		Description:     draft.Description,
		Category:        draft.Category,
		Price:           draft.Price,
		PriceType:       draft.PriceType,
		OriginalPrice:   draft.Price,
		Icon:            DefaultIcon,
		Screenshots:     []string{},
		DemoURL:         draft.DemoURL,
		InstallType:     draft.InstallType,
		AtlasCompatible: draft.AtlasCompatible,
		Tags:            []string{},
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("submit listing %q: %w", slug, err)
	}

	s.logger.Info("Listing submitted for review",
		slog.String("listing_id", l.ID.String()),
		slog.String("slug", l.Slug))
	return l, nil
}
