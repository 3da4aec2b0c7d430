package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/telemetry"
)

// DefaultFanOutLimit bounds concurrent counter updates for one bundle purchase.
const DefaultFanOutLimit = 8

// counterTimeout caps the counter updates that follow a recorded purchase. They run
// detached from the caller's cancellation so a dropped request cannot strand a purchase.
const counterTimeout = 10 * time.Second

// LedgerService records purchases and moves the sales counters they imply.
type LedgerService struct {
	listings    domain.ListingRepository
	bundles     domain.BundleRepository
	purchases   domain.PurchaseRepository
	hub         *telemetry.Hub
	logger      *slog.Logger
	fanOutLimit int
}

func NewLedgerService(
	listings domain.ListingRepository,
	bundles domain.BundleRepository,
	purchases domain.PurchaseRepository,
	hub *telemetry.Hub,
	logger *slog.Logger,
	fanOutLimit int,
) *LedgerService {
	if fanOutLimit <= 0 {
		fanOutLimit = DefaultFanOutLimit
	}
	return &LedgerService{
		listings:    listings,
		bundles:     bundles,
		purchases:   purchases,
		hub:         hub,
		logger:      logger,
		fanOutLimit: fanOutLimit,
	}
}

// PurchaseListing records a purchase of one listing and bumps its sales_count by one.
// If the listing is unknown nothing is written. If the counter update fails after the
// purchase was recorded, a *domain.PartialFailureError is returned alongside the purchase.
func (s *LedgerService) PurchaseListing(ctx context.Context, listingID uuid.UUID, userID string) (*domain.Purchase, error) {
	// 1. Existence check before any side effect
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, fmt.Errorf("purchase listing %s: %w", listingID, err)
	}

	// 2. Append the ledger entry
	p := domain.NewListingPurchase(userID, listingID)
	if err := s.record(ctx, p); err != nil {
		return nil, err
	}

	// 3. Atomic increment, no longer tied to the request
	settle, cancel := settleContext(ctx)
	defer cancel()
	count, err := s.listings.IncrementSales(settle, listingID, 1)
	if err != nil {
		s.logger.Error("Sales counter update failed after purchase was recorded",
			slog.String("purchase_id", p.ID.String()),
			slog.String("listing_id", listingID.String()),
			slog.Any("error", err))
		return p, &domain.PartialFailureError{
			Purchase: p,
			Failed:   map[uuid.UUID]error{listingID: err},
		}
	}

	s.logger.Info("Listing purchased",
		slog.String("purchase_id", p.ID.String()),
		slog.String("listing_id", listingID.String()),
		slog.Int("sales_count", count))
	s.publish(p, []uuid.UUID{listingID})
	return p, nil
}

// PurchaseBundle records one bundle purchase and bumps the sales_count of every listing
// currently linked to the bundle. Each increment is atomic on its own; there is no
// cross-listing transaction. Links to deleted listings are skipped.
func (s *LedgerService) PurchaseBundle(ctx context.Context, bundleID uuid.UUID, userID string) (*domain.Purchase, error) {
	// 1. Existence check
	if _, err := s.bundles.GetByID(ctx, bundleID); err != nil {
		return nil, fmt.Errorf("purchase bundle %s: %w", bundleID, err)
	}

	// 2. Ids are enough; no need to load the listings themselves
	ids, err := s.bundles.ListingIDs(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("purchase bundle %s: links: %w", bundleID, err)
	}

	// 3. One ledger entry for the whole bundle
	p := domain.NewBundlePurchase(userID, bundleID)
	if err := s.record(ctx, p); err != nil {
		return nil, err
	}

	// 4. Parallel fan-out, no longer tied to the request
	settle, cancel := settleContext(ctx)
	defer cancel()
	out := s.incrementAll(settle, ids)
	if len(out.failed) > 0 {
		s.logger.Error("Bundle purchase left counters unreconciled",
			slog.String("purchase_id", p.ID.String()),
			slog.String("bundle_id", bundleID.String()),
			slog.Int("applied", len(out.applied)),
			slog.Int("failed", len(out.failed)))
		return p, &domain.PartialFailureError{
			Purchase: p,
			Applied:  out.applied,
			Skipped:  out.skipped,
			Failed:   out.failed,
		}
	}

	s.logger.Info("Bundle purchased",
		slog.String("purchase_id", p.ID.String()),
		slog.String("bundle_id", bundleID.String()),
		slog.Int("listings", len(out.applied)),
		slog.Int("skipped", len(out.skipped)))
	s.publish(p, out.applied)
	return p, nil
}

// settleContext keeps ctx values (trace spans, request ids) but drops its cancellation.
func settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), counterTimeout)
}

type fanOutResult struct {
	applied []uuid.UUID
	skipped []uuid.UUID
	failed  map[uuid.UUID]error
}

func (s *LedgerService) incrementAll(ctx context.Context, ids []uuid.UUID) fanOutResult {
	var (
		mu  sync.Mutex
		out = fanOutResult{failed: map[uuid.UUID]error{}}
		g   errgroup.Group
	)
	g.SetLimit(s.fanOutLimit)

	for _, id := range ids {
		g.Go(func() error {
			_, err := s.listings.IncrementSales(ctx, id, 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out.applied = append(out.applied, id)
			case errors.Is(err, domain.ErrNotFound):
				out.skipped = append(out.skipped, id)
			default:
				out.failed[id] = err
			}
			// Every id gets its attempt; failures are collected, not propagated.
			return nil
		})
	}
	_ = g.Wait()

	sortIDs(out.applied)
	sortIDs(out.skipped)
	return out
}

func (s *LedgerService) record(ctx context.Context, p *domain.Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.purchases.Create(ctx, p); err != nil {
		return fmt.Errorf("record %s purchase of %s: %w", p.Kind, p.Target(), err)
	}
	return nil
}

func (s *LedgerService) publish(p *domain.Purchase, listingIDs []uuid.UUID) {
	if s.hub == nil {
		return
	}
	at := p.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	s.hub.Publish(telemetry.SaleEvent{
		PurchaseID: p.ID,
		Kind:       p.Kind,
		TargetID:   p.Target(),
		ListingIDs: listingIDs,
		At:         at,
	})
}

// UserPurchases returns the user's raw ledger entries, newest first.
func (s *LedgerService) UserPurchases(ctx context.Context, userID string) ([]domain.Purchase, error) {
	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("purchases of %q: %w", userID, err)
	}
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	return purchases, nil
}

// PurchasedListings returns the deduplicated set of listings the user owns: those bought
// directly plus those in any bought bundle. Bundle contents are resolved live, so a
// listing added to a bundle after its purchase counts as owned.
func (s *LedgerService) PurchasedListings(ctx context.Context, userID string) ([]domain.Listing, error) {
	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("purchases of %q: %w", userID, err)
	}

	owned := map[uuid.UUID]struct{}{}
	seenBundles := map[uuid.UUID]struct{}{}
	for _, p := range purchases {
		switch p.Kind {
		case domain.PurchaseAgent:
			if p.AgentID != nil {
				owned[*p.AgentID] = struct{}{}
			}
		case domain.PurchaseBundle:
			if p.BundleID == nil {
				continue
			}
			if _, done := seenBundles[*p.BundleID]; done {
				continue
			}
			seenBundles[*p.BundleID] = struct{}{}

			ids, err := s.bundles.ListingIDs(ctx, *p.BundleID)
			if err != nil {
				return nil, fmt.Errorf("purchased bundle %s links: %w", *p.BundleID, err)
			}
			for _, id := range ids {
				owned[id] = struct{}{}
			}
		}
	}

	if len(owned) == 0 {
		return []domain.Listing{}, nil
	}

	ids := make([]uuid.UUID, 0, len(owned))
	for id := range owned {
		ids = append(ids, id)
	}
	sortIDs(ids)

	listings, err := s.listings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("owned listings of %q: %w", userID, err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

func sortIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
}
