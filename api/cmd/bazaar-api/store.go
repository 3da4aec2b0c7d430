package main

import (
	"context"
	"log/slog"

	"github.com/irgordon/bazaar/api/internal/config"
	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/db/memory"
	"github.com/irgordon/bazaar/api/internal/db/postgres"
)

// store bundles the repositories of one backend with its health probe and teardown.
type store struct {
	listings  domain.ListingRepository
	bundles   domain.BundleRepository
	purchases domain.PurchaseRepository
	reviews   domain.ReviewRepository
	waitlist  domain.WaitlistRepository
	pinger    interface{ Ping(context.Context) error }
	close     func()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		db := memory.New()
		if seedDemo {
			memory.SeedDemo(db)
		}
		logger.Warn("Using in-memory store; data is lost on exit", "seeded", seedDemo)
		return &store{
			listings:  memory.NewListingRepository(db),
			bundles:   memory.NewBundleRepository(db),
			purchases: memory.NewPurchaseRepository(db),
			reviews:   memory.NewReviewRepository(db),
			waitlist:  memory.NewWaitlistRepository(db),
			pinger:    db,
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	sqlxDB := postgres.NewSQLX(pool)
	return &store{
		listings:  postgres.NewListingRepository(pool),
		bundles:   postgres.NewBundleRepository(pool),
		purchases: postgres.NewPurchaseRepository(pool),
		reviews:   postgres.NewReviewRepository(sqlxDB),
		waitlist:  postgres.NewWaitlistRepository(sqlxDB),
		pinger:    pool,
		close: func() {
			_ = sqlxDB.Close()
			pool.Close()
		},
	}, nil
}
