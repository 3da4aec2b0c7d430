// api/internal/db/postgres/bundle_repo.go
package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

const bundleColumns = `id, name, slug, description, price, original_price, category, atlas_hint, featured, created_at`

type BundleRepository struct {
	pool *pgxpool.Pool
}

func NewBundleRepository(pool *pgxpool.Pool) *BundleRepository {
	return &BundleRepository{pool: pool}
}

func (r *BundleRepository) List(ctx context.Context) (_ []domain.Bundle, err error) {
	ctx, span := tracer.Start(ctx, "BundleRepository.List")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx, `SELECT `+bundleColumns+` FROM bundles ORDER BY featured DESC, created_at ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	bundles, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.Bundle])
	if err != nil {
		return nil, mapError(err)
	}
	return bundles, nil
}

func (r *BundleRepository) GetBySlug(ctx context.Context, slug string) (_ *domain.Bundle, err error) {
	ctx, span := tracer.Start(ctx, "BundleRepository.GetBySlug")
	defer func() { endSpan(span, err) }()

	return r.getOne(ctx, `SELECT `+bundleColumns+` FROM bundles WHERE slug = $1`, slug)
}

func (r *BundleRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *domain.Bundle, err error) {
	ctx, span := tracer.Start(ctx, "BundleRepository.GetByID")
	defer func() { endSpan(span, err) }()

	return r.getOne(ctx, `SELECT `+bundleColumns+` FROM bundles WHERE id = $1`, id)
}

func (r *BundleRepository) getOne(ctx context.Context, query string, arg any) (*domain.Bundle, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	b, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.Bundle])
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

// ListingIDs reads the link table only. Dangling links come back too; the
// catalog drops them when it resolves the listings.
func (r *BundleRepository) ListingIDs(ctx context.Context, bundleID uuid.UUID) (_ []uuid.UUID, err error) {
	ctx, span := tracer.Start(ctx, "BundleRepository.ListingIDs")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx, `SELECT agent_id FROM bundle_agents WHERE bundle_id = $1`, bundleID)
	if err != nil {
		return nil, mapError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

var _ domain.BundleRepository = (*BundleRepository)(nil)
