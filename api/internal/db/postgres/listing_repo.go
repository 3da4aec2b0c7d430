// api/internal/db/postgres/listing_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

const listingColumns = `id, name, slug, description, long_description, category, price, price_type,
	original_price, icon, screenshots, demo_url, install_type, atlas_compatible, developer_name,
	rating, review_count, sales_count, featured, tags, created_at`

// Whitelisted ORDER BY clauses. created_at breaks ties so paging stays stable.
var listingOrder = map[domain.ListingSort]string{
	domain.SortPopular:      "sales_count DESC, created_at ASC",
	domain.SortHighestRated: "rating DESC, created_at ASC",
	domain.SortPriceLow:     "price ASC, created_at ASC",
	domain.SortPriceHigh:    "price DESC, created_at ASC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

// List builds the browse query from the optional filters.
func (r *ListingRepository) List(ctx context.Context, q domain.ListingQuery) (_ []domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingRepository.List")
	defer func() { endSpan(span, err) }()

	query := `SELECT ` + listingColumns + ` FROM agent_listings WHERE 1=1`
	var args []any
	argCount := 1

	if q.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argCount)
		args = append(args, q.Category)
		argCount++
	}
	if q.Search != "" {
		// Name matches on substring (case-insensitive); tags only on the exact term.
		query += fmt.Sprintf(" AND (name ILIKE $%d OR $%d = ANY(tags))", argCount, argCount+1)
		args = append(args, "%"+likeEscaper.Replace(q.Search)+"%", q.Search)
		argCount += 2
	}
	sort := q.Sort.Normalize()
	query += " ORDER BY " + listingOrder[sort]
	span.SetAttributes(attribute.String("listing.sort", string(sort)))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	listings, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Listing])
	if err != nil {
		return nil, mapError(err)
	}
	return listings, nil
}

func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (_ *domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingRepository.GetBySlug")
	defer func() { endSpan(span, err) }()

	return r.getOne(ctx, `SELECT `+listingColumns+` FROM agent_listings WHERE slug = $1`, slug)
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingRepository.GetByID")
	defer func() { endSpan(span, err) }()

	return r.getOne(ctx, `SELECT `+listingColumns+` FROM agent_listings WHERE id = $1`, id)
}

func (r *ListingRepository) getOne(ctx context.Context, query string, arg any) (*domain.Listing, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	l, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[domain.Listing])
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

// GetByIDs resolves a set of ids in one round trip. Missing ids are simply absent.
func (r *ListingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (_ []domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingRepository.GetByIDs")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("listing.ids", len(ids)))

	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM agent_listings WHERE id = ANY($1::uuid[]) ORDER BY created_at`, keys)
	if err != nil {
		return nil, mapError(err)
	}
	listings, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Listing])
	if err != nil {
		return nil, mapError(err)
	}
	return listings, nil
}

func (r *ListingRepository) ListByDeveloper(ctx context.Context, developerName string) (_ []domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingRepository.ListByDeveloper")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM agent_listings WHERE developer_name = $1 ORDER BY sales_count DESC, created_at ASC`,
		developerName)
	if err != nil {
		return nil, mapError(err)
	}
	listings, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Listing])
	if err != nil {
		return nil, mapError(err)
	}
	return listings, nil
}

// Create inserts the listing; the unique slug index turns collisions into ErrConflict.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) (err error) {
	ctx, span := tracer.Start(ctx, "ListingRepository.Create")
	defer func() { endSpan(span, err) }()

	query := `
		INSERT INTO agent_listings (name, slug, description, long_description, category, price, price_type,
			original_price, icon, screenshots, demo_url, install_type, atlas_compatible, developer_name,
			rating, review_count, sales_count, featured, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at
	`
	err = r.pool.QueryRow(ctx, query,
		l.Name, l.Slug, l.Description, l.LongDescription, l.Category, l.Price, l.PriceType,
		l.OriginalPrice, l.Icon, nonNil(l.Screenshots), l.DemoURL, l.InstallType, l.AtlasCompatible,
		l.DeveloperName, l.Rating, l.ReviewCount, l.SalesCount, l.Featured, nonNil(l.Tags),
	).Scan(&l.ID, &l.CreatedAt)
	return mapError(err)
}

// 🛡️ IncrementSales is a single relative UPDATE: the row lock serialises concurrent
// buyers, so no read-modify-write window exists.
func (r *ListingRepository) IncrementSales(ctx context.Context, id uuid.UUID, delta int) (_ int, err error) {
	ctx, span := tracer.Start(ctx, "ListingRepository.IncrementSales")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("listing.id", id.String()), attribute.Int("delta", delta))

	var count int
	err = r.pool.QueryRow(ctx,
		`UPDATE agent_listings SET sales_count = sales_count + $2 WHERE id = $1 RETURNING sales_count`,
		id, delta,
	).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ domain.ListingRepository = (*ListingRepository)(nil)
