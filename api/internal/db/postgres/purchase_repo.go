// api/internal/db/postgres/purchase_repo.go
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

// PurchaseRepository is the append-only ledger. Rows are never updated or deleted.
type PurchaseRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// Create appends the purchase. The CHECK constraint on the table enforces the same
// union Validate does, and the foreign keys reject unknown targets.
func (r *PurchaseRepository) Create(ctx context.Context, p *domain.Purchase) (err error) {
	ctx, span := tracer.Start(ctx, "PurchaseRepository.Create")
	defer func() { endSpan(span, err) }()

	if err = p.Validate(); err != nil {
		return err
	}
	span.SetAttributes(attribute.String("purchase.type", string(p.Kind)))

	query := `
		INSERT INTO purchases (user_id, type, agent_id, bundle_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = r.pool.QueryRow(ctx, query, p.UserID, p.Kind, p.AgentID, p.BundleID).Scan(&p.ID, &p.CreatedAt)
	return mapError(err)
}

func (r *PurchaseRepository) ListByUser(ctx context.Context, userID string) (_ []domain.Purchase, err error) {
	ctx, span := tracer.Start(ctx, "PurchaseRepository.ListByUser")
	defer func() { endSpan(span, err) }()

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, agent_id, bundle_id, created_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	purchases, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Purchase])
	if err != nil {
		return nil, mapError(err)
	}
	return purchases, nil
}

var _ domain.PurchaseRepository = (*PurchaseRepository)(nil)
