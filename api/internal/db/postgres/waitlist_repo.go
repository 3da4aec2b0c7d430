// api/internal/db/postgres/waitlist_repo.go
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

type WaitlistRepository struct {
	db *sqlx.DB
}

func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// Add appends a signup. Duplicate emails are accepted.
func (r *WaitlistRepository) Add(ctx context.Context, e *domain.WaitlistEntry) (err error) {
	ctx, span := tracer.Start(ctx, "WaitlistRepository.Add")
	defer func() { endSpan(span, err) }()

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO atlas_waitlist (email, goals) VALUES ($1, $2) RETURNING id, created_at`,
		e.Email, e.Goals,
	).Scan(&e.ID, &e.CreatedAt)
	return mapError(err)
}

var _ domain.WaitlistRepository = (*WaitlistRepository)(nil)
