// api/internal/db/postgres/review_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

// ReviewRepository runs on sqlx: its queries are small enough that named binds and
// struct scanning read better than positional pgx calls.
type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID uuid.UUID) (_ []domain.Review, err error) {
	ctx, span := tracer.Start(ctx, "ReviewRepository.ListByListing")
	defer func() { endSpan(span, err) }()

	reviews := []domain.Review{}
	err = r.db.SelectContext(ctx, &reviews, `
		SELECT id, agent_id, user_name, rating, comment, date
		FROM reviews
		WHERE agent_id = $1
		ORDER BY date DESC
	`, listingID)
	if err != nil {
		return nil, mapError(err)
	}
	return reviews, nil
}

// AddReview moves the listing's running average and inserts the review in one
// transaction. The UPDATE takes the row lock, so concurrent reviews fold in one at a time.
func (r *ReviewRepository) AddReview(ctx context.Context, rv *domain.Review) (err error) {
	ctx, span := tracer.Start(ctx, "ReviewRepository.AddReview")
	defer func() { endSpan(span, err) }()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE agent_listings
		SET rating = ROUND((rating * review_count + $2) / (review_count + 1), 4),
		    review_count = review_count + 1
		WHERE id = $1
	`, rv.AgentID, rv.Rating)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	rv.ID = uuid.New()
	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO reviews (id, agent_id, user_name, rating, comment, date)
		VALUES (:id, :agent_id, :user_name, :rating, :comment, :date)
	`, rv); err != nil {
		return mapError(err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit review tx: %w", err)
	}
	return nil
}

var _ domain.ReviewRepository = (*ReviewRepository)(nil)
