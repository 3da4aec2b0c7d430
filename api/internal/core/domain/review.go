package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID       uuid.UUID `json:"id" db:"id"`
	AgentID  uuid.UUID `json:"agent_id" db:"agent_id"`
	UserName string    `json:"user_name" db:"user_name"`
	Rating   float64   `json:"rating" db:"rating"`
	Comment  string    `json:"comment" db:"comment"`
	Date     time.Time `json:"date" db:"date"`
}

// ReviewRepository stores reviews and keeps the listing's running average in step.
type ReviewRepository interface {
	// ListByListing returns the listing's reviews, newest first.
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Review, error)

	// AddReview appends r and folds its rating into the listing's weighted average
	// (rating, review_count) in the same atomic step. ErrNotFound if the listing is unknown.
	AddReview(ctx context.Context, r *Review) error
}
