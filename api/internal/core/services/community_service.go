package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

// CommunityService covers the append-only, buyer-facing records: reviews and the
// Atlas waitlist.
type CommunityService struct {
	reviews  domain.ReviewRepository
	waitlist domain.WaitlistRepository
	logger   *slog.Logger
}

func NewCommunityService(reviews domain.ReviewRepository, waitlist domain.WaitlistRepository, logger *slog.Logger) *CommunityService {
	return &CommunityService{reviews: reviews, waitlist: waitlist, logger: logger}
}

func (s *CommunityService) Reviews(ctx context.Context, listingID uuid.UUID) ([]domain.Review, error) {
	reviews, err := s.reviews.ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("reviews of %s: %w", listingID, err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

// SubmitReview stores the review and folds its rating into the listing's average.
func (s *CommunityService) SubmitReview(ctx context.Context, r *domain.Review) error {
	if r.Rating < 0 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", domain.ErrInvalidInput)
	}
	if r.Date.IsZero() {
		r.Date = time.Now().UTC()
	}
	if err := s.reviews.AddReview(ctx, r); err != nil {
		return fmt.Errorf("review of %s: %w", r.AgentID, err)
	}
	s.logger.Info("Review submitted",
		slog.String("review_id", r.ID.String()),
		slog.String("listing_id", r.AgentID.String()),
		slog.Float64("rating", r.Rating))
	return nil
}

func (s *CommunityService) JoinWaitlist(ctx context.Context, email string, goals []string) (*domain.WaitlistEntry, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if goals == nil {
		goals = []string{}
	}

	e := &domain.WaitlistEntry{Email: email, Goals: goals}
	if err := s.waitlist.Add(ctx, e); err != nil {
		return nil, fmt.Errorf("join waitlist: %w", err)
	}
	return e, nil
}
