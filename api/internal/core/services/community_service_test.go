package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/core/services"
	"github.com/irgordon/bazaar/api/internal/db/memory"
)

func newCommunity(db *memory.DB) *services.CommunityService {
	return services.NewCommunityService(memory.NewReviewRepository(db), memory.NewWaitlistRepository(db), discardLogger())
}

func TestCommunityService_SubmitReview_FoldsIntoAverage(t *testing.T) {
	db := newDB(t)
	l := listing("A", "a", domain.CategoryFinance, 1, 0)
	l.Rating, l.ReviewCount = 4.0, 1
	l = db.PutListing(l)
	svc := newCommunity(db)
	ctx := context.Background()

	r := &domain.Review{AgentID: l.ID, UserName: "ada", Rating: 5, Comment: "great"}
	require.NoError(t, svc.SubmitReview(ctx, r))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.False(t, r.Date.IsZero())

	updated, err := memory.NewListingRepository(db).GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated.Rating)
	assert.Equal(t, 2, updated.ReviewCount)

	reviews, err := svc.Reviews(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "ada", reviews[0].UserName)
}

func TestCommunityService_SubmitReview_Rejects(t *testing.T) {
	db := newDB(t)
	l := db.PutListing(listing("A", "a", domain.CategoryFinance, 1, 0))
	svc := newCommunity(db)

	err := svc.SubmitReview(context.Background(), &domain.Review{AgentID: l.ID, Rating: 5.5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.SubmitReview(context.Background(), &domain.Review{AgentID: uuid.New(), Rating: 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommunityService_ReviewsEmpty(t *testing.T) {
	reviews, err := newCommunity(newDB(t)).Reviews(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestCommunityService_JoinWaitlist(t *testing.T) {
	svc := newCommunity(newDB(t))

	e, err := svc.JoinWaitlist(context.Background(), " ada@example.com ", nil)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", e.Email)
	assert.NotNil(t, e.Goals)
	assert.NotEqual(t, uuid.Nil, e.ID)

	// No dedup: the same address may sign up twice.
	_, err = svc.JoinWaitlist(context.Background(), "ada@example.com", []string{"automate email"})
	require.NoError(t, err)

	_, err = svc.JoinWaitlist(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
