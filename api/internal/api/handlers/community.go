// api/internal/api/handlers/community.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/core/services"
)

type SubmitReviewRequest struct {
	AgentID  string   `json:"agent_id" validate:"required,uuid"`
	UserName string   `json:"user_name" validate:"required,max=100"`
	Rating   *float64 `json:"rating" validate:"required,gte=0,lte=5"`
	Comment  string   `json:"comment" validate:"max=5000"`
}

type JoinWaitlistRequest struct {
	Email string   `json:"email" validate:"required,email"`
	Goals []string `json:"goals" validate:"max=20,dive,max=200"`
}

type reviewsQuery struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
}

// CommunityHandler serves reviews and the Atlas waitlist.
type CommunityHandler struct {
	Service *services.CommunityService
	Logger  *slog.Logger
}

func NewCommunityHandler(service *services.CommunityService, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{Service: service, Logger: logger}
}

// Reviews handles GET /api/reviews?agent_id=
func (h *CommunityHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	q := reviewsQuery{AgentID: r.URL.Query().Get("agent_id")}
	if err := validate.Struct(q); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	reviews, err := h.Service.Reviews(r.Context(), uuid.MustParse(q.AgentID))
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// SubmitReview handles POST /api/reviews
func (h *CommunityHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	review := &domain.Review{
		AgentID:  uuid.MustParse(req.AgentID),
		UserName: req.UserName,
		Rating:   *req.Rating,
		Comment:  req.Comment,
	}
	if err := h.Service.SubmitReview(r.Context(), review); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// JoinWaitlist handles POST /api/atlas/waitlist
func (h *CommunityHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req JoinWaitlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	entry, err := h.Service.JoinWaitlist(r.Context(), req.Email, req.Goals)
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully joined the waitlist",
		"data":    entry,
	})
}
