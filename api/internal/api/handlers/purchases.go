// api/internal/api/handlers/purchases.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/core/services"
)

// ==============================================================================
// 1. Request Payloads
// ==============================================================================

type PurchaseAgentRequest struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
	UserID  string `json:"user_id" validate:"required,max=255"`
}

type PurchaseBundleRequest struct {
	BundleID string `json:"bundle_id" validate:"required,uuid"`
	UserID   string `json:"user_id" validate:"required,max=255"`
}

type userQuery struct {
	UserID string `json:"user_id" validate:"required,max=255"`
}

type purchaseResponse struct {
	Message  string           `json:"message"`
	Purchase *domain.Purchase `json:"purchase"`
}

// ==============================================================================
// 2. Handler
// ==============================================================================

type PurchaseHandler struct {
	Service *services.LedgerService
	Logger  *slog.Logger
}

func NewPurchaseHandler(service *services.LedgerService, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{Service: service, Logger: logger}
}

// PurchaseAgent handles POST /api/purchases/agent
func (h *PurchaseHandler) PurchaseAgent(w http.ResponseWriter, r *http.Request) {
	var req PurchaseAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	p, err := h.Service.PurchaseListing(r.Context(), uuid.MustParse(req.AgentID), req.UserID)
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseResponse{Message: "Purchase successful", Purchase: p})
}

// PurchaseBundle handles POST /api/purchases/bundle
func (h *PurchaseHandler) PurchaseBundle(w http.ResponseWriter, r *http.Request) {
	var req PurchaseBundleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	p, err := h.Service.PurchaseBundle(r.Context(), uuid.MustParse(req.BundleID), req.UserID)
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseResponse{Message: "Bundle purchase successful", Purchase: p})
}

// List handles GET /api/purchases?user_id=
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := userQuery{UserID: r.URL.Query().Get("user_id")}
	if err := validate.Struct(q); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	purchases, err := h.Service.UserPurchases(r.Context(), q.UserID)
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

// PurchasedAgents handles GET /api/purchases/agents?user_id=
// Bundle purchases contribute their current members.
func (h *PurchaseHandler) PurchasedAgents(w http.ResponseWriter, r *http.Request) {
	q := userQuery{UserID: r.URL.Query().Get("user_id")}
	if err := validate.Struct(q); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	listings, err := h.Service.PurchasedListings(r.Context(), q.UserID)
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}
