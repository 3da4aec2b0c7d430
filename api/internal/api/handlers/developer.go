// api/internal/api/handlers/developer.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/core/services"
)

type SubmitAgentRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	Category        string  `json:"category" validate:"required,oneof=productivity marketing personal ecommerce dev-tools finance"`
	Description     string  `json:"description" validate:"required,max=2000"`
	Price           float64 `json:"price" validate:"gte=0"`
	PriceType       string  `json:"price_type" validate:"required,oneof=lifetime monthly free"`
	DemoURL         string  `json:"demo_url" validate:"omitempty,url"`
	InstallType     string  `json:"install_type" validate:"omitempty,oneof=api telegram zapier nocode custom"`
	AtlasCompatible bool    `json:"atlas_compatible"`
}

type developerQuery struct {
	DeveloperName string `json:"developer_name" validate:"required,max=255"`
}

type DeveloperHandler struct {
	Service *services.DeveloperService
	Logger  *slog.Logger
}

func NewDeveloperHandler(service *services.DeveloperService, logger *slog.Logger) *DeveloperHandler {
	return &DeveloperHandler{Service: service, Logger: logger}
}

// Stats handles GET /api/dev/stats?developer_name=
func (h *DeveloperHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := developerQuery{DeveloperName: r.URL.Query().Get("developer_name")}
	if err := validate.Struct(q); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	stats, err := h.Service.Stats(r.Context(), q.DeveloperName)
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Agents handles GET /api/dev/agents?developer_name=
func (h *DeveloperHandler) Agents(w http.ResponseWriter, r *http.Request) {
	q := developerQuery{DeveloperName: r.URL.Query().Get("developer_name")}
	if err := validate.Struct(q); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	listings, err := h.Service.Listings(r.Context(), q.DeveloperName)
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// Submit handles POST /api/dev/agents
func (h *DeveloperHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	listing, err := h.Service.SubmitListing(r.Context(), domain.ListingDraft{
		Name:            req.Name,
		Category:        domain.Category(req.Category),
		Description:     req.Description,
		Price:           req.Price,
		PriceType:       domain.PriceType(req.PriceType),
		DemoURL:         req.DemoURL,
		InstallType:     domain.InstallType(req.InstallType),
		AtlasCompatible: req.AtlasCompatible,
	})
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Agent submitted for review",
		"agent":   listing,
	})
}
