// api/internal/api/handlers/catalog.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/irgordon/bazaar/api/internal/core/domain"
	"github.com/irgordon/bazaar/api/internal/core/services"
)

// CatalogHandler serves the read-only browse endpoints for listings and bundles.
type CatalogHandler struct {
	Service *services.CatalogService
	Logger  *slog.Logger
}

func NewCatalogHandler(service *services.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{Service: service, Logger: logger}
}

type listAgentsQuery struct {
	Category string `json:"category" validate:"omitempty,oneof=productivity marketing personal ecommerce dev-tools finance"`
	Sort     string `json:"sort"`
	Search   string `json:"search" validate:"max=200"`
}

// ListAgents handles GET /api/agents?category=&sort=&search=
// An unknown sort silently falls back to popular; an unknown category is a 400.
func (h *CatalogHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	q := listAgentsQuery{
		Category: r.URL.Query().Get("category"),
		Sort:     r.URL.Query().Get("sort"),
		Search:   r.URL.Query().Get("search"),
	}
	if err := validate.Struct(q); err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}

	listings, err := h.Service.ListListings(r.Context(), domain.ListingQuery{
		Category: domain.Category(q.Category),
		Sort:     domain.ListingSort(q.Sort),
		Search:   q.Search,
	})
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// GetAgent handles GET /api/agents/{slug}
func (h *CatalogHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.GetListing(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// ListBundles handles GET /api/bundles
func (h *CatalogHandler) ListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := h.Service.ListBundles(r.Context())
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bundles)
}

// GetBundle handles GET /api/bundles/{slug}
func (h *CatalogHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.Service.GetBundle(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		HandleError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}
