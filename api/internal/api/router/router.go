// api/internal/api/router/router.go
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/irgordon/bazaar/api/internal/api/handlers"
	bazaar_middleware "github.com/irgordon/bazaar/api/internal/api/middleware"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins   []string
	CatalogHandler   *handlers.CatalogHandler
	PurchaseHandler  *handlers.PurchaseHandler
	FeedHandler      *handlers.FeedHandler
	DeveloperHandler *handlers.DeveloperHandler
	CommunityHandler *handlers.CommunityHandler
	SystemHandler    *handlers.SystemHandler
	RateLimiter      *bazaar_middleware.RateLimiter
	Logger           *slog.Logger
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Gateway Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(bazaar_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	// 🛡️ Limit all incoming JSON requests to 1 Megabyte max (OOM Protection)
	r.Use(bazaar_middleware.MaxBytes(1_048_576))

	// The storefront is public; credentials are never sent.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// =========================================================================
	// 2. API Routing Tree
	// =========================================================================

	r.Route("/api", func(r chi.Router) {
		// The live feed is long-lived and must not inherit the request timeout.
		r.Get("/purchases/feed", cfg.FeedHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Catalog (read-only) ---
			r.Get("/agents", cfg.CatalogHandler.ListAgents)
			r.Get("/agents/{slug}", cfg.CatalogHandler.GetAgent)
			r.Get("/bundles", cfg.CatalogHandler.ListBundles)
			r.Get("/bundles/{slug}", cfg.CatalogHandler.GetBundle)
			r.Get("/reviews", cfg.CommunityHandler.Reviews)

			r.Get("/purchases", cfg.PurchaseHandler.List)
			r.Get("/purchases/agents", cfg.PurchaseHandler.PurchasedAgents)

			r.Get("/dev/stats", cfg.DeveloperHandler.Stats)
			r.Get("/dev/agents", cfg.DeveloperHandler.Agents)

			// --- Mutations ---
			// 🛡️ In-memory token bucket rate limiting on every write
			r.Group(func(r chi.Router) {
				if cfg.RateLimiter != nil {
					r.Use(cfg.RateLimiter.Limit)
				}
				r.Post("/purchases/agent", cfg.PurchaseHandler.PurchaseAgent)
				r.Post("/purchases/bundle", cfg.PurchaseHandler.PurchaseBundle)
				r.Post("/dev/agents", cfg.DeveloperHandler.Submit)
				r.Post("/reviews", cfg.CommunityHandler.SubmitReview)
				r.Post("/atlas/waitlist", cfg.CommunityHandler.JoinWaitlist)
			})
		})
	})

	r.Get("/", cfg.SystemHandler.Root)
	r.Get("/health", cfg.SystemHandler.Health)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}
