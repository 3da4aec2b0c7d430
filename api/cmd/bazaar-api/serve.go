package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/irgordon/bazaar/api/internal/api/handlers"
	"github.com/irgordon/bazaar/api/internal/api/middleware"
	"github.com/irgordon/bazaar/api/internal/api/router"
	"github.com/irgordon/bazaar/api/internal/core/services"
	"github.com/irgordon/bazaar/api/internal/telemetry"
	"github.com/irgordon/bazaar/api/internal/workers"
)

func runServe(cmd *cobra.Command, _ []string) error {
	// --- 1. Core Telemetry & Configuration ---
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	logger.Info("🚀 Booting Agent Bazaar API...", "version", version, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("FATAL: tracing setup failed", "error", err)
		return err
	}

	// --- 2. Outbound Infrastructure ---
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("FATAL: DB failed", "error", err)
		return err
	}
	defer st.close()

	// 🛡️ Global Telemetry Hub (Memory Bus) feeding the live purchase stream
	hub := telemetry.NewHub()

	// --- 3. Dependency Injection ---
	catalog := services.NewCatalogService(st.listings, st.bundles, logger)
	ledger := services.NewLedgerService(st.listings, st.bundles, st.purchases, hub, logger, cfg.PurchaseFanOutLimit)
	developers := services.NewDeveloperService(st.listings, logger)
	community := services.NewCommunityService(st.reviews, st.waitlist, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	go limiter.Run(workerCtx)

	// Store availability monitor
	monitor := workers.NewStoreMonitor(st.pinger, logger, 30*time.Second)
	go monitor.Start(workerCtx)

	// --- 4. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		CatalogHandler:   handlers.NewCatalogHandler(catalog, logger),
		PurchaseHandler:  handlers.NewPurchaseHandler(ledger, logger),
		FeedHandler:      handlers.NewFeedHandler(hub, logger),
		DeveloperHandler: handlers.NewDeveloperHandler(developers, logger),
		CommunityHandler: handlers.NewCommunityHandler(community, logger),
		SystemHandler:    handlers.NewSystemHandler(st.pinger, version, logger).WithMonitor(monitor),
		RateLimiter:      limiter,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(mux, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	// Live feed streams never go idle; closing the hub ends them so Shutdown can drain.
	server.RegisterOnShutdown(hub.Close)

	// --- 5. Graceful Exit ---
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("🌐 Agent Bazaar API active", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("CRITICAL: Server crashed", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("🛑 Shutting down...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Tracer flush incomplete", "error", err)
	}
	logger.Info("✅ Agent Bazaar API shutdown complete")
	return nil
}
