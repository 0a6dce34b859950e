package main

import (
	"fmt"
	"log"
	"net/http"

	"payrelay/internal/api"
	"payrelay/internal/api/handlers"
	"payrelay/internal/api/middleware"
	"payrelay/internal/engine/callbacks"
	"payrelay/internal/engine/events"
	"payrelay/internal/engine/webhooks"
	"payrelay/internal/gateway"
	"payrelay/internal/pkg/logger"
	"payrelay/internal/platform/config"
	"payrelay/internal/platform/database"
	"payrelay/internal/platform/merchants"
	"payrelay/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	// Tenant registry and per-tenant provider clients
	registry := merchants.NewRegistry(cfg.Merchants)
	clients := gateway.NewClientSet(registry.All(), cfg.Provider)

	// Delivery audit log, optional
	var deliveries *repositories.DeliveryLogRepository
	if cfg.Database.DeliveryLogPath != "" {
		db, err := database.OpenDeliveryLog(cfg.Database.DeliveryLogPath)
		if err != nil {
			log.Fatalf("Failed to open delivery log: %v", err)
		}
		defer db.Close()
		deliveries = repositories.NewDeliveryLogRepository(db)
	}

	// Relay engine
	store := callbacks.NewStore(cfg.Callbacks.TTL)
	stop := make(chan struct{})
	defer close(stop)
	if cfg.Callbacks.SweepInterval > 0 {
		store.StartSweeper(cfg.Callbacks.SweepInterval, stop)
	}

	normalizer := events.NewNormalizer()
	forwarder := webhooks.NewForwarder(store, deliveries, cfg.Webhooks.DefaultCallbackURL, cfg.Webhooks.DeliveryTimeout)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(registry, clients, normalizer, forwarder)
	orderHandler := handlers.NewOrderHandler(clients, store, forwarder)
	transactionHandler := handlers.NewTransactionHandler(clients)
	debugHandler := handlers.NewDebugHandler(store, normalizer, forwarder, deliveries)
	healthHandler := handlers.NewHealthHandler(registry, store, deliveries)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(registry)

	deps := &api.Dependencies{
		WebhookHandler:     webhookHandler,
		OrderHandler:       orderHandler,
		TransactionHandler: transactionHandler,
		DebugHandler:       debugHandler,
		HealthHandler:      healthHandler,
		AuthMiddleware:     authMiddleware,
		DebugEnabled:       cfg.Debug.Endpoints && !cfg.Production(),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s (%d tenants)", addr, registry.Len())
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
