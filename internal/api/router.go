package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "payrelay/internal/api/context"
	"payrelay/internal/api/handlers"
	"payrelay/internal/api/middleware"
)

type Dependencies struct {
	WebhookHandler     *handlers.WebhookHandler
	OrderHandler       *handlers.OrderHandler
	TransactionHandler *handlers.TransactionHandler
	DebugHandler       *handlers.DebugHandler
	HealthHandler      *handlers.HealthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	DebugEnabled       bool
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Provider-facing webhook endpoints, one path per tenant
	router.GET("/webhooks/:tenant_key", wrap(deps.WebhookHandler.Verify))
	router.POST("/webhooks/:tenant_key", wrap(deps.WebhookHandler.Receive))

	authMid := deps.AuthMiddleware

	// Pass-through order and transaction surface
	router.POST("/api/v1/orders", chain(deps.OrderHandler.Create, authMid.Handle))
	router.GET("/api/v1/orders/:order_code", chain(deps.OrderHandler.Get, authMid.Handle))
	router.DELETE("/api/v1/orders/:order_code", chain(deps.OrderHandler.Cancel, authMid.Handle))

	router.GET("/api/v1/transactions/:transaction_id", chain(deps.TransactionHandler.Get, authMid.Handle))
	router.POST("/api/v1/transactions/:transaction_id/refunds", chain(deps.TransactionHandler.Refund, authMid.Handle))
	router.POST("/api/v1/cards/tokens", chain(deps.TransactionHandler.CreateCardToken, authMid.Handle))
	router.GET("/api/v1/wallets", chain(deps.TransactionHandler.GetWallets, authMid.Handle))

	// Debug surfaces stay off in production
	if deps.DebugEnabled {
		router.POST("/api/v1/debug/webhooks/simulate", chain(deps.DebugHandler.SimulateWebhook, authMid.Handle))
		router.GET("/api/v1/debug/callbacks/:order_code", chain(deps.DebugHandler.InspectCallback, authMid.Handle))
	}

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
