package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	apiContext "payrelay/internal/api/context"
	"payrelay/internal/engine/callbacks"
	"payrelay/internal/engine/webhooks"
	"payrelay/internal/gateway"
	"payrelay/internal/platform/models"
	"payrelay/internal/pkg/errors"
	"payrelay/internal/platform/merchants"
)

type OrderHandler struct {
	clients   *gateway.ClientSet
	store     *callbacks.Store
	forwarder *webhooks.Forwarder
}

func NewOrderHandler(clients *gateway.ClientSet, store *callbacks.Store, forwarder *webhooks.Forwarder) *OrderHandler {
	return &OrderHandler{clients: clients, store: store, forwarder: forwarder}
}

// Create forwards an order request to the provider. The optional callback
// object is stripped from the provider-facing body and registered against the
// provider-assigned order code instead.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(r)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No provider client for tenant", nil)
		return
	}

	var req struct {
		Callback *callbacks.Registration `json:"callback"`
	}
	var body map[string]interface{}

	raw, err := decodeBody(r, &body)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	// Second pass for the typed callback block only. A type-malformed
	// callback must fail here, not register an empty entry.
	if err := json.Unmarshal(raw, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "callback must be an object", nil)
		return
	}
	delete(body, "callback")

	if amount, ok := body["amount"].(float64); !ok || amount <= 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "amount must be a positive number", nil)
		return
	}

	resp, providerBody, err := client.CreateOrder(r.Context(), body)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if req.Callback != nil {
		h.store.Register(resp.OrderCode, req.Callback)
		log.Info().Str("tenant", client.Tenant().Key).Str("order_code", resp.OrderCode.String()).
			Msg("callback registered for new order")
		h.announce(client.Tenant().Key, resp.OrderCode.String())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(providerBody)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(r)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No provider client for tenant", nil)
		return
	}

	raw, err := client.GetOrder(r.Context(), pathParam(r, "order_code"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(r)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No provider client for tenant", nil)
		return
	}

	orderCode := pathParam(r, "order_code")
	raw, err := client.CancelOrder(r.Context(), orderCode)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	// A cancelled order will never settle; drop any registration now.
	h.store.Remove(orderCode)

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// announce notifies the registered webhookUrl that an order now exists. The
// delivery runs detached from the request so a slow merchant endpoint cannot
// hold up the order response.
func (h *OrderHandler) announce(tenantKey, orderCode string) {
	if h.forwarder == nil {
		return
	}
	evt := &models.CanonicalEvent{
		EventType: models.EventOrderCreated,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      models.EventData{OrderCode: orderCode},
	}
	go h.forwarder.Handle(context.Background(), tenantKey, evt, nil)
}

func (h *OrderHandler) client(r *http.Request) (*gateway.Client, bool) {
	return clientFor(h.clients, r)
}

func clientFor(clients *gateway.ClientSet, r *http.Request) (*gateway.Client, bool) {
	tenant, ok := r.Context().Value(apiContext.Tenant).(*merchants.Tenant)
	if !ok {
		return nil, false
	}
	return clients.ForTenant(tenant.Key)
}

func decodeBody(r *http.Request, out interface{}) ([]byte, error) {
	defer r.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return raw, nil
}

func pathParam(r *http.Request, name string) string {
	params, ok := r.Context().Value(apiContext.Params).(httprouter.Params)
	if !ok {
		return ""
	}
	return params.ByName(name)
}

func writeUpstreamError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("provider call failed")
	errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeUpstreamError, "Provider request failed", nil)
}
