package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apiContext "payrelay/internal/api/context"
	"payrelay/internal/engine/callbacks"
	"payrelay/internal/engine/events"
	"payrelay/internal/engine/webhooks"
	"payrelay/internal/pkg/errors"
	"payrelay/internal/platform/merchants"
	"payrelay/internal/platform/models"
	"payrelay/internal/platform/repositories"
)

// DebugHandler exposes the non-production simulate and introspection
// surfaces. The router only mounts it outside production.
type DebugHandler struct {
	store      *callbacks.Store
	normalizer *events.Normalizer
	forwarder  *webhooks.Forwarder
	deliveries *repositories.DeliveryLogRepository
}

func NewDebugHandler(store *callbacks.Store, normalizer *events.Normalizer, forwarder *webhooks.Forwarder, deliveries *repositories.DeliveryLogRepository) *DebugHandler {
	return &DebugHandler{
		store:      store,
		normalizer: normalizer,
		forwarder:  forwarder,
		deliveries: deliveries,
	}
}

// SimulateWebhook synthesizes a provider-shaped payload and feeds it through
// the same normalize-and-forward pipeline a real webhook takes.
func (h *DebugHandler) SimulateWebhook(w http.ResponseWriter, r *http.Request) {
	tenant, ok := r.Context().Value(apiContext.Tenant).(*merchants.Tenant)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No tenant in context", nil)
		return
	}

	var req struct {
		OrderCode     json.Number `json:"orderCode"`
		EventType     string      `json:"eventType"`
		Amount        float64     `json:"amount"`
		TransactionID string      `json:"transactionId"`
	}
	if _, err := decodeBody(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.OrderCode.String() == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "orderCode is required", nil)
		return
	}

	code, ok := providerCodeFor(req.EventType)
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown eventType %q", req.EventType), nil)
		return
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = fmt.Sprintf("sim-%d", time.Now().UnixNano())
	}

	payload := models.ProviderWebhook{
		EventTypeID: code,
		Created:     time.Now().UTC().Format(time.RFC3339),
		EventData: models.ProviderEventData{
			TransactionID: transactionID,
			OrderCode:     req.OrderCode,
			Amount:        req.Amount,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to build payload", nil)
		return
	}

	evt, ok := h.normalizer.Normalize(body)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Synthesized payload did not normalize", nil)
		return
	}

	res := h.forwarder.Handle(r.Context(), tenant.Key, evt, body)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"simulated": true,
		"eventType": evt.EventType,
		"routed":    res.Routed,
		"attempts":  res.Attempts,
		"delivered": res.Success,
	})
}

// InspectCallback returns the redacted registration state for an order code,
// plus its recent delivery attempts when the audit log is enabled.
func (h *DebugHandler) InspectCallback(w http.ResponseWriter, r *http.Request) {
	orderCode := pathParam(r, "order_code")

	reg, ok := h.store.Get(orderCode)
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "No callback registered for order", nil)
		return
	}

	resp := map[string]interface{}{
		"orderCode":         callbacks.CanonicalCode(orderCode),
		"webhookUrl":        reg.WebhookURL,
		"successUrl":        reg.SuccessURL,
		"failureUrl":        reg.FailureURL,
		"hasSecret":         reg.Secret != "",
		"includeRawPayload": reg.IncludeRawPayload,
		"metadata":          reg.Metadata,
	}

	if h.deliveries != nil {
		if records, err := h.deliveries.ListByOrderCode(orderCode, 20); err == nil {
			resp["deliveries"] = records
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func providerCodeFor(eventType string) (int64, bool) {
	switch eventType {
	case models.EventPaymentSuccess, "":
		return models.ProviderEventPaymentCreated, true
	case models.EventPaymentFailed:
		return models.ProviderEventPaymentFailed, true
	case models.EventPaymentRefunded:
		return models.ProviderEventReversalCreated, true
	default:
		return 0, false
	}
}
