package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	apiContext "payrelay/internal/api/context"
	"payrelay/internal/engine/events"
	"payrelay/internal/engine/webhooks"
	"payrelay/internal/gateway"
	"payrelay/internal/pkg/errors"
	"payrelay/internal/platform/merchants"
)

// SignatureHeader is the inbound signature header the provider sets on event
// notifications.
const SignatureHeader = "X-Provider-Signature"

type WebhookHandler struct {
	registry   *merchants.Registry
	clients    *gateway.ClientSet
	normalizer *events.Normalizer
	forwarder  *webhooks.Forwarder
}

func NewWebhookHandler(registry *merchants.Registry, clients *gateway.ClientSet, normalizer *events.Normalizer, forwarder *webhooks.Forwarder) *WebhookHandler {
	return &WebhookHandler{
		registry:   registry,
		clients:    clients,
		normalizer: normalizer,
		forwarder:  forwarder,
	}
}

// Verify answers the provider's ownership check: it fetches the verification
// token over the tenant's legacy credentials and echoes the body verbatim.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenantFromPath(r)
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeTenantNotFound, "Unknown tenant key", nil)
		return
	}

	client, ok := h.clients.ForTenant(tenant.Key)
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeTenantNotFound, "Unknown tenant key", nil)
		return
	}

	raw, err := client.VerificationToken(r.Context())
	if err != nil {
		log.Error().Err(err).Str("tenant", tenant.Key).Msg("failed to fetch verification token")
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeUpstreamError, "Provider request failed", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// Receive takes a provider event notification, authenticates it for the
// owning tenant, and runs it through the normalize-and-forward pipeline. It
// acknowledges 200 even on internal processing errors so the provider does
// not pile up retries; the only rejections are an unknown tenant (404) and a
// signature mismatch (401).
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenantFromPath(r)
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeTenantNotFound, "Unknown tenant key", nil)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		// Can't verify what we can't read; still ack to stop retries.
		log.Error().Err(err).Str("tenant", tenant.Key).Msg("failed to read webhook body")
		h.ack(w, "unreadable body")
		return
	}
	defer r.Body.Close()

	if !h.authenticate(tenant, body, r.Header.Get(SignatureHeader)) {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeSignatureMismatch, "Webhook signature verification failed", nil)
		return
	}

	evt, ok := h.normalizer.Normalize(body)
	if !ok {
		h.ack(w, "")
		return
	}

	res := h.forwarder.Handle(r.Context(), tenant.Key, evt, body)
	if !res.Routed {
		h.ack(w, "no callback registered for order")
		return
	}
	h.ack(w, "")
}

// authenticate applies the per-tenant signature policy: verify when a secret
// is configured, reject when a signature is required but impossible to check,
// and otherwise accept with a warning.
func (h *WebhookHandler) authenticate(tenant *merchants.Tenant, body []byte, header string) bool {
	if tenant.WebhookSecret == "" {
		if tenant.RequireSignature {
			log.Warn().Str("tenant", tenant.Key).
				Msg("tenant requires signatures but has no webhook secret configured, rejecting")
			return false
		}
		log.Warn().Str("tenant", tenant.Key).
			Msg("no webhook secret configured, accepting unsigned webhook")
		return true
	}

	return webhooks.Verify(body, header, tenant.WebhookSecret)
}

func (h *WebhookHandler) ack(w http.ResponseWriter, warning string) {
	resp := map[string]interface{}{"received": true}
	if warning != "" {
		resp["warning"] = warning
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *WebhookHandler) tenantFromPath(r *http.Request) (*merchants.Tenant, bool) {
	params, ok := r.Context().Value(apiContext.Params).(httprouter.Params)
	if !ok {
		return nil, false
	}
	return h.registry.ByTenantKey(params.ByName("tenant_key"))
}
