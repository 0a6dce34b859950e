package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"payrelay/internal/engine/callbacks"
	"payrelay/internal/platform/models"
	"payrelay/internal/platform/repositories"
)

// Result reports what Handle did with an event, mainly for the inbound
// webhook handler's acknowledgement body.
type Result struct {
	Routed   bool
	Attempts int
	Success  int
}

// Forwarder signs normalized events with the registration's secret and
// delivers them to the tenant's registered endpoints. Deliveries are
// best-effort and never retried; the registration lifecycle is
// consume-on-success, retain-on-failure.
type Forwarder struct {
	store      *callbacks.Store
	deliveries *repositories.DeliveryLogRepository // nil disables the audit log
	defaultURL string
	httpClient *http.Client
}

func NewForwarder(store *callbacks.Store, deliveries *repositories.DeliveryLogRepository, defaultURL string, timeout time.Duration) *Forwarder {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Forwarder{
		store:      store,
		deliveries: deliveries,
		defaultURL: defaultURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Handle routes one canonical event. An event whose order code has no
// registration is logged and dropped; forwarding is best-effort with no
// dead-letter queue. raw is the original provider body, attached to the
// outbound envelope only when the registration asked for it.
func (f *Forwarder) Handle(ctx context.Context, tenantKey string, evt *models.CanonicalEvent, raw []byte) Result {
	reg, ok := f.store.Get(evt.Data.OrderCode)
	if !ok {
		log.Warn().Str("tenant", tenantKey).Str("order_code", evt.Data.OrderCode).
			Str("event", evt.EventType).Msg("no callback registered for order, dropping event")
		return Result{}
	}

	urls := f.destinations(reg, evt.EventType)
	if len(urls) == 0 {
		log.Warn().Str("tenant", tenantKey).Str("order_code", evt.Data.OrderCode).
			Msg("registration has no destination urls and no default is configured")
		f.finish(evt)
		return Result{Routed: true}
	}

	evt.Data.Metadata = reg.Metadata
	if reg.IncludeRawPayload {
		evt.Raw = json.RawMessage(raw)
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("order_code", evt.Data.OrderCode).Msg("failed to marshal canonical event")
		f.finish(evt)
		return Result{Routed: true}
	}

	signature := ""
	if reg.Secret != "" {
		signature = Sign(reg.Secret, payload)
	}

	res := Result{Routed: true}
	for _, url := range urls {
		res.Attempts++
		if f.deliver(ctx, tenantKey, evt, url, payload, signature) {
			res.Success++
		}
	}

	f.finish(evt)
	return res
}

// destinations selects the target urls for an event type: success prefers the
// success url, failure the failure url, and both fall through to the general
// webhook url. Refunds and anything else go to the general url only. The
// process-wide default applies only when the registration carries no url at
// all for the event.
func (f *Forwarder) destinations(reg *callbacks.Registration, eventType string) []string {
	var urls []string
	switch eventType {
	case models.EventPaymentSuccess:
		urls = appendURL(urls, reg.SuccessURL)
		urls = appendURL(urls, reg.WebhookURL)
	case models.EventPaymentFailed:
		urls = appendURL(urls, reg.FailureURL)
		urls = appendURL(urls, reg.WebhookURL)
	default:
		urls = appendURL(urls, reg.WebhookURL)
	}
	if len(urls) == 0 && f.defaultURL != "" {
		urls = append(urls, f.defaultURL)
	}
	return urls
}

func appendURL(urls []string, url string) []string {
	if url == "" {
		return urls
	}
	for _, u := range urls {
		if u == url {
			return urls
		}
	}
	return append(urls, url)
}

func (f *Forwarder) deliver(ctx context.Context, tenantKey string, evt *models.CanonicalEvent, url string, payload []byte, signature string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("failed to build delivery request")
		f.record(tenantKey, evt, url, nil, 0, err.Error())
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", evt.EventType)
	req.Header.Set("X-Webhook-Timestamp", evt.Timestamp)
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
		req.Header.Set("X-Webhook-Signature-256", "sha256="+signature)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Warn().Err(err).Str("tenant", tenantKey).Str("url", url).
			Str("event", evt.EventType).Msg("webhook delivery failed")
		f.record(tenantKey, evt, url, nil, duration, err.Error())
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Str("tenant", tenantKey).Str("url", url).Int("status", resp.StatusCode).
			Str("event", evt.EventType).Msg("webhook delivery rejected")
		f.record(tenantKey, evt, url, &resp.StatusCode, duration, fmt.Sprintf("HTTP %d", resp.StatusCode))
		return false
	}

	log.Info().Str("tenant", tenantKey).Str("url", url).Str("event", evt.EventType).
		Str("order_code", evt.Data.OrderCode).Msg("webhook delivered")
	f.record(tenantKey, evt, url, &resp.StatusCode, duration, "")
	return true
}

// finish applies the registration lifecycle after all deliveries were
// attempted: a success settles the order and consumes the entry regardless of
// delivery outcome, a failure retains it, a refund touches nothing.
func (f *Forwarder) finish(evt *models.CanonicalEvent) {
	if evt.EventType == models.EventPaymentSuccess {
		f.store.Remove(evt.Data.OrderCode)
	}
}

func (f *Forwarder) record(tenantKey string, evt *models.CanonicalEvent, url string, status *int, duration time.Duration, errStr string) {
	if f.deliveries == nil {
		return
	}
	rec := &models.DeliveryRecord{
		ID:         "dlv_" + uuid.New().String(),
		TenantKey:  tenantKey,
		OrderCode:  evt.Data.OrderCode,
		EventType:  evt.EventType,
		URL:        url,
		StatusCode: status,
		DurationMs: duration.Milliseconds(),
		LastError:  errStr,
		CreatedAt:  time.Now().Unix(),
	}
	if err := f.deliveries.Create(rec); err != nil {
		log.Error().Err(err).Msg("failed to record delivery attempt")
	}
}
