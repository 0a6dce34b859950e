package models

// DeliveryRecord is one outbound webhook delivery attempt, persisted for
// operational audit. One row per destination per event.
type DeliveryRecord struct {
	ID         string `json:"id"`
	TenantKey  string `json:"tenant_key"`
	OrderCode  string `json:"order_code"`
	EventType  string `json:"event_type"`
	URL        string `json:"url"`
	StatusCode *int   `json:"status_code,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	LastError  string `json:"last_error,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}
