package models

import "encoding/json"

// Canonical event types delivered to tenant endpoints.
const (
	EventOrderCreated    = "order.created"
	EventPaymentSuccess  = "payment.success"
	EventPaymentFailed   = "payment.failed"
	EventPaymentRefunded = "payment.refunded"
)

// CanonicalEvent is the provider-agnostic envelope the relay delivers to
// tenant callbacks. Timestamp is the normalization instant, not the
// provider's event time.
type CanonicalEvent struct {
	EventType string          `json:"eventType"`
	Timestamp string          `json:"timestamp"`
	Data      EventData       `json:"data"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

type EventData struct {
	TransactionID     string                 `json:"transactionId,omitempty"`
	OrderCode         string                 `json:"orderCode"`
	Amount            float64                `json:"amount,omitempty"`
	Currency          string                 `json:"currency,omitempty"`
	Status            string                 `json:"status,omitempty"`
	Customer          *Customer              `json:"customer,omitempty"`
	Card              *Card                  `json:"card,omitempty"`
	MerchantReference string                 `json:"merchantReference,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type Customer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type Card struct {
	LastFour string `json:"lastFour,omitempty"`
	Brand    string `json:"brand,omitempty"`
}
