package models

import "encoding/json"

// Provider event type codes carried in webhook notifications.
const (
	ProviderEventPaymentCreated  int64 = 1796
	ProviderEventReversalCreated int64 = 1797
	ProviderEventPaymentFailed   int64 = 1798
)

// ProviderWebhook is the raw notification body the provider POSTs to the
// per-tenant webhook endpoint.
type ProviderWebhook struct {
	EventTypeID   int64             `json:"EventTypeId"`
	CorrelationID string            `json:"CorrelationId,omitempty"`
	Created       string            `json:"Created,omitempty"`
	EventData     ProviderEventData `json:"EventData"`
}

// ProviderEventData carries the transaction details. Every field except
// OrderCode is optional in practice; consumers must not assume presence.
type ProviderEventData struct {
	TransactionID   string      `json:"TransactionId,omitempty"`
	OrderCode       json.Number `json:"OrderCode"`
	Amount          float64     `json:"Amount,omitempty"`
	CurrencyCode    string      `json:"CurrencyCode,omitempty"`
	StatusID        string      `json:"StatusId,omitempty"`
	CardNumber      string      `json:"CardNumber,omitempty"`
	CardTypeID      *int        `json:"CardTypeId,omitempty"`
	Email           string      `json:"Email,omitempty"`
	FullName        string      `json:"FullName,omitempty"`
	CustomerTrns    string      `json:"CustomerTrns,omitempty"`
	MerchantTrns    string      `json:"MerchantTrns,omitempty"`
	SourceCode      string      `json:"SourceCode,omitempty"`
	ElectronicToken string      `json:"ElectronicToken,omitempty"`
}
