package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"payrelay/internal/platform/models"
)

// eventTypes maps provider event type codes onto the canonical enum. Codes
// outside this table yield no canonical event.
var eventTypes = map[int64]string{
	models.ProviderEventPaymentCreated:  models.EventPaymentSuccess,
	models.ProviderEventPaymentFailed:   models.EventPaymentFailed,
	models.ProviderEventReversalCreated: models.EventPaymentRefunded,
}

// cardBrands maps the provider's card type id to a display brand.
var cardBrands = map[int]string{
	0: "visa",
	1: "mastercard",
	2: "maestro",
	3: "amex",
	4: "diners",
	5: "discover",
	6: "jcb",
}

// Normalizer reshapes heterogeneous provider webhook bodies into the stable
// CanonicalEvent envelope.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize parses a provider webhook body and maps it to a canonical event.
// The second return is false when the body is unparseable or carries an event
// type the relay does not forward; both cases are logged and dropped here.
// The event timestamp is the normalization instant, not the provider's time.
func (n *Normalizer) Normalize(body []byte) (*models.CanonicalEvent, bool) {
	var payload models.ProviderWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn().Err(err).Msg("unparseable provider webhook body")
		return nil, false
	}

	eventType, ok := eventTypes[payload.EventTypeID]
	if !ok {
		log.Info().Int64("event_type_id", payload.EventTypeID).
			Msg("ignoring provider event type with no canonical mapping")
		return nil, false
	}

	data := payload.EventData
	evt := &models.CanonicalEvent{
		EventType: eventType,
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Data: models.EventData{
			TransactionID:     data.TransactionID,
			OrderCode:         data.OrderCode.String(),
			Amount:            data.Amount,
			Currency:          data.CurrencyCode,
			Status:            data.StatusID,
			MerchantReference: data.MerchantTrns,
		},
	}

	if data.Email != "" || data.FullName != "" {
		evt.Data.Customer = &models.Customer{Email: data.Email, Name: data.FullName}
	}

	if card := extractCard(data); card != nil {
		evt.Data.Card = card
	}

	return evt, true
}

// extractCard pulls brand and last four digits without assuming either field
// is present or well formed.
func extractCard(data models.ProviderEventData) *models.Card {
	card := &models.Card{}
	if len(data.CardNumber) >= 4 {
		card.LastFour = data.CardNumber[len(data.CardNumber)-4:]
	}
	if data.CardTypeID != nil {
		card.Brand = cardBrands[*data.CardTypeID]
	}
	if card.LastFour == "" && card.Brand == "" {
		return nil
	}
	return card
}
