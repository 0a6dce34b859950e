package events

import (
	"strconv"
	"testing"
	"time"

	"payrelay/internal/platform/models"
)

func TestNormalizePaymentCreated(t *testing.T) {
	n := NewNormalizer()
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	body := []byte(`{
		"EventTypeId": 1796,
		"EventData": {
			"TransactionId": "tx-1",
			"OrderCode": 1234567890123456,
			"Amount": 12.50,
			"CurrencyCode": "978",
			"StatusId": "F",
			"CardNumber": "411111XXXXXX1111",
			"CardTypeId": 0,
			"Email": "jo@example.com",
			"FullName": "Jo Example",
			"MerchantTrns": "order-42"
		}
	}`)

	evt, ok := n.Normalize(body)
	if !ok {
		t.Fatal("expected canonical event")
	}
	if evt.EventType != models.EventPaymentSuccess {
		t.Errorf("expected payment.success, got %s", evt.EventType)
	}
	if evt.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("expected normalization-time timestamp, got %s", evt.Timestamp)
	}
	if evt.Data.OrderCode != "1234567890123456" {
		t.Errorf("expected order code 1234567890123456, got %s", evt.Data.OrderCode)
	}
	if evt.Data.Card == nil || evt.Data.Card.LastFour != "1111" || evt.Data.Card.Brand != "visa" {
		t.Errorf("unexpected card extraction: %+v", evt.Data.Card)
	}
	if evt.Data.Customer == nil || evt.Data.Customer.Email != "jo@example.com" {
		t.Errorf("unexpected customer: %+v", evt.Data.Customer)
	}
	if evt.Data.MerchantReference != "order-42" {
		t.Errorf("unexpected merchant reference %s", evt.Data.MerchantReference)
	}
}

func TestNormalizeEventTypeTable(t *testing.T) {
	n := NewNormalizer()
	cases := []struct {
		code int64
		want string
	}{
		{1796, models.EventPaymentSuccess},
		{1798, models.EventPaymentFailed},
		{1797, models.EventPaymentRefunded},
	}
	for _, c := range cases {
		body := []byte(`{"EventTypeId": ` + strconv.FormatInt(c.code, 10) + `, "EventData": {"OrderCode": 111}}`)
		evt, ok := n.Normalize(body)
		if !ok {
			t.Fatalf("expected event for code %d", c.code)
		}
		if evt.EventType != c.want {
			t.Errorf("code %d: expected %s, got %s", c.code, c.want, evt.EventType)
		}
	}
}

func TestNormalizeUnknownCodeDropped(t *testing.T) {
	n := NewNormalizer()
	evt, ok := n.Normalize([]byte(`{"EventTypeId": 1799, "EventData": {"OrderCode": 111}}`))
	if ok || evt != nil {
		t.Errorf("expected unknown event type to be dropped, got %+v", evt)
	}
}

func TestNormalizeDefensiveCardExtraction(t *testing.T) {
	n := NewNormalizer()

	// No card fields at all: no card block, no panic.
	evt, ok := n.Normalize([]byte(`{"EventTypeId": 1796, "EventData": {"OrderCode": "222"}}`))
	if !ok {
		t.Fatal("expected event")
	}
	if evt.Data.Card != nil {
		t.Errorf("expected no card, got %+v", evt.Data.Card)
	}

	// Short card number and unknown card type yield nothing usable.
	evt, _ = n.Normalize([]byte(`{"EventTypeId": 1796, "EventData": {"OrderCode": "222", "CardNumber": "12", "CardTypeId": 99}}`))
	if evt.Data.Card != nil {
		t.Errorf("expected no card for malformed fields, got %+v", evt.Data.Card)
	}

	// Unknown card type with a usable number still yields the last four.
	evt, _ = n.Normalize([]byte(`{"EventTypeId": 1796, "EventData": {"OrderCode": "222", "CardNumber": "411111XXXXXX1111", "CardTypeId": 99}}`))
	if evt.Data.Card == nil || evt.Data.Card.LastFour != "1111" || evt.Data.Card.Brand != "" {
		t.Errorf("unexpected card for unknown brand: %+v", evt.Data.Card)
	}
}

func TestNormalizeGarbage(t *testing.T) {
	n := NewNormalizer()
	if _, ok := n.Normalize([]byte("not json")); ok {
		t.Error("expected unparseable body to be dropped")
	}
}
