package settlement

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
)

func TestNormalizeStripe(t *testing.T) {
	boardID := uuid.New()
	sq1, sq2 := uuid.New(), uuid.New()

	payload := func(eventType string) []byte {
		return []byte(fmt.Sprintf(`{
			"id": "evt_1",
			"type": %q,
			"data": {
				"object": {
					"id": "cs_test_123",
					"amount_total": 2000,
					"metadata": {
						"board_id": %q,
						"square_ids": "%s,%s",
						"user_id": "42"
					}
				}
			}
		}`, eventType, boardID, sq1, sq2))
	}

	t.Run("checkout completed", func(t *testing.T) {
		ev, err := NormalizeStripe(payload("checkout.session.completed"))
		if err != nil {
			t.Fatalf("NormalizeStripe returned error: %v", err)
		}

		if ev.Type != domain.EventCompleted {
			t.Errorf("type = %s, want completed", ev.Type)
		}
		if ev.Provider != domain.ProviderStripe {
			t.Errorf("provider = %s, want stripe", ev.Provider)
		}
		if ev.ExternalID != "cs_test_123" {
			t.Errorf("external id = %s, want cs_test_123", ev.ExternalID)
		}
		if ev.BoardID != boardID {
			t.Errorf("board id = %s, want %s", ev.BoardID, boardID)
		}
		if len(ev.SquareIDs) != 2 || ev.SquareIDs[0] != sq1 || ev.SquareIDs[1] != sq2 {
			t.Errorf("square ids = %v, want [%s %s]", ev.SquareIDs, sq1, sq2)
		}
		if ev.UserID != 42 {
			t.Errorf("user id = %d, want 42", ev.UserID)
		}
		if ev.AmountCents != 2000 {
			t.Errorf("amount = %d, want 2000", ev.AmountCents)
		}
	})

	t.Run("event type mapping", func(t *testing.T) {
		tests := []struct {
			stripeType string
			want       domain.EventType
		}{
			{"checkout.session.expired", domain.EventExpired},
			{"payment_intent.canceled", domain.EventVoided},
			{"charge.refunded", domain.EventRefunded},
		}
		for _, tt := range tests {
			ev, err := NormalizeStripe(payload(tt.stripeType))
			if err != nil {
				t.Errorf("%s: error %v", tt.stripeType, err)
				continue
			}
			if ev.Type != tt.want {
				t.Errorf("%s mapped to %s, want %s", tt.stripeType, ev.Type, tt.want)
			}
		}
	})

	t.Run("uninteresting event type", func(t *testing.T) {
		_, err := NormalizeStripe(payload("invoice.paid"))
		if !errors.Is(err, ErrUnknownEvent) {
			t.Errorf("error = %v, want ErrUnknownEvent", err)
		}
	})

	t.Run("missing metadata", func(t *testing.T) {
		raw := []byte(`{
			"id": "evt_2",
			"type": "checkout.session.completed",
			"data": {"object": {"id": "cs_test_456", "amount_total": 1000, "metadata": {}}}
		}`)
		if _, err := NormalizeStripe(raw); !errors.Is(err, ErrBadPayload) {
			t.Errorf("error = %v, want ErrBadPayload", err)
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, err := NormalizeStripe([]byte("not json")); !errors.Is(err, ErrBadPayload) {
			t.Errorf("error = %v, want ErrBadPayload", err)
		}
	})
}

func TestNormalizePaypal(t *testing.T) {
	boardID := uuid.New()
	sq := uuid.New()

	payload := func(eventType, amount string) []byte {
		custom := fmt.Sprintf(
			`{"board_id":%q,"square_ids":[%q],"user_id":42}`,
			boardID, sq,
		)
		return []byte(fmt.Sprintf(`{
			"id": "WH-1",
			"event_type": %q,
			"resource": {
				"id": "CAP-789",
				"custom_id": %s,
				"amount": {"value": %q, "currency_code": "USD"}
			}
		}`, eventType, strconv.Quote(custom), amount))
	}

	t.Run("capture completed", func(t *testing.T) {
		ev, err := NormalizePaypal(payload("PAYMENT.CAPTURE.COMPLETED", "20.00"))
		if err != nil {
			t.Fatalf("NormalizePaypal returned error: %v", err)
		}

		if ev.Type != domain.EventCompleted {
			t.Errorf("type = %s, want completed", ev.Type)
		}
		if ev.Provider != domain.ProviderPaypal {
			t.Errorf("provider = %s, want paypal", ev.Provider)
		}
		if ev.ExternalID != "CAP-789" {
			t.Errorf("external id = %s, want CAP-789", ev.ExternalID)
		}
		if ev.BoardID != boardID || len(ev.SquareIDs) != 1 || ev.SquareIDs[0] != sq {
			t.Errorf("correlation = %s %v, want %s [%s]", ev.BoardID, ev.SquareIDs, boardID, sq)
		}
		if ev.UserID != 42 {
			t.Errorf("user id = %d, want 42", ev.UserID)
		}
		if ev.AmountCents != 2000 {
			t.Errorf("amount = %d, want 2000", ev.AmountCents)
		}
	})

	t.Run("event type mapping", func(t *testing.T) {
		tests := []struct {
			paypalType string
			want       domain.EventType
		}{
			{"PAYMENT.CAPTURE.DENIED", domain.EventDenied},
			{"PAYMENT.CAPTURE.REFUNDED", domain.EventRefunded},
			{"PAYMENT.CAPTURE.REVERSED", domain.EventRefunded},
			{"CHECKOUT.ORDER.VOIDED", domain.EventVoided},
		}
		for _, tt := range tests {
			ev, err := NormalizePaypal(payload(tt.paypalType, "5.00"))
			if err != nil {
				t.Errorf("%s: error %v", tt.paypalType, err)
				continue
			}
			if ev.Type != tt.want {
				t.Errorf("%s mapped to %s, want %s", tt.paypalType, ev.Type, tt.want)
			}
		}
	})

	t.Run("uninteresting event type", func(t *testing.T) {
		_, err := NormalizePaypal(payload("CUSTOMER.DISPUTE.CREATED", "5.00"))
		if !errors.Is(err, ErrUnknownEvent) {
			t.Errorf("error = %v, want ErrUnknownEvent", err)
		}
	})

	t.Run("garbage custom id", func(t *testing.T) {
		raw := []byte(`{
			"id": "WH-2",
			"event_type": "PAYMENT.CAPTURE.COMPLETED",
			"resource": {"id": "CAP-790", "custom_id": "plain text", "amount": {"value": "5.00"}}
		}`)
		if _, err := NormalizePaypal(raw); !errors.Is(err, ErrBadPayload) {
			t.Errorf("error = %v, want ErrBadPayload", err)
		}
	})
}

func TestDollarsToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"50.00", 5000, false},
		{"7.5", 750, false},
		{"12", 1200, false},
		{"0.01", 1, false},
		{"0.10", 10, false},
		{"199.99", 19999, false},
		{" 3.00 ", 300, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.x", 0, true},
		{"-7.50", 0, true},
		{"+7.50", 0, true},
		{"7.-5", 0, true},
		{"1.999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := dollarsToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("dollarsToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("dollarsToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
