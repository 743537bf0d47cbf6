package settlement

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
)

// The two providers ship very different webhook shapes. Both are flattened
// here, at the boundary, into domain.PaymentEvent so the state machine in
// this package never sees provider-specific structure.

type stripePayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID          string            `json:"id"`
			AmountTotal int64             `json:"amount_total"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// NormalizeStripe maps a Stripe event payload to the internal event form.
// Checkout metadata carries the board/squares/user correlation set at
// checkout-session creation.
//
// Returns:
//   - domain.PaymentEvent: the normalized event.
//   - error: settlement.ErrUnknownEvent for event types this core ignores.
//   - error: settlement.ErrBadPayload when required fields are missing.
func NormalizeStripe(payload []byte) (domain.PaymentEvent, error) {
	const op = "settlement.NormalizeStripe"

	var p stripePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: %v", op, ErrBadPayload, err)
	}

	var typ domain.EventType
	switch p.Type {
	case "checkout.session.completed":
		typ = domain.EventCompleted
	case "checkout.session.expired":
		typ = domain.EventExpired
	case "payment_intent.canceled":
		typ = domain.EventVoided
	case "charge.refunded":
		typ = domain.EventRefunded
	default:
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: %q", op, ErrUnknownEvent, p.Type)
	}

	obj := p.Data.Object
	if obj.ID == "" {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: missing object id", op, ErrBadPayload)
	}

	boardID, squareIDs, userID, err := parseCorrelation(
		obj.Metadata["board_id"],
		obj.Metadata["square_ids"],
		obj.Metadata["user_id"],
	)
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: %v", op, ErrBadPayload, err)
	}

	return domain.PaymentEvent{
		Type:        typ,
		Provider:    domain.ProviderStripe,
		ExternalID:  obj.ID,
		BoardID:     boardID,
		SquareIDs:   squareIDs,
		UserID:      userID,
		AmountCents: obj.AmountTotal,
	}, nil
}

type paypalPayload struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
		Amount   struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
	} `json:"resource"`
}

type paypalCustom struct {
	BoardID   string   `json:"board_id"`
	SquareIDs []string `json:"square_ids"`
	UserID    int64    `json:"user_id"`
}

// NormalizePaypal maps a PayPal webhook to the internal event form. The
// correlation travels in the capture's custom_id as a JSON blob, and amounts
// arrive as decimal strings that must be converted to cents.
func NormalizePaypal(payload []byte) (domain.PaymentEvent, error) {
	const op = "settlement.NormalizePaypal"

	var p paypalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: %v", op, ErrBadPayload, err)
	}

	var typ domain.EventType
	switch p.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		typ = domain.EventCompleted
	case "PAYMENT.CAPTURE.DENIED":
		typ = domain.EventDenied
	case "PAYMENT.CAPTURE.REFUNDED", "PAYMENT.CAPTURE.REVERSED":
		typ = domain.EventRefunded
	case "CHECKOUT.ORDER.VOIDED":
		typ = domain.EventVoided
	default:
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: %q", op, ErrUnknownEvent, p.EventType)
	}

	if p.Resource.ID == "" {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: missing resource id", op, ErrBadPayload)
	}

	var custom paypalCustom
	if err := json.Unmarshal([]byte(p.Resource.CustomID), &custom); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: custom_id: %v", op, ErrBadPayload, err)
	}

	boardID, squareIDs, userID, err := parseCorrelation(
		custom.BoardID,
		strings.Join(custom.SquareIDs, ","),
		strconv.FormatInt(custom.UserID, 10),
	)
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: %v", op, ErrBadPayload, err)
	}

	cents, err := dollarsToCents(p.Resource.Amount.Value)
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%s:%w: amount: %v", op, ErrBadPayload, err)
	}

	return domain.PaymentEvent{
		Type:        typ,
		Provider:    domain.ProviderPaypal,
		ExternalID:  p.Resource.ID,
		BoardID:     boardID,
		SquareIDs:   squareIDs,
		UserID:      userID,
		AmountCents: cents,
	}, nil
}

func parseCorrelation(boardStr, squaresStr, userStr string) (uuid.UUID, []uuid.UUID, int64, error) {
	boardID, err := uuid.Parse(boardStr)
	if err != nil {
		return uuid.Nil, nil, 0, fmt.Errorf("board_id: %w", err)
	}

	var squareIDs []uuid.UUID
	for _, raw := range strings.Split(squaresStr, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, nil, 0, fmt.Errorf("square_ids: %w", err)
		}
		squareIDs = append(squareIDs, id)
	}
	if len(squareIDs) == 0 {
		return uuid.Nil, nil, 0, fmt.Errorf("square_ids: empty")
	}

	userID, err := strconv.ParseInt(userStr, 10, 64)
	if err != nil {
		return uuid.Nil, nil, 0, fmt.Errorf("user_id: %w", err)
	}

	return boardID, squareIDs, userID, nil
}

// dollarsToCents parses a non-negative decimal money string ("50.00", "7.5",
// "12") without going through floating point. Signed amounts and sub-cent
// precision are rejected, not rounded.
func dollarsToCents(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty amount")
	}

	if strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		return 0, fmt.Errorf("signed amount %q", v)
	}

	whole, frac, _ := strings.Cut(v, ".")

	dollars, err := strconv.ParseUint(whole, 10, 63)
	if err != nil {
		return 0, err
	}

	var cents uint64
	switch len(frac) {
	case 0:
	case 1, 2:
		c, err := strconv.ParseUint(frac, 10, 63)
		if err != nil {
			return 0, err
		}
		if len(frac) == 1 {
			c *= 10
		}
		cents = c
	default:
		return 0, fmt.Errorf("amount %q has sub-cent precision", v)
	}

	return int64(dollars)*100 + int64(cents), nil
}
