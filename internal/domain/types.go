package domain

import (
	"time"

	"github.com/google/uuid"
)

type BoardStatus string

const (
	BoardDraft     BoardStatus = "draft"
	BoardOpen      BoardStatus = "open"
	BoardLocked    BoardStatus = "locked"
	BoardCompleted BoardStatus = "completed"
)

type SquareStatus string

const (
	SquareAvailable SquareStatus = "available"
	SquareReserved  SquareStatus = "reserved"
	SquarePurchased SquareStatus = "purchased"
)

// Board is one squares grid tied to a single game. RowNumbers and ColNumbers
// are nil until the board fills and digits are assigned; after assignment each
// is a permutation of 0..Size-1.
type Board struct {
	ID         uuid.UUID
	GameID     string
	Size       int
	PriceCents int64
	HomeTeam   string
	AwayTeam   string
	Status     BoardStatus
	RowNumbers []int
	ColNumbers []int
	Payout     PayoutConfig
	CreatedAt  time.Time
}

// NumbersAssigned reports whether digit assignment has already run.
func (b *Board) NumbersAssigned() bool {
	return len(b.RowNumbers) > 0 && len(b.ColNumbers) > 0
}

type Square struct {
	ID         uuid.UUID
	BoardID    uuid.UUID
	Row        int
	Col        int
	PriceCents int64
	Ownership  Ownership
}

type SquareCounts struct {
	Available int64
	Reserved  int64
	Purchased int64
	Total     int64
}

// Full reports whether every square on the board has been purchased.
func (c *SquareCounts) Full() bool {
	return c.Total > 0 && c.Purchased == c.Total
}

type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderPaypal PaymentProvider = "paypal"
)

type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentCompleted IntentStatus = "completed"
	IntentRefunded  IntentStatus = "refunded"
	IntentVoided    IntentStatus = "voided"
)

// Terminal reports whether the intent can no longer change state through
// normal event processing. Completed is not terminal because a refund may
// still roll it back.
func (s IntentStatus) Terminal() bool {
	return s == IntentRefunded || s == IntentVoided
}

// PaymentIntent is the per-transaction settlement record, keyed by
// (Provider, ExternalID). Its status is the single idempotence mechanism for
// webhook processing: an event targeting a state the record already reflects
// is a no-op.
type PaymentIntent struct {
	Provider    PaymentProvider
	ExternalID  string
	BoardID     uuid.UUID
	SquareIDs   []uuid.UUID
	UserID      int64
	AmountCents int64
	Status      IntentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EventType string

const (
	EventCompleted EventType = "completed"
	EventExpired   EventType = "expired"
	EventDenied    EventType = "denied"
	EventRefunded  EventType = "refunded"
	EventVoided    EventType = "voided"
)

// PaymentEvent is the provider-neutral form every webhook payload is
// normalized into before it reaches the settlement state machine.
type PaymentEvent struct {
	Type        EventType
	Provider    PaymentProvider
	ExternalID  string
	BoardID     uuid.UUID
	SquareIDs   []uuid.UUID
	UserID      int64
	AmountCents int64
}

type Quarter string

const (
	QuarterQ1    Quarter = "Q1"
	QuarterQ2    Quarter = "Q2"
	QuarterQ3    Quarter = "Q3"
	QuarterFinal Quarter = "Final"
	QuarterOT    Quarter = "OT"
)

type QuarterScore struct {
	Quarter Quarter
	Home    int
	Away    int
}
