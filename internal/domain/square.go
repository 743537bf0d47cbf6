package domain

import (
	"errors"
	"time"
)

var (
	ErrAlreadyClaimed    = errors.New("square already claimed")
	ErrInvalidTransition = errors.New("invalid square transition")
	ErrOwnerMismatch     = errors.New("square owned by another user")
)

// Ownership is the tagged square state. Exactly one of the three shapes is
// valid at a time:
//
//	available: OwnerID == 0, no timestamps
//	reserved:  OwnerID set, ReservedAt/ReservedUntil set
//	purchased: OwnerID set, PurchasedAt set
//
// Build values through the constructors below instead of filling fields by
// hand, so invalid combinations cannot be represented.
type Ownership struct {
	Status        SquareStatus
	OwnerID       int64
	ReservedAt    *time.Time
	ReservedUntil *time.Time
	PurchasedAt   *time.Time
}

func Available() Ownership {
	return Ownership{Status: SquareAvailable}
}

func ReservedBy(owner int64, at, until time.Time) Ownership {
	return Ownership{
		Status:        SquareReserved,
		OwnerID:       owner,
		ReservedAt:    &at,
		ReservedUntil: &until,
	}
}

func PurchasedBy(owner int64, at time.Time) Ownership {
	return Ownership{
		Status:      SquarePurchased,
		OwnerID:     owner,
		PurchasedAt: &at,
	}
}

// Expired reports whether a reservation hold has lapsed at the given instant.
// Reservations are optimistic holds: an expired hold is treated as available
// on the next read, nothing actively tears it down.
func (o Ownership) Expired(now time.Time) bool {
	return o.Status == SquareReserved &&
		o.ReservedUntil != nil &&
		!o.ReservedUntil.After(now)
}

// Reserve transitions available -> reserved. A lapsed hold counts as
// available. Returns ErrAlreadyClaimed when the square is live-reserved or
// purchased.
func (s *Square) Reserve(owner int64, now time.Time, ttl time.Duration) error {
	if s.Ownership.Status != SquareAvailable && !s.Ownership.Expired(now) {
		return ErrAlreadyClaimed
	}

	s.Ownership = ReservedBy(owner, now, now.Add(ttl))

	return nil
}

// ConfirmPurchase transitions reserved -> purchased for the matching owner.
// A square that is not reserved, or is reserved by someone else, signals a
// desync between checkout and settlement and fails with ErrInvalidTransition
// or ErrOwnerMismatch respectively. Purchase never skips reservation.
func (s *Square) ConfirmPurchase(owner int64, now time.Time) error {
	if s.Ownership.Status != SquareReserved {
		return ErrInvalidTransition
	}

	if s.Ownership.OwnerID != owner {
		return ErrOwnerMismatch
	}

	s.Ownership = PurchasedBy(owner, now)

	return nil
}

// Release transitions reserved|purchased -> available, clearing the owner.
// Releasing an already-available square is a no-op.
func (s *Square) Release() {
	s.Ownership = Available()
}

// NormalizeExpired folds a lapsed reservation back into the available state.
// Used on every read path so callers never observe a stale hold.
func (s *Square) NormalizeExpired(now time.Time) bool {
	if !s.Ownership.Expired(now) {
		return false
	}

	s.Ownership = Available()

	return true
}
