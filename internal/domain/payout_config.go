package domain

import (
	"errors"
	"fmt"
)

var ErrConfigInvalid = errors.New("invalid payout config")

// PayoutConfig fixes how the pot is split across scoring checkpoints.
// Overtime carries no share of its own: an OT score always pays out of
// FinalCents.
type PayoutConfig struct {
	Q1Cents       int64
	Q2Cents       int64
	Q3Cents       int64
	FinalCents    int64
	TotalPotCents int64
}

// Validate rejects malformed payout splits at board-creation time: every
// share must be non-negative and the four shares must sum exactly to the
// total pot.
func (c PayoutConfig) Validate() error {
	if c.Q1Cents < 0 || c.Q2Cents < 0 || c.Q3Cents < 0 || c.FinalCents < 0 {
		return fmt.Errorf("%w: negative quarter share", ErrConfigInvalid)
	}

	if sum := c.Q1Cents + c.Q2Cents + c.Q3Cents + c.FinalCents; sum != c.TotalPotCents {
		return fmt.Errorf(
			"%w: shares sum to %d, total pot is %d",
			ErrConfigInvalid, sum, c.TotalPotCents,
		)
	}

	return nil
}

// Share returns the configured payout for a quarter. OT aliases Final.
func (c PayoutConfig) Share(q Quarter) int64 {
	switch q {
	case QuarterQ1:
		return c.Q1Cents
	case QuarterQ2:
		return c.Q2Cents
	case QuarterQ3:
		return c.Q3Cents
	case QuarterFinal, QuarterOT:
		return c.FinalCents
	default:
		return 0
	}
}
