// Package payout computes winners from quarter scores. Everything here is a
// pure function of its inputs: the same board, numbers and scores always
// produce the same winners, so callers may recompute freely.
package payout

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/assign"
	"github.com/alsania-dev/gridplay-sub001/internal/domain"
)

// Winner ties one quarter's payout to the square whose assigned digits match
// the score's last digits.
type Winner struct {
	Quarter     domain.Quarter
	SquareID    uuid.UUID
	Row         int
	Col         int
	OwnerID     int64
	AmountCents int64
	HomeDigit   int
	AwayDigit   int
}

// Result is the full settlement picture for a set of quarter scores.
// Unclaimed lists quarters whose winning square had no owner; their shares
// stay in RemainingPotCents rather than silently vanishing.
type Result struct {
	Winners           []Winner
	TotalPaidCents    int64
	RemainingPotCents int64
	Unclaimed         []domain.Quarter
}

// OwnerSummary aggregates a single owner's wins for display.
type OwnerSummary struct {
	OwnerID     int64
	TotalCents  int64
	WinCount    int
	QuartersWon []domain.Quarter
}

// ComputeWinners resolves each quarter score against the assigned digits.
//
// The home score's last digit selects the row whose assigned number matches,
// the away score's last digit selects the column. A 10-wide board matches on
// mod 10; a 5-wide board matches on mod 5, collapsing two last-digits onto
// each axis value (the classic half-grid variant).
//
// A matched square with no owner produces no winner entry for that quarter;
// the quarter's share is reported in Unclaimed and retained in the remaining
// pot.
func ComputeWinners(
	squares []domain.Square,
	rowNumbers, colNumbers []int,
	scores []domain.QuarterScore,
	cfg domain.PayoutConfig,
	size int,
) (*Result, error) {
	const op = "payout.ComputeWinners"

	if err := assign.Validate(rowNumbers, size); err != nil {
		return nil, fmt.Errorf("%s: row numbers: %w", op, err)
	}
	if err := assign.Validate(colNumbers, size); err != nil {
		return nil, fmt.Errorf("%s: col numbers: %w", op, err)
	}

	grid := make(map[[2]int]domain.Square, len(squares))
	for _, sq := range squares {
		grid[[2]int{sq.Row, sq.Col}] = sq
	}

	res := &Result{}

	for _, sc := range scores {
		if sc.Home < 0 || sc.Away < 0 {
			return nil, fmt.Errorf("%s: negative score for %s", op, sc.Quarter)
		}

		homeDigit := sc.Home % size
		awayDigit := sc.Away % size

		row := indexOf(rowNumbers, homeDigit)
		col := indexOf(colNumbers, awayDigit)

		share := cfg.Share(sc.Quarter)

		sq, ok := grid[[2]int{row, col}]
		if !ok || sq.Ownership.Status != domain.SquarePurchased {
			res.Unclaimed = append(res.Unclaimed, sc.Quarter)
			continue
		}

		res.Winners = append(res.Winners, Winner{
			Quarter:     sc.Quarter,
			SquareID:    sq.ID,
			Row:         row,
			Col:         col,
			OwnerID:     sq.Ownership.OwnerID,
			AmountCents: share,
			HomeDigit:   homeDigit,
			AwayDigit:   awayDigit,
		})
		res.TotalPaidCents += share
	}

	res.RemainingPotCents = cfg.TotalPotCents - res.TotalPaidCents

	return res, nil
}

// SummarizeByOwner groups winners per owner, ordered by total payout
// descending then owner ID for a stable view.
func SummarizeByOwner(winners []Winner) []OwnerSummary {
	byOwner := make(map[int64]*OwnerSummary)
	for _, w := range winners {
		s, ok := byOwner[w.OwnerID]
		if !ok {
			s = &OwnerSummary{OwnerID: w.OwnerID}
			byOwner[w.OwnerID] = s
		}
		s.TotalCents += w.AmountCents
		s.WinCount++
		s.QuartersWon = append(s.QuartersWon, w.Quarter)
	}

	out := make([]OwnerSummary, 0, len(byOwner))
	for _, s := range byOwner {
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents > out[j].TotalCents
		}
		return out[i].OwnerID < out[j].OwnerID
	})

	return out
}

// indexOf is safe because rowNumbers/colNumbers are validated permutations:
// every digit in 0..size-1 occurs exactly once.
func indexOf(nums []int, v int) int {
	for i, n := range nums {
		if n == v {
			return i
		}
	}
	return -1
}
