package payout

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
)

// identity permutations keep the digit-to-index mapping trivial: digit d sits
// at index d on both axes.
func identity(size int) []int {
	nums := make([]int, size)
	for i := range nums {
		nums[i] = i
	}
	return nums
}

// fullGrid builds a size*size board where every square is purchased by owner
// (row*size + col + 1), so each square has a distinct, predictable owner.
func fullGrid(size int) []domain.Square {
	now := time.Now()
	sqs := make([]domain.Square, 0, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			sqs = append(sqs, domain.Square{
				ID:        uuid.New(),
				Row:       row,
				Col:       col,
				Ownership: domain.PurchasedBy(int64(row*size+col+1), now),
			})
		}
	}
	return sqs
}

var evenSplit = domain.PayoutConfig{
	Q1Cents:       2000,
	Q2Cents:       2000,
	Q3Cents:       2000,
	FinalCents:    4000,
	TotalPotCents: 10000,
}

func TestComputeWinnersMatchesLastDigits(t *testing.T) {
	size := 10
	sqs := fullGrid(size)

	// Home 17 -> digit 7 -> row index 7; away 23 -> digit 3 -> col index 3.
	res, err := ComputeWinners(sqs, identity(size), identity(size), []domain.QuarterScore{
		{Quarter: domain.QuarterQ1, Home: 17, Away: 23},
	}, evenSplit, size)
	if err != nil {
		t.Fatalf("ComputeWinners returned error: %v", err)
	}

	if len(res.Winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(res.Winners))
	}

	w := res.Winners[0]
	if w.Row != 7 || w.Col != 3 {
		t.Errorf("winner at (%d,%d), want (7,3)", w.Row, w.Col)
	}
	if w.HomeDigit != 7 || w.AwayDigit != 3 {
		t.Errorf("digits (%d,%d), want (7,3)", w.HomeDigit, w.AwayDigit)
	}
	if w.AmountCents != 2000 {
		t.Errorf("amount = %d, want 2000", w.AmountCents)
	}
	if res.TotalPaidCents != 2000 {
		t.Errorf("total paid = %d, want 2000", res.TotalPaidCents)
	}
	if res.RemainingPotCents != 8000 {
		t.Errorf("remaining pot = %d, want 8000", res.RemainingPotCents)
	}
}

func TestComputeWinnersWithPermutedAxes(t *testing.T) {
	size := 10
	sqs := fullGrid(size)

	rows := []int{5, 2, 7, 0, 9, 4, 1, 8, 3, 6}
	cols := []int{9, 0, 8, 1, 7, 2, 6, 3, 5, 4}

	// Home 27 -> digit 7 at row index 2; away 18 -> digit 8 at col index 2.
	res, err := ComputeWinners(sqs, rows, cols, []domain.QuarterScore{
		{Quarter: domain.QuarterQ2, Home: 27, Away: 18},
	}, evenSplit, size)
	if err != nil {
		t.Fatalf("ComputeWinners returned error: %v", err)
	}

	if len(res.Winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(res.Winners))
	}
	if w := res.Winners[0]; w.Row != 2 || w.Col != 2 {
		t.Errorf("winner at (%d,%d), want (2,2)", w.Row, w.Col)
	}
}

func TestComputeWinnersUnownedSquareStaysInPot(t *testing.T) {
	size := 10
	sqs := fullGrid(size)

	// Vacate the square Q1 would hit: home 0 / away 0 -> (0,0).
	for i := range sqs {
		if sqs[i].Row == 0 && sqs[i].Col == 0 {
			sqs[i].Ownership = domain.Available()
		}
	}

	res, err := ComputeWinners(sqs, identity(size), identity(size), []domain.QuarterScore{
		{Quarter: domain.QuarterQ1, Home: 0, Away: 0},
		{Quarter: domain.QuarterQ2, Home: 7, Away: 3},
	}, evenSplit, size)
	if err != nil {
		t.Fatalf("ComputeWinners returned error: %v", err)
	}

	if len(res.Winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(res.Winners))
	}
	if res.Winners[0].Quarter != domain.QuarterQ2 {
		t.Errorf("winner quarter = %s, want Q2", res.Winners[0].Quarter)
	}

	if len(res.Unclaimed) != 1 || res.Unclaimed[0] != domain.QuarterQ1 {
		t.Errorf("unclaimed = %v, want [Q1]", res.Unclaimed)
	}

	if res.TotalPaidCents != 2000 {
		t.Errorf("total paid = %d, want 2000", res.TotalPaidCents)
	}
	// The Q1 share is retained, not redistributed.
	if res.RemainingPotCents != 8000 {
		t.Errorf("remaining pot = %d, want 8000", res.RemainingPotCents)
	}
}

func TestComputeWinnersReservedSquareDoesNotWin(t *testing.T) {
	size := 10
	sqs := fullGrid(size)

	now := time.Now()
	for i := range sqs {
		if sqs[i].Row == 4 && sqs[i].Col == 2 {
			sqs[i].Ownership = domain.ReservedBy(77, now, now.Add(time.Minute))
		}
	}

	res, err := ComputeWinners(sqs, identity(size), identity(size), []domain.QuarterScore{
		{Quarter: domain.QuarterQ3, Home: 14, Away: 42},
	}, evenSplit, size)
	if err != nil {
		t.Fatalf("ComputeWinners returned error: %v", err)
	}

	if len(res.Winners) != 0 {
		t.Errorf("reserved square produced a winner: %+v", res.Winners)
	}
	if len(res.Unclaimed) != 1 {
		t.Errorf("unclaimed = %v, want one entry", res.Unclaimed)
	}
}

func TestComputeWinnersMod5Board(t *testing.T) {
	size := 5
	sqs := fullGrid(size)

	// On the half grid 17 % 5 == 2 and 23 % 5 == 3.
	res, err := ComputeWinners(sqs, identity(size), identity(size), []domain.QuarterScore{
		{Quarter: domain.QuarterFinal, Home: 17, Away: 23},
	}, evenSplit, size)
	if err != nil {
		t.Fatalf("ComputeWinners returned error: %v", err)
	}

	if len(res.Winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(res.Winners))
	}
	if w := res.Winners[0]; w.Row != 2 || w.Col != 3 {
		t.Errorf("winner at (%d,%d), want (2,3)", w.Row, w.Col)
	}
	if res.Winners[0].AmountCents != 4000 {
		t.Errorf("final share = %d, want 4000", res.Winners[0].AmountCents)
	}
}

func TestComputeWinnersOvertimePaysFinalShare(t *testing.T) {
	size := 10
	sqs := fullGrid(size)

	res, err := ComputeWinners(sqs, identity(size), identity(size), []domain.QuarterScore{
		{Quarter: domain.QuarterOT, Home: 31, Away: 28},
	}, evenSplit, size)
	if err != nil {
		t.Fatalf("ComputeWinners returned error: %v", err)
	}

	if len(res.Winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(res.Winners))
	}
	if res.Winners[0].AmountCents != evenSplit.FinalCents {
		t.Errorf("OT amount = %d, want final share %d",
			res.Winners[0].AmountCents, evenSplit.FinalCents)
	}
}

func TestComputeWinnersIsDeterministic(t *testing.T) {
	size := 10
	sqs := fullGrid(size)
	scores := []domain.QuarterScore{
		{Quarter: domain.QuarterQ1, Home: 7, Away: 0},
		{Quarter: domain.QuarterQ2, Home: 14, Away: 3},
		{Quarter: domain.QuarterQ3, Home: 14, Away: 10},
		{Quarter: domain.QuarterFinal, Home: 21, Away: 17},
	}

	first, err := ComputeWinners(sqs, identity(size), identity(size), scores, evenSplit, size)
	if err != nil {
		t.Fatalf("ComputeWinners returned error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := ComputeWinners(sqs, identity(size), identity(size), scores, evenSplit, size)
		if err != nil {
			t.Fatalf("ComputeWinners returned error on repeat: %v", err)
		}
		if len(again.Winners) != len(first.Winners) ||
			again.TotalPaidCents != first.TotalPaidCents ||
			again.RemainingPotCents != first.RemainingPotCents {
			t.Fatalf("recompute diverged: %+v vs %+v", again, first)
		}
		for j := range again.Winners {
			if again.Winners[j] != first.Winners[j] {
				t.Fatalf("winner %d diverged: %+v vs %+v", j, again.Winners[j], first.Winners[j])
			}
		}
	}
}

func TestComputeWinnersValidation(t *testing.T) {
	size := 10
	sqs := fullGrid(size)

	t.Run("bad row permutation", func(t *testing.T) {
		bad := identity(size)
		bad[0] = 5 // duplicate
		_, err := ComputeWinners(sqs, bad, identity(size), nil, evenSplit, size)
		if err == nil {
			t.Error("expected error for non-permutation rows")
		}
	})

	t.Run("negative score", func(t *testing.T) {
		_, err := ComputeWinners(sqs, identity(size), identity(size), []domain.QuarterScore{
			{Quarter: domain.QuarterQ1, Home: -3, Away: 0},
		}, evenSplit, size)
		if err == nil {
			t.Error("expected error for negative score")
		}
	})
}

func TestSummarizeByOwner(t *testing.T) {
	winners := []Winner{
		{Quarter: domain.QuarterQ1, OwnerID: 2, AmountCents: 2000},
		{Quarter: domain.QuarterQ2, OwnerID: 1, AmountCents: 2000},
		{Quarter: domain.QuarterQ3, OwnerID: 2, AmountCents: 2000},
		{Quarter: domain.QuarterFinal, OwnerID: 3, AmountCents: 4000},
	}

	out := SummarizeByOwner(winners)
	if len(out) != 3 {
		t.Fatalf("expected 3 owners, got %d", len(out))
	}

	// Owner 2 and owner 3 tie at 4000; the lower ID sorts first.
	if out[0].OwnerID != 2 || out[0].TotalCents != 4000 || out[0].WinCount != 2 {
		t.Errorf("first = %+v, want owner 2 with 4000 over 2 wins", out[0])
	}
	if out[1].OwnerID != 3 || out[1].TotalCents != 4000 {
		t.Errorf("second = %+v, want owner 3 with 4000", out[1])
	}
	if out[2].OwnerID != 1 || out[2].TotalCents != 2000 {
		t.Errorf("third = %+v, want owner 1 with 2000", out[2])
	}
}

func TestPayoutConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.PayoutConfig
		wantErr bool
	}{
		{"valid even split", evenSplit, false},
		{"zero shares zero pot", domain.PayoutConfig{}, false},
		{"shares under pot", domain.PayoutConfig{Q1Cents: 100, TotalPotCents: 500}, true},
		{"shares over pot", domain.PayoutConfig{Q1Cents: 600, TotalPotCents: 500}, true},
		{"negative share", domain.PayoutConfig{Q1Cents: -100, FinalCents: 600, TotalPotCents: 500}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
