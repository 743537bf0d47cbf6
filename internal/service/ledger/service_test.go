package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/clock"
	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/repository"
)

// fakeStore reproduces the repository's all-or-nothing conditional updates in
// memory, driving the same domain transitions the SQL encodes.
type fakeStore struct {
	mu      sync.Mutex
	squares map[uuid.UUID]*domain.Square
}

func newFakeStore(squares ...domain.Square) *fakeStore {
	s := &fakeStore{squares: make(map[uuid.UUID]*domain.Square, len(squares))}
	for i := range squares {
		sq := squares[i]
		s.squares[sq.ID] = &sq
	}
	return s
}

func (s *fakeStore) ReserveSquares(
	_ context.Context,
	_ uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
	now, until time.Time,
) ([]domain.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Dry run first so a partial failure leaves nothing held.
	staged := make([]domain.Square, 0, len(squareIDs))
	for _, id := range squareIDs {
		sq, ok := s.squares[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		cp := *sq
		if err := cp.Reserve(userID, now, until.Sub(now)); err != nil {
			return nil, repository.ErrSquaresUnavailable
		}
		staged = append(staged, cp)
	}

	for i := range staged {
		*s.squares[staged[i].ID] = staged[i]
	}

	return staged, nil
}

func (s *fakeStore) ConfirmSquares(
	_ context.Context,
	_ uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
	at time.Time,
) ([]domain.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]domain.Square, 0, len(squareIDs))
	for _, id := range squareIDs {
		sq, ok := s.squares[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		cp := *sq
		if err := cp.ConfirmPurchase(userID, at); err != nil {
			switch {
			case errors.Is(err, domain.ErrOwnerMismatch):
				return nil, repository.ErrOwnerMismatch
			default:
				return nil, repository.ErrNotReserved
			}
		}
		staged = append(staged, cp)
	}

	for i := range staged {
		*s.squares[staged[i].ID] = staged[i]
	}

	return staged, nil
}

func (s *fakeStore) ReleaseSquares(
	_ context.Context,
	_ uuid.UUID,
	squareIDs []uuid.UUID,
) ([]domain.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Square, 0, len(squareIDs))
	for _, id := range squareIDs {
		sq, ok := s.squares[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		sq.Release()
		out = append(out, *sq)
	}

	return out, nil
}

func (s *fakeStore) ReleaseExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, sq := range s.squares {
		if sq.NormalizeExpired(now) {
			n++
		}
	}

	return n, nil
}

func (s *fakeStore) get(id uuid.UUID) domain.Square {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.squares[id]
}

func makeSquares(boardID uuid.UUID, n int) []domain.Square {
	sqs := make([]domain.Square, n)
	for i := range sqs {
		sqs[i] = domain.Square{
			ID:        uuid.New(),
			BoardID:   boardID,
			Row:       i / 10,
			Col:       i % 10,
			Ownership: domain.Available(),
		}
	}
	return sqs
}

func newTestService(store Store, clk clock.Clock) *Service {
	return New(store, nil, nil, nil, clk, Config{
		MinHoldTTL: 15 * time.Second,
		MaxHoldTTL: 5 * time.Minute,
	})
}

func TestReserveSquares(t *testing.T) {
	boardID := uuid.New()
	clk := clock.NewFake(time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC))

	t.Run("holds the batch", func(t *testing.T) {
		sqs := makeSquares(boardID, 3)
		store := newFakeStore(sqs...)
		svc := newTestService(store, clk)

		ids := []uuid.UUID{sqs[0].ID, sqs[1].ID, sqs[2].ID}
		held, err := svc.ReserveSquares(context.Background(), boardID, ids, 7, time.Minute, "")
		if err != nil {
			t.Fatalf("ReserveSquares returned error: %v", err)
		}
		if len(held) != 3 {
			t.Fatalf("held %d squares, want 3", len(held))
		}
		for _, sq := range held {
			if sq.Ownership.Status != domain.SquareReserved || sq.Ownership.OwnerID != 7 {
				t.Errorf("square %s ownership = %+v, want reserved by 7", sq.ID, sq.Ownership)
			}
		}
	})

	t.Run("batch is all or nothing", func(t *testing.T) {
		sqs := makeSquares(boardID, 3)
		store := newFakeStore(sqs...)
		svc := newTestService(store, clk)

		// Pre-claim the middle square for someone else.
		if _, err := svc.ReserveSquares(context.Background(), boardID,
			[]uuid.UUID{sqs[1].ID}, 99, time.Minute, ""); err != nil {
			t.Fatalf("setup reserve returned error: %v", err)
		}

		ids := []uuid.UUID{sqs[0].ID, sqs[1].ID, sqs[2].ID}
		_, err := svc.ReserveSquares(context.Background(), boardID, ids, 7, time.Minute, "")
		if !errors.Is(err, ErrAlreadyClaimed) {
			t.Fatalf("error = %v, want ErrAlreadyClaimed", err)
		}

		// Squares 0 and 2 must be untouched by the failed batch.
		for _, id := range []uuid.UUID{sqs[0].ID, sqs[2].ID} {
			if got := store.get(id); got.Ownership.Status != domain.SquareAvailable {
				t.Errorf("square %s = %+v after failed batch, want available", id, got.Ownership)
			}
		}
	})

	t.Run("empty selection", func(t *testing.T) {
		svc := newTestService(newFakeStore(), clk)
		_, err := svc.ReserveSquares(context.Background(), boardID, nil, 7, time.Minute, "")
		if !errors.Is(err, ErrNoSquaresSelected) {
			t.Errorf("error = %v, want ErrNoSquaresSelected", err)
		}
	})
}

func TestReserveSquaresConcurrentExactlyOneWinner(t *testing.T) {
	boardID := uuid.New()
	clk := clock.NewFake(time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC))
	sqs := makeSquares(boardID, 1)
	store := newFakeStore(sqs...)
	svc := newTestService(store, clk)

	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ReserveSquares(context.Background(), boardID,
				[]uuid.UUID{sqs[0].ID}, int64(i+1), time.Minute, "")
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyClaimed):
		default:
			t.Errorf("worker %d got unexpected error: %v", i, err)
		}
	}

	if wins != 1 {
		t.Errorf("%d workers won the square, want exactly 1", wins)
	}
}

func TestReserveSquaresTTLClamping(t *testing.T) {
	boardID := uuid.New()
	start := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)
	sqs := makeSquares(boardID, 2)
	store := newFakeStore(sqs...)
	svc := newTestService(store, clk)

	t.Run("below minimum", func(t *testing.T) {
		held, err := svc.ReserveSquares(context.Background(), boardID,
			[]uuid.UUID{sqs[0].ID}, 7, time.Second, "")
		if err != nil {
			t.Fatalf("ReserveSquares returned error: %v", err)
		}
		if got := *held[0].Ownership.ReservedUntil; !got.Equal(start.Add(15 * time.Second)) {
			t.Errorf("reserved until = %v, want clamped to %v", got, start.Add(15*time.Second))
		}
	})

	t.Run("above maximum", func(t *testing.T) {
		held, err := svc.ReserveSquares(context.Background(), boardID,
			[]uuid.UUID{sqs[1].ID}, 7, time.Hour, "")
		if err != nil {
			t.Fatalf("ReserveSquares returned error: %v", err)
		}
		if got := *held[0].Ownership.ReservedUntil; !got.Equal(start.Add(5 * time.Minute)) {
			t.Errorf("reserved until = %v, want clamped to %v", got, start.Add(5*time.Minute))
		}
	})
}

func TestConfirmPurchase(t *testing.T) {
	boardID := uuid.New()
	clk := clock.NewFake(time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC))

	t.Run("moves holds to purchased", func(t *testing.T) {
		sqs := makeSquares(boardID, 2)
		store := newFakeStore(sqs...)
		svc := newTestService(store, clk)

		ids := []uuid.UUID{sqs[0].ID, sqs[1].ID}
		if _, err := svc.ReserveSquares(context.Background(), boardID, ids, 7, time.Minute, ""); err != nil {
			t.Fatalf("setup reserve returned error: %v", err)
		}

		bought, err := svc.ConfirmPurchase(context.Background(), boardID, ids, 7)
		if err != nil {
			t.Fatalf("ConfirmPurchase returned error: %v", err)
		}
		for _, sq := range bought {
			if sq.Ownership.Status != domain.SquarePurchased {
				t.Errorf("square %s status = %s, want purchased", sq.ID, sq.Ownership.Status)
			}
		}
	})

	t.Run("rejects wrong owner", func(t *testing.T) {
		sqs := makeSquares(boardID, 1)
		store := newFakeStore(sqs...)
		svc := newTestService(store, clk)

		ids := []uuid.UUID{sqs[0].ID}
		if _, err := svc.ReserveSquares(context.Background(), boardID, ids, 7, time.Minute, ""); err != nil {
			t.Fatalf("setup reserve returned error: %v", err)
		}

		_, err := svc.ConfirmPurchase(context.Background(), boardID, ids, 8)
		if !errors.Is(err, ErrOwnerMismatch) {
			t.Errorf("error = %v, want ErrOwnerMismatch", err)
		}
	})

	t.Run("rejects unreserved square", func(t *testing.T) {
		sqs := makeSquares(boardID, 1)
		store := newFakeStore(sqs...)
		svc := newTestService(store, clk)

		_, err := svc.ConfirmPurchase(context.Background(), boardID, []uuid.UUID{sqs[0].ID}, 7)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestReleaseSquares(t *testing.T) {
	boardID := uuid.New()
	clk := clock.NewFake(time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC))
	sqs := makeSquares(boardID, 2)
	store := newFakeStore(sqs...)
	svc := newTestService(store, clk)

	ids := []uuid.UUID{sqs[0].ID, sqs[1].ID}
	if _, err := svc.ReserveSquares(context.Background(), boardID, ids, 7, time.Minute, ""); err != nil {
		t.Fatalf("setup reserve returned error: %v", err)
	}

	freed, err := svc.ReleaseSquares(context.Background(), boardID, ids)
	if err != nil {
		t.Fatalf("ReleaseSquares returned error: %v", err)
	}
	for _, sq := range freed {
		if sq.Ownership.Status != domain.SquareAvailable {
			t.Errorf("square %s status = %s, want available", sq.ID, sq.Ownership.Status)
		}
	}

	// Releasing again is a no-op, not an error.
	if _, err := svc.ReleaseSquares(context.Background(), boardID, ids); err != nil {
		t.Errorf("second release returned error: %v", err)
	}
}

func TestExpireReservations(t *testing.T) {
	boardID := uuid.New()
	start := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)
	sqs := makeSquares(boardID, 3)
	store := newFakeStore(sqs...)
	svc := newTestService(store, clk)

	// Two short holds, one long hold.
	short := []uuid.UUID{sqs[0].ID, sqs[1].ID}
	if _, err := svc.ReserveSquares(context.Background(), boardID, short, 7, 30*time.Second, ""); err != nil {
		t.Fatalf("setup reserve returned error: %v", err)
	}
	if _, err := svc.ReserveSquares(context.Background(), boardID,
		[]uuid.UUID{sqs[2].ID}, 8, 5*time.Minute, ""); err != nil {
		t.Fatalf("setup reserve returned error: %v", err)
	}

	clk.Advance(time.Minute)

	released, err := svc.ExpireReservations(context.Background())
	if err != nil {
		t.Fatalf("ExpireReservations returned error: %v", err)
	}
	if released != 2 {
		t.Errorf("released = %d, want 2", released)
	}

	if got := store.get(sqs[2].ID); got.Ownership.Status != domain.SquareReserved {
		t.Errorf("long hold = %+v, want still reserved", got.Ownership)
	}

	// Expired holds are now reclaimable by another user.
	if _, err := svc.ReserveSquares(context.Background(), boardID, short, 9, time.Minute, ""); err != nil {
		t.Errorf("reserving swept squares returned error: %v", err)
	}
}
