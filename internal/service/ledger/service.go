package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/clock"
	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/repository"
	redisrepo "github.com/alsania-dev/gridplay-sub001/internal/repository/redis"
)

// Store is the conditional-update surface the ledger needs from persistence.
// Every method is all-or-nothing over its square set: a transition applies
// only where the current state matches the expected pre-state, and a partial
// match fails the whole batch without side effects.
type Store interface {
	ReserveSquares(ctx context.Context, boardID uuid.UUID, squareIDs []uuid.UUID, userID int64, now, until time.Time) ([]domain.Square, error)
	ConfirmSquares(ctx context.Context, boardID uuid.UUID, squareIDs []uuid.UUID, userID int64, at time.Time) ([]domain.Square, error)
	ReleaseSquares(ctx context.Context, boardID uuid.UUID, squareIDs []uuid.UUID) ([]domain.Square, error)
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)
}

type Config struct {
	MinHoldTTL time.Duration
	MaxHoldTTL time.Duration
}

type Service struct {
	store   Store
	cache   *redisrepo.Cache
	pubsub  *redisrepo.BoardsPubSub
	limiter *redisrepo.SlidingWindowLimiter
	clk     clock.Clock
	cfg     Config
}

func New(
	store Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BoardsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	clk clock.Clock,
	cfg Config,
) *Service {
	if cfg.MinHoldTTL <= 0 {
		cfg.MinHoldTTL = 15 * time.Second
	}

	if cfg.MaxHoldTTL <= 0 || cfg.MaxHoldTTL < cfg.MinHoldTTL {
		cfg.MaxHoldTTL = 5 * time.Minute
	}

	if clk == nil {
		clk = clock.Real{}
	}

	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		clk:     clk,
		cfg:     cfg,
	}
}

// ReserveSquares places an expiring hold on the selected squares for a user.
// The batch is atomic: if any square is taken, none are held.
//
// Parameters:
//   - ctx: request-scoped context.
//   - boardID: board the squares belong to.
//   - squareIDs: squares to hold.
//   - userID: user taking the hold.
//   - ttl: requested hold duration, clamped to configured bounds.
//   - rlKey: rate-limit key, empty to skip limiting.
//
// Returns:
//   - []domain.Square: post-operation state of every square in the batch.
//   - error: ledger.ErrAlreadyClaimed if any square is not available.
//   - error: ledger.ErrRateLimited when the caller is throttled.
func (s *Service) ReserveSquares(
	ctx context.Context,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
	ttl time.Duration,
	rlKey string,
) ([]domain.Square, error) {
	const op = "service.ledger.ReserveSquares"

	if len(squareIDs) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNoSquaresSelected)
	}

	ttl = s.clampTTL(ttl)

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w: retry in %s", op, ErrRateLimited, retry)
		}
	}

	now := s.clk.Now()

	sqs, err := s.store.ReserveSquares(ctx, boardID, squareIDs, userID, now, now.Add(ttl))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSquaresUnavailable):
			return nil, fmt.Errorf("%s:%w", op, ErrAlreadyClaimed)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s:%w", op, ErrBoardNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.notifyChanged(ctx, boardID)

	return sqs, nil
}

// ConfirmPurchase moves a user's reserved squares to purchased, all or
// nothing. A failure here means checkout and settlement disagree about who
// holds the squares; it is surfaced, never swallowed.
//
// Returns:
//   - []domain.Square: post-operation state.
//   - error: ledger.ErrOwnerMismatch if another user holds any square.
//   - error: ledger.ErrInvalidTransition if any square is not reserved.
func (s *Service) ConfirmPurchase(
	ctx context.Context,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
) ([]domain.Square, error) {
	const op = "service.ledger.ConfirmPurchase"

	if len(squareIDs) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNoSquaresSelected)
	}

	sqs, err := s.store.ConfirmSquares(ctx, boardID, squareIDs, userID, s.clk.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOwnerMismatch):
			return nil, fmt.Errorf("%s:%w", op, ErrOwnerMismatch)
		case errors.Is(err, repository.ErrNotReserved):
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidTransition)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.notifyChanged(ctx, boardID)

	return sqs, nil
}

// ReleaseSquares returns squares to available. Used for expirations, refunds
// and voids. Idempotent: releasing an already-available square changes
// nothing and reports no error.
func (s *Service) ReleaseSquares(
	ctx context.Context,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
) ([]domain.Square, error) {
	const op = "service.ledger.ReleaseSquares"

	if len(squareIDs) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNoSquaresSelected)
	}

	sqs, err := s.store.ReleaseSquares(ctx, boardID, squareIDs)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBoardNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.notifyChanged(ctx, boardID)

	return sqs, nil
}

// ExpireReservations sweeps lapsed holds back to available. Expiry is also
// applied lazily on reads and reserves; the sweep just keeps the stored
// state from drifting indefinitely.
//
// Returns:
//   - int64: the number of holds released.
func (s *Service) ExpireReservations(ctx context.Context) (int64, error) {
	const op = "service.ledger.ExpireReservations"

	released, err := s.store.ReleaseExpired(ctx, s.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return released, nil
}

func (s *Service) clampTTL(ttl time.Duration) time.Duration {
	if ttl < s.cfg.MinHoldTTL {
		return s.cfg.MinHoldTTL
	}

	if ttl > s.cfg.MaxHoldTTL {
		return s.cfg.MaxHoldTTL
	}

	return ttl
}

func (s *Service) notifyChanged(ctx context.Context, boardID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.InvalidateBoard(ctx, boardID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishBoardChanged(ctx, boardID)
	}
}
