package boards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/assign"
	"github.com/alsania-dev/gridplay-sub001/internal/clock"
	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/payout"
	"github.com/alsania-dev/gridplay-sub001/internal/repository"
	redisrepo "github.com/alsania-dev/gridplay-sub001/internal/repository/redis"
)

// BoardStore is the board-level persistence surface.
type BoardStore interface {
	CreateBoardWithSquares(ctx context.Context, b *domain.Board, squares []domain.Square) error
	GetBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	AssignNumbers(ctx context.Context, boardID uuid.UUID, rowNumbers, colNumbers []int) error
	UpdateStatus(ctx context.Context, boardID uuid.UUID, from, to domain.BoardStatus) error
}

// SquareStore is the read side of the grid the boards service needs.
type SquareStore interface {
	ListSquares(ctx context.Context, boardID uuid.UUID) ([]domain.Square, error)
	CountsByStatus(ctx context.Context, boardID uuid.UUID) (*domain.SquareCounts, error)
}

type Config struct {
	BoardSummaryTTL time.Duration
	AvailabilityTTL time.Duration
}

type Service struct {
	boards  BoardStore
	squares SquareStore
	cache   *redisrepo.Cache
	pubsub  *redisrepo.BoardsPubSub
	clk     clock.Clock
	logger  *slog.Logger
	cfg     Config
}

func New(
	boards BoardStore,
	squares SquareStore,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BoardsPubSub,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.BoardSummaryTTL <= 0 {
		cfg.BoardSummaryTTL = 60 * time.Second
	}

	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 15 * time.Second
	}

	if clk == nil {
		clk = clock.Real{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		boards:  boards,
		squares: squares,
		cache:   cache,
		pubsub:  pubsub,
		clk:     clk,
		logger:  logger,
		cfg:     cfg,
	}
}

// CreateBoard validates the payout split, then creates the board together
// with its size*size squares, all available, each priced at the board's
// per-square price.
//
// Parameters:
//   - ctx: request-scoped context.
//   - gameID: external game identifier the board follows.
//   - size: grid width, 5 or 10.
//   - priceCents: price per square.
//   - homeTeam, awayTeam: display labels.
//   - cfg: payout split, validated here and never again.
//
// Returns:
//   - *domain.Board: the created board.
//   - error: boards.ErrInvalidSize or boards.ErrConfigInvalid on bad input.
func (s *Service) CreateBoard(
	ctx context.Context,
	gameID string,
	size int,
	priceCents int64,
	homeTeam, awayTeam string,
	cfg domain.PayoutConfig,
) (*domain.Board, error) {
	const op = "service.boards.CreateBoard"

	if size != 5 && size != 10 {
		return nil, fmt.Errorf("%s:%w: got %d", op, ErrInvalidSize, size)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w: %v", op, ErrConfigInvalid, err)
	}

	now := s.clk.Now()

	b := &domain.Board{
		ID:         uuid.New(),
		GameID:     gameID,
		Size:       size,
		PriceCents: priceCents,
		HomeTeam:   homeTeam,
		AwayTeam:   awayTeam,
		Status:     domain.BoardOpen,
		Payout:     cfg,
		CreatedAt:  now,
	}

	squares := make([]domain.Square, 0, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			squares = append(squares, domain.Square{
				ID:         uuid.New(),
				BoardID:    b.ID,
				Row:        row,
				Col:        col,
				PriceCents: priceCents,
				Ownership:  domain.Available(),
			})
		}
	}

	if err := s.boards.CreateBoardWithSquares(ctx, b, squares); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s:%w", op, ErrBoardConflict)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// GetBoard retrieves a board through the cache.
//
// Returns:
//   - *domain.Board: the board.
//   - error: boards.ErrBoardNotFound if it does not exist.
func (s *Service) GetBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	const op = "service.boards.GetBoard"

	loader := func(ctx context.Context) (domain.Board, error) {
		b, err := s.boards.GetBoard(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Board{}, ErrBoardNotFound
			}

			return domain.Board{}, err
		}

		return *b, nil
	}

	if s.cache == nil {
		b, err := loader(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &b, nil
	}

	board, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyBoardSummary(id),
		s.cfg.BoardSummaryTTL,
		loader,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &board, nil
}

// ListSquares returns the board's grid with lapsed holds already folded back
// to available, so callers never see a stale reservation.
func (s *Service) ListSquares(ctx context.Context, boardID uuid.UUID) ([]domain.Square, error) {
	const op = "service.boards.ListSquares"

	sqs, err := s.squares.ListSquares(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBoardNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clk.Now()
	for i := range sqs {
		sqs[i].NormalizeExpired(now)
	}

	return sqs, nil
}

// Availability returns the board's per-status square counts through the cache.
func (s *Service) Availability(ctx context.Context, boardID uuid.UUID) (*domain.SquareCounts, error) {
	const op = "service.boards.Availability"

	loader := func(ctx context.Context) (domain.SquareCounts, error) {
		c, err := s.squares.CountsByStatus(ctx, boardID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.SquareCounts{}, ErrBoardNotFound
			}

			return domain.SquareCounts{}, err
		}

		return *c, nil
	}

	if s.cache == nil {
		c, err := loader(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &c, nil
	}

	counts, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyBoardAvailability(boardID),
		s.cfg.AvailabilityTTL,
		loader,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &counts, nil
}

// AssignNumbersIfNeeded runs digit assignment once the board is full.
//
// The shuffle runs at most once per board: the store-side compare-and-swap on
// the numbers_assigned flag decides the winner of a concurrent race, and the
// loser returns the already-stored numbers without reshuffling. Calling this
// on a board whose numbers exist is always a safe no-op.
//
// Returns:
//   - *domain.Board: the board with numbers populated.
//   - error: boards.ErrBoardNotFull if any square is still unpurchased.
//   - error: boards.ErrBoardNotFound if the board does not exist.
func (s *Service) AssignNumbersIfNeeded(ctx context.Context, boardID uuid.UUID) (*domain.Board, error) {
	const op = "service.boards.AssignNumbersIfNeeded"

	b, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBoardNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if b.NumbersAssigned() {
		return b, nil
	}

	counts, err := s.squares.CountsByStatus(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !counts.Full() {
		return nil, fmt.Errorf("%s:%w: %d of %d purchased",
			op, ErrBoardNotFull, counts.Purchased, counts.Total)
	}

	rows, cols, err := assign.Assign(b.Size)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.boards.AssignNumbers(ctx, boardID, rows, cols); err != nil {
		if errors.Is(err, repository.ErrAlreadyAssigned) {
			// Lost the race; the other trigger's numbers stand.
			s.logger.Info("numbers already assigned", "board_id", boardID)
			b, err = s.boards.GetBoard(ctx, boardID)
			if err != nil {
				return nil, fmt.Errorf("%s:%w", op, err)
			}

			s.notifyChanged(ctx, boardID)

			return b, nil
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	b.RowNumbers = rows
	b.ColNumbers = cols
	b.Status = domain.BoardLocked

	s.notifyChanged(ctx, boardID)

	return b, nil
}

// ComputeWinners resolves the given quarter scores against the board. Pure
// with respect to state: nothing is written and identical inputs reproduce
// identical output.
//
// Returns:
//   - *payout.Result: winners, total paid and remaining pot.
//   - error: boards.ErrNumbersNotAssigned before digit assignment.
func (s *Service) ComputeWinners(
	ctx context.Context,
	boardID uuid.UUID,
	scores []domain.QuarterScore,
) (*payout.Result, error) {
	const op = "service.boards.ComputeWinners"

	b, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBoardNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !b.NumbersAssigned() {
		return nil, fmt.Errorf("%s:%w", op, ErrNumbersNotAssigned)
	}

	sqs, err := s.squares.ListSquares(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	res, err := payout.ComputeWinners(sqs, b.RowNumbers, b.ColNumbers, scores, b.Payout, b.Size)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if len(res.Unclaimed) > 0 {
		s.logger.Warn("quarters with no owned winning square",
			"board_id", boardID,
			"quarters", res.Unclaimed,
			"remaining_pot_cents", res.RemainingPotCents,
		)
	}

	return res, nil
}

// WinnersSummary computes winners and folds them into per-owner totals.
func (s *Service) WinnersSummary(
	ctx context.Context,
	boardID uuid.UUID,
	scores []domain.QuarterScore,
) ([]payout.OwnerSummary, error) {
	const op = "service.boards.WinnersSummary"

	res, err := s.ComputeWinners(ctx, boardID, scores)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return payout.SummarizeByOwner(res.Winners), nil
}

// CompleteBoard marks a locked board as completed after the game ends.
func (s *Service) CompleteBoard(ctx context.Context, boardID uuid.UUID) error {
	const op = "service.boards.CompleteBoard"

	if err := s.boards.UpdateStatus(ctx, boardID, domain.BoardLocked, domain.BoardCompleted); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%s:%w", op, ErrBoardNotLocked)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	s.notifyChanged(ctx, boardID)

	return nil
}

func (s *Service) notifyChanged(ctx context.Context, boardID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.InvalidateBoard(ctx, boardID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishBoardChanged(ctx, boardID)
	}
}
