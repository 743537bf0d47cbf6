package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/repository"
)

type SquareRepo struct {
	pool  *pgxpool.Pool
	store *Store
	db    DB
}

func (r *SquareRepo) With(db DB) *SquareRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SquareRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ReserveSquares places a hold on every listed square as one atomic unit.
//
// Lapsed holds on the board are folded back to available first, then a single
// conditional UPDATE claims the squares; if the affected row count does not
// match the request, nothing is committed.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - boardID: board the squares belong to.
//   - squareIDs: squares to reserve, all or nothing.
//   - userID: user taking the hold.
//   - now: current instant per the caller's clock.
//   - until: hold expiry instant.
//
// Returns:
//   - []domain.Square: post-transition state of the reserved squares.
//   - error: repository.ErrSquaresUnavailable if any square is not available.
func (r *SquareRepo) ReserveSquares(
	ctx context.Context,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
	now time.Time,
	until time.Time,
) ([]domain.Square, error) {
	const op = "postgres.SquareRepo.ReserveSquares"

	if r.db != nil {
		sqs, err := r.reserveCore(ctx, r.db, boardID, squareIDs, userID, now, until)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return sqs, nil
	}

	var out []domain.Square
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		sqs, err := r.reserveCore(ctx, tx, boardID, squareIDs, userID, now, until)
		if err != nil {
			return err
		}
		out = sqs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ConfirmSquares moves reserved squares to purchased for the matching owner,
// all or nothing.
//
// Returns:
//   - []domain.Square: post-transition state.
//   - error: repository.ErrOwnerMismatch if any square is reserved by a
//     different user.
//   - error: repository.ErrNotReserved if any square is not in reserved state.
func (r *SquareRepo) ConfirmSquares(
	ctx context.Context,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
	at time.Time,
) ([]domain.Square, error) {
	const op = "postgres.SquareRepo.ConfirmSquares"

	if r.db != nil {
		sqs, err := r.confirmCore(ctx, r.db, boardID, squareIDs, userID, at)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return sqs, nil
	}

	var out []domain.Square
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		sqs, err := r.confirmCore(ctx, tx, boardID, squareIDs, userID, at)
		if err != nil {
			return err
		}
		out = sqs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ReleaseSquares returns squares to available, clearing owner and timestamps.
// Squares already available are left untouched, so the call is idempotent.
func (r *SquareRepo) ReleaseSquares(
	ctx context.Context,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
) ([]domain.Square, error) {
	const op = "postgres.SquareRepo.ReleaseSquares"

	if r.db != nil {
		sqs, err := r.releaseCore(ctx, r.db, boardID, squareIDs)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return sqs, nil
	}

	var out []domain.Square
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		sqs, err := r.releaseCore(ctx, tx, boardID, squareIDs)
		if err != nil {
			return err
		}
		out = sqs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ReleaseExpired sweeps lapsed holds across all boards back to available.
//
// Returns:
//   - int64: the number of squares released.
func (r *SquareRepo) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "postgres.SquareRepo.ReleaseExpired"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE squares
		    SET status = 'available', owner_id = NULL,
		        reserved_at = NULL, reserved_until = NULL, purchased_at = NULL
		  WHERE status = 'reserved' AND reserved_until <= $1`,
		now,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// ListSquares returns every square on a board ordered by row then column.
func (r *SquareRepo) ListSquares(ctx context.Context, boardID uuid.UUID) ([]domain.Square, error) {
	const op = "postgres.SquareRepo.ListSquares"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, board_id, "row", col, price_cents, status,
		        owner_id, reserved_at, reserved_until, purchased_at
		   FROM squares
		  WHERE board_id = $1
		  ORDER BY "row", col`,
		boardID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	sqs, err := scanSquares(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return sqs, nil
}

// CountsByStatus returns the board's availability counters.
//
// Returns:
//   - *domain.SquareCounts: counts per status plus the total.
//   - error: repository.ErrNotFound if the board has no squares.
func (r *SquareRepo) CountsByStatus(ctx context.Context, boardID uuid.UUID) (*domain.SquareCounts, error) {
	const op = "postgres.SquareRepo.CountsByStatus"

	db := r.handle()

	var c domain.SquareCounts
	err := db.QueryRow(ctx,
		`SELECT
		    COUNT(*) FILTER (WHERE status = 'available'),
		    COUNT(*) FILTER (WHERE status = 'reserved'),
		    COUNT(*) FILTER (WHERE status = 'purchased'),
		    COUNT(*)
		   FROM squares
		  WHERE board_id = $1`,
		boardID,
	).Scan(&c.Available, &c.Reserved, &c.Purchased, &c.Total)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	if c.Total == 0 {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return &c, nil
}

func (r *SquareRepo) reserveCore(
	ctx context.Context,
	db DB,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
	now time.Time,
	until time.Time,
) ([]domain.Square, error) {
	if _, err := db.Exec(ctx,
		`UPDATE squares
		    SET status = 'available', owner_id = NULL,
		        reserved_at = NULL, reserved_until = NULL
		  WHERE board_id = $1
		    AND status = 'reserved'
		    AND reserved_until <= $2`,
		boardID, now,
	); err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx,
		`UPDATE squares
		    SET status = 'reserved', owner_id = $3,
		        reserved_at = $4, reserved_until = $5
		  WHERE board_id = $1
		    AND id = ANY($2)
		    AND status = 'available'
		 RETURNING id, board_id, "row", col, price_cents, status,
		           owner_id, reserved_at, reserved_until, purchased_at`,
		boardID, squareIDs, userID, now, until,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	sqs, err := scanSquares(rows)
	if err != nil {
		return nil, err
	}

	if len(sqs) != len(squareIDs) {
		return nil, repository.ErrSquaresUnavailable
	}

	return sqs, nil
}

func (r *SquareRepo) confirmCore(
	ctx context.Context,
	db DB,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
	at time.Time,
) ([]domain.Square, error) {
	rows, err := db.Query(ctx,
		`UPDATE squares
		    SET status = 'purchased', purchased_at = $4,
		        reserved_at = NULL, reserved_until = NULL
		  WHERE board_id = $1
		    AND id = ANY($2)
		    AND status = 'reserved'
		    AND owner_id = $3
		 RETURNING id, board_id, "row", col, price_cents, status,
		           owner_id, reserved_at, reserved_until, purchased_at`,
		boardID, squareIDs, userID, at,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	sqs, err := scanSquares(rows)
	if err != nil {
		return nil, err
	}

	if len(sqs) != len(squareIDs) {
		return nil, r.confirmFailureReason(ctx, db, boardID, squareIDs, userID)
	}

	return sqs, nil
}

// confirmFailureReason distinguishes a hold owned by someone else from a
// square that is not reserved at all, so the anomaly surfaced to operators
// names the actual desync.
func (r *SquareRepo) confirmFailureReason(
	ctx context.Context,
	db DB,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
	userID int64,
) error {
	var mismatched int64
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*)
		   FROM squares
		  WHERE board_id = $1
		    AND id = ANY($2)
		    AND status = 'reserved'
		    AND owner_id <> $3`,
		boardID, squareIDs, userID,
	).Scan(&mismatched); err != nil {
		return err
	}

	if mismatched > 0 {
		return repository.ErrOwnerMismatch
	}

	return repository.ErrNotReserved
}

func (r *SquareRepo) releaseCore(
	ctx context.Context,
	db DB,
	boardID uuid.UUID,
	squareIDs []uuid.UUID,
) ([]domain.Square, error) {
	if _, err := db.Exec(ctx,
		`UPDATE squares
		    SET status = 'available', owner_id = NULL,
		        reserved_at = NULL, reserved_until = NULL, purchased_at = NULL
		  WHERE board_id = $1
		    AND id = ANY($2)
		    AND status IN ('reserved', 'purchased')`,
		boardID, squareIDs,
	); err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx,
		`SELECT id, board_id, "row", col, price_cents, status,
		        owner_id, reserved_at, reserved_until, purchased_at
		   FROM squares
		  WHERE board_id = $1 AND id = ANY($2)
		  ORDER BY "row", col`,
		boardID, squareIDs,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanSquares(rows)
}

func scanSquares(rows pgx.Rows) ([]domain.Square, error) {
	var out []domain.Square

	for rows.Next() {
		var (
			sq      domain.Square
			status  string
			ownerID *int64
		)
		if err := rows.Scan(
			&sq.ID, &sq.BoardID, &sq.Row, &sq.Col, &sq.PriceCents, &status,
			&ownerID,
			&sq.Ownership.ReservedAt,
			&sq.Ownership.ReservedUntil,
			&sq.Ownership.PurchasedAt,
		); err != nil {
			return nil, err
		}

		sq.Ownership.Status = domain.SquareStatus(status)
		if ownerID != nil {
			sq.Ownership.OwnerID = *ownerID
		}

		out = append(out, sq)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
