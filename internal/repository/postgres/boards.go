package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/repository"
)

type BoardRepo struct {
	pool  *pgxpool.Pool
	store *Store
	db    DB
}

func (r *BoardRepo) With(db DB) *BoardRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BoardRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateBoardWithSquares inserts the board and its full square grid in one
// transaction, so a board never exists with a partial grid.
//
// Returns:
//   - error: repository.ErrConflict if the board ID already exists.
func (r *BoardRepo) CreateBoardWithSquares(
	ctx context.Context,
	b *domain.Board,
	squares []domain.Square,
) error {
	const op = "postgres.BoardRepo.CreateBoardWithSquares"

	if r.db != nil {
		return wrapDBErr(op, r.createCore(ctx, r.db, b, squares))
	}

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		return r.createCore(ctx, tx, b, squares)
	})
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// GetBoard retrieves a board by ID.
//
// Returns:
//   - *domain.Board: the board when found.
//   - error: repository.ErrNotFound otherwise.
func (r *BoardRepo) GetBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	const op = "postgres.BoardRepo.GetBoard"

	db := r.handle()

	var b domain.Board
	err := db.QueryRow(ctx,
		`SELECT id, game_id, size, price_cents, home_team, away_team, status,
		        row_numbers, col_numbers,
		        q1_cents, q2_cents, q3_cents, final_cents, total_pot_cents,
		        created_at
		   FROM boards WHERE id = $1`,
		id,
	).Scan(
		&b.ID, &b.GameID, &b.Size, &b.PriceCents, &b.HomeTeam, &b.AwayTeam,
		&b.Status, &b.RowNumbers, &b.ColNumbers,
		&b.Payout.Q1Cents, &b.Payout.Q2Cents, &b.Payout.Q3Cents,
		&b.Payout.FinalCents, &b.Payout.TotalPotCents,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &b, nil
}

// AssignNumbers writes the row/column permutations and locks the board,
// guarded by a compare-and-swap on the numbers_assigned flag. The losing
// side of a concurrent race gets repository.ErrAlreadyAssigned and must
// treat it as a no-op, never reshuffle.
func (r *BoardRepo) AssignNumbers(
	ctx context.Context,
	boardID uuid.UUID,
	rowNumbers, colNumbers []int,
) error {
	const op = "postgres.BoardRepo.AssignNumbers"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE boards
		    SET row_numbers = $2, col_numbers = $3,
		        numbers_assigned = TRUE, status = 'locked'
		  WHERE id = $1 AND numbers_assigned = FALSE`,
		boardID, rowNumbers, colNumbers,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM boards WHERE id = $1)`, boardID,
		).Scan(&exists); err != nil {
			return wrapDBErr(op, err)
		}
		if !exists {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		return fmt.Errorf("%s:%w", op, repository.ErrAlreadyAssigned)
	}

	return nil
}

// UpdateStatus moves the board lifecycle forward only when the current
// status matches the expected one.
//
// Returns:
//   - error: repository.ErrConflict if the board is not in the expected state.
func (r *BoardRepo) UpdateStatus(
	ctx context.Context,
	boardID uuid.UUID,
	from, to domain.BoardStatus,
) error {
	const op = "postgres.BoardRepo.UpdateStatus"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE boards SET status = $3 WHERE id = $1 AND status = $2`,
		boardID, from, to,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

func (r *BoardRepo) createCore(
	ctx context.Context,
	db DB,
	b *domain.Board,
	squares []domain.Square,
) error {
	if _, err := db.Exec(ctx,
		`INSERT INTO boards(
		    id, game_id, size, price_cents, home_team, away_team, status,
		    q1_cents, q2_cents, q3_cents, final_cents, total_pot_cents,
		    numbers_assigned, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13)`,
		b.ID, b.GameID, b.Size, b.PriceCents, b.HomeTeam, b.AwayTeam, b.Status,
		b.Payout.Q1Cents, b.Payout.Q2Cents, b.Payout.Q3Cents,
		b.Payout.FinalCents, b.Payout.TotalPotCents,
		b.CreatedAt,
	); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, sq := range squares {
		batch.Queue(
			`INSERT INTO squares(id, board_id, "row", col, price_cents, status)
			 VALUES ($1, $2, $3, $4, $5, 'available')`,
			sq.ID, sq.BoardID, sq.Row, sq.Col, sq.PriceCents,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return nil
}
