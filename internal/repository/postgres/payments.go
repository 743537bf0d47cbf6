package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/repository"
)

type IntentRepo struct {
	pool  *pgxpool.Pool
	store *Store
	db    DB
}

func (r *IntentRepo) With(db DB) *IntentRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *IntentRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetIntent retrieves the settlement record for one external transaction.
//
// Returns:
//   - *domain.PaymentIntent: the record when found.
//   - error: repository.ErrNotFound otherwise.
func (r *IntentRepo) GetIntent(
	ctx context.Context,
	provider domain.PaymentProvider,
	externalID string,
) (*domain.PaymentIntent, error) {
	const op = "postgres.IntentRepo.GetIntent"

	db := r.handle()

	in, err := r.getCore(ctx, db, provider, externalID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return in, nil
}

// InsertIntent records a new pending transaction. The (provider, external_id)
// pair is unique, so a duplicate insert from a replayed webhook surfaces as
// repository.ErrIntentExists.
func (r *IntentRepo) InsertIntent(ctx context.Context, in *domain.PaymentIntent) error {
	const op = "postgres.IntentRepo.InsertIntent"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO payment_intents(
		    provider, external_id, board_id, square_ids, user_id,
		    amount_cents, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		in.Provider, in.ExternalID, in.BoardID, in.SquareIDs, in.UserID,
		in.AmountCents, in.Status, in.CreatedAt,
	)
	if err != nil {
		wrapped := wrapDBErr(op, err)
		if isConflict(wrapped) {
			return fmt.Errorf("%s:%w", op, repository.ErrIntentExists)
		}
		return wrapped
	}

	return nil
}

// CompleteIntent settles the happy path in one transaction: the held squares
// move to purchased for the recorded owner and the intent moves
// pending -> completed. If the squares are not all held by the expected user
// the transaction rolls back and the desync error surfaces unchanged.
//
// Returns:
//   - *domain.PaymentIntent: the record after completion.
//   - error: repository.ErrConflict if the intent is not pending.
//   - error: repository.ErrOwnerMismatch / ErrNotReserved on ledger desync.
func (r *IntentRepo) CompleteIntent(
	ctx context.Context,
	provider domain.PaymentProvider,
	externalID string,
	at time.Time,
) (*domain.PaymentIntent, error) {
	const op = "postgres.IntentRepo.CompleteIntent"

	var out *domain.PaymentIntent
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		in, err := r.getCore(ctx, tx, provider, externalID)
		if err != nil {
			return err
		}

		if in.Status != domain.IntentPending {
			return repository.ErrConflict
		}

		if _, err := r.store.Squares().With(tx).ConfirmSquares(
			ctx, in.BoardID, in.SquareIDs, in.UserID, at,
		); err != nil {
			return err
		}

		if err := r.casStatus(ctx, tx, provider, externalID,
			domain.IntentPending, domain.IntentCompleted, at); err != nil {
			return err
		}

		in.Status = domain.IntentCompleted
		in.UpdatedAt = at
		out = in

		return nil
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// RefundIntent releases the intent's squares and marks the record refunded,
// from either pending or completed. Refunds win over a completed sale.
//
// Returns:
//   - *domain.PaymentIntent: the record after the rollback.
//   - error: repository.ErrConflict if the intent is already terminal.
func (r *IntentRepo) RefundIntent(
	ctx context.Context,
	provider domain.PaymentProvider,
	externalID string,
	at time.Time,
) (*domain.PaymentIntent, error) {
	const op = "postgres.IntentRepo.RefundIntent"

	var out *domain.PaymentIntent
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		in, err := r.getCore(ctx, tx, provider, externalID)
		if err != nil {
			return err
		}

		if in.Status.Terminal() {
			return repository.ErrConflict
		}

		if _, err := r.store.Squares().With(tx).ReleaseSquares(
			ctx, in.BoardID, in.SquareIDs,
		); err != nil {
			return err
		}

		if err := r.casStatus(ctx, tx, provider, externalID,
			in.Status, domain.IntentRefunded, at); err != nil {
			return err
		}

		in.Status = domain.IntentRefunded
		in.UpdatedAt = at
		out = in

		return nil
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// VoidIntent releases the squares and marks the record voided. Unlike a
// refund this only applies to a pending intent; voiding a completed sale is
// not a transition this store performs.
//
// Returns:
//   - *domain.PaymentIntent: the record after voiding.
//   - error: repository.ErrConflict if the intent is not pending.
func (r *IntentRepo) VoidIntent(
	ctx context.Context,
	provider domain.PaymentProvider,
	externalID string,
	at time.Time,
) (*domain.PaymentIntent, error) {
	const op = "postgres.IntentRepo.VoidIntent"

	var out *domain.PaymentIntent
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		in, err := r.getCore(ctx, tx, provider, externalID)
		if err != nil {
			return err
		}

		if in.Status != domain.IntentPending {
			return repository.ErrConflict
		}

		if _, err := r.store.Squares().With(tx).ReleaseSquares(
			ctx, in.BoardID, in.SquareIDs,
		); err != nil {
			return err
		}

		if err := r.casStatus(ctx, tx, provider, externalID,
			domain.IntentPending, domain.IntentVoided, at); err != nil {
			return err
		}

		in.Status = domain.IntentVoided
		in.UpdatedAt = at
		out = in

		return nil
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *IntentRepo) getCore(
	ctx context.Context,
	db DB,
	provider domain.PaymentProvider,
	externalID string,
) (*domain.PaymentIntent, error) {
	var in domain.PaymentIntent
	err := db.QueryRow(ctx,
		`SELECT provider, external_id, board_id, square_ids, user_id,
		        amount_cents, status, created_at, updated_at
		   FROM payment_intents
		  WHERE provider = $1 AND external_id = $2`,
		provider, externalID,
	).Scan(
		&in.Provider, &in.ExternalID, &in.BoardID, &in.SquareIDs, &in.UserID,
		&in.AmountCents, &in.Status, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &in, nil
}

func (r *IntentRepo) casStatus(
	ctx context.Context,
	db DB,
	provider domain.PaymentProvider,
	externalID string,
	from, to domain.IntentStatus,
	at time.Time,
) error {
	tag, err := db.Exec(ctx,
		`UPDATE payment_intents
		    SET status = $4, updated_at = $5
		  WHERE provider = $1 AND external_id = $2 AND status = $3`,
		provider, externalID, from, to, at,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}

	return nil
}
