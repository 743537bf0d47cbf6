package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alsania-dev/gridplay-sub001/internal/repository"
)

func TestWrapDBErr(t *testing.T) {
	t.Run("unique violation maps to ErrConflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
		err := wrapDBErr("postgres.test", fmt.Errorf("insert: %w", pgErr))

		if !errors.Is(err, repository.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("no rows maps to ErrNotFound", func(t *testing.T) {
		err := wrapDBErr("postgres.test", pgx.ErrNoRows)

		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("other errors pass through wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := wrapDBErr("postgres.test", cause)

		if !errors.Is(err, cause) {
			t.Errorf("error = %v, want wrapped %v", err, cause)
		}
		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
			t.Errorf("error = %v mapped to a sentinel unexpectedly", err)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if err := wrapDBErr("postgres.test", nil); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable = %v, want %v", got, tt.want)
			}
		})
	}
}
