package repository

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrSquaresUnavailable = errors.New("some squares unavailable")
	ErrNotReserved        = errors.New("square not in reserved state")
	ErrOwnerMismatch      = errors.New("square reserved by another user")
	ErrAlreadyAssigned    = errors.New("numbers already assigned")
	ErrIntentExists       = errors.New("payment intent already exists")
)
