package boards

import "errors"

var (
	ErrBoardNotFound      = errors.New("board not found")
	ErrBoardConflict      = errors.New("conflict creating board")
	ErrInvalidSize        = errors.New("board size must be 5 or 10")
	ErrConfigInvalid      = errors.New("invalid payout config")
	ErrBoardNotFull       = errors.New("board is not fully purchased")
	ErrBoardNotLocked     = errors.New("board is not locked")
	ErrNumbersNotAssigned = errors.New("numbers not assigned yet")
)
