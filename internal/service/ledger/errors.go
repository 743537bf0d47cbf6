package ledger

import "errors"

var (
	ErrAlreadyClaimed    = errors.New("some squares already claimed")
	ErrInvalidTransition = errors.New("squares not in a confirmable state")
	ErrOwnerMismatch     = errors.New("squares reserved by another user")
	ErrBoardNotFound     = errors.New("board not found")
	ErrNoSquaresSelected = errors.New("no squares selected")
	ErrRateLimited       = errors.New("rate limited")
)
