package settlement

import "errors"

var (
	ErrIntentNotFound = errors.New("payment intent not found")
	ErrLedgerDesync   = errors.New("squares disagree with payment record")
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrBadPayload     = errors.New("malformed provider payload")
)
