package ledger

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrInvalidID marks an id that does not even have the issued shape;
	// distinct from ErrTicketNotFound so callers can answer 400 vs 404.
	ErrInvalidID = errors.New("invalid ticket id")

	ErrDuplicateTicket = errors.New("duplicate ticket id")
)
