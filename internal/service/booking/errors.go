package booking

import "errors"

var (
	// ErrSoldOut means the conditional increment matched nothing: admitting
	// one more attendee of that session would break a capacity invariant.
	ErrSoldOut = errors.New("tickets sold out or session unavailable")

	ErrInvalidSession = errors.New("invalid session type")
)
