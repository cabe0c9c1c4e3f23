package checkout

import "errors"

var (
	ErrMissingFields = errors.New("missing required fields")

	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrLedgerWrite means the seat was reserved but the ticket record could
	// not be written; the reservation is released before this is returned.
	ErrLedgerWrite = errors.New("failed to store ticket")
)
