package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrNoCapacity is the "no document matched" outcome of the conditional
	// increment. It is a normal result under contention, not a fault.
	ErrNoCapacity = errors.New("no capacity")
)
