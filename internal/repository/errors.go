package repository

import "errors"

var (
	// ErrValidation marks a required or invalid field caught before any
	// write reaches the database.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConcurrencyConflict marks a write whose version token no longer
	// matches the stored row.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrInsufficientQuantity marks a sale requesting more units than the
	// card has on hand.
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrReferentialIntegrity marks a delete blocked by dependent rows.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)
