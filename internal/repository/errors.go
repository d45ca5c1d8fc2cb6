package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAccount is returned when a second account row would
	// violate the one-account-per-user constraint
	ErrDuplicateAccount = errors.New("amazon account for this user already exists")
)
