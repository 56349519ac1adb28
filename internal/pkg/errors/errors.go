package errors

import "errors"

// Common application errors
var (
	// ErrNotFound is used when a record or resource does not exist (or has expired).
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is used for authentication failures (bad token, bad credentials).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is used when the user lacks the rights for an action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is used for invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken is used when a token (session, registration link) has expired.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict is used for state conflicts (duplicate email, NIF already in use).
	ErrConflict = errors.New("resource state conflict")

	// ErrStorage is used for local storage faults (anonymous result file I/O).
	ErrStorage = errors.New("storage failure")
)
