package services

import "errors"

// Error taxonomy surfaced to the transport layer. Handlers match these with
// errors.Is and map each kind to a fixed status code.
var (
	// ErrNotFound means a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint was violated.
	ErrConflict = errors.New("already exists")
	// ErrAlreadyPaired means the user already belongs to a pair.
	ErrAlreadyPaired = errors.New("user is already in a pair")
	// ErrForbidden means the acting user is not a member of the pair.
	ErrForbidden = errors.New("user is not a member of this pair")
	// ErrInvalidOperation means the request is an illegal state transition or
	// fails validation.
	ErrInvalidOperation = errors.New("invalid operation")
)
