package common

import "errors"

// Sentinel errors for the request lifecycle. Services return these wrapped
// with fmt.Errorf("...: %w", ...); handlers map them to HTTP statuses.
var (
	// ErrDuplicateRequest means a non-rejected request already exists for
	// the same (tenant, property, room) tuple.
	ErrDuplicateRequest = errors.New("an active request already exists for this property")

	// ErrInvalidState means a status transition was attempted on a request
	// that is not in the required state (e.g. accepting a rejected request,
	// or losing a concurrent-accept race).
	ErrInvalidState = errors.New("request is not in a state that allows this operation")

	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller does not own the entity it is acting on.
	ErrForbidden = errors.New("caller does not own this resource")

	// ErrInvalidInput means the request payload failed domain validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited means the caller sent too many requests in the window.
	ErrRateLimited = errors.New("rate limit exceeded")
)
