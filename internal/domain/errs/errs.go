// Package errs defines the sentinel errors shared by the domain services.
// Handlers translate them to HTTP status codes at the boundary.
package errs

import "errors"

var (
	// ErrNotFound marks an entity that is absent or not in the status the
	// requested transition needs. The two cases are deliberately conflated
	// for pending-state actions.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation surfaced from the store.
	ErrConflict = errors.New("conflict")

	// ErrValidation marks malformed or missing input that survived the
	// transport layer.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks a credential or permission failure.
	ErrUnauthorized = errors.New("unauthorized")
)
