package artifact

import "errors"

var (
	// ErrNotFound is returned when an artifact for the given job / id pair
	// does not exist in the underlying store.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidName is returned for job names or ids that cannot be mapped
	// to a storage key.
	ErrInvalidName = errors.New("invalid artifact name")
)
