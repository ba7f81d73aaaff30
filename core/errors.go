package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedEnvironment is returned at construction time when the
	// configured environment kind has no observation/action space pair.
	ErrUnsupportedEnvironment = errors.New("unsupported environment")

	// ErrUnsupportedMemory is returned at construction time for an unknown memory kind.
	ErrUnsupportedMemory = errors.New("unsupported memory type")

	// ErrUnsupportedPlanner is returned at construction time for an unknown planner kind.
	ErrUnsupportedPlanner = errors.New("unsupported planner type")

	// ErrEmptyModuleOutput marks a cognitive module that produced no usable value.
	ErrEmptyModuleOutput = errors.New("module produced empty output")
)

// MissingKeyError reports a configured memory key that was absent when
// staging or committing a memory record.
type MissingKeyError struct {
	Key string
}

// Error implements error.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("memory key %q missing", e.Key)
}
