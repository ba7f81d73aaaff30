package core

import "context"

// Environment is the browsing environment driven by the episode runner.
// Both methods block; implementations must honour ctx cancellation so that
// the runner can enforce a per-step wall-clock timeout.
type Environment interface {
	Reset(ctx context.Context, goal string) (RawObservation, error)
	Step(ctx context.Context, action string) (RawObservation, error)
}
