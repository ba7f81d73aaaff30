package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/webreasoner/core"
)

// ScriptedEnvironment is a core.Environment that replays a fixed sequence
// of observations. Reset returns Observations[0], each Step the next entry
// (the last one repeats once the script is exhausted).
type ScriptedEnvironment struct {
	Observations []core.RawObservation
	// StepErr is returned by Step once FailAt steps have succeeded.
	StepErr error
	FailAt  int
	// Delay blocks every Step until it elapses or ctx is done.
	Delay time.Duration

	mu      sync.Mutex
	pos     int
	goal    string
	actions []string
}

// Reset implements core.Environment.
func (e *ScriptedEnvironment) Reset(_ context.Context, goal string) (core.RawObservation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = 0
	e.goal = goal
	e.actions = nil
	return e.current(), nil
}

// Step implements core.Environment.
func (e *ScriptedEnvironment) Step(ctx context.Context, action string) (core.RawObservation, error) {
	if e.Delay > 0 {
		select {
		case <-time.After(e.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = append(e.actions, action)
	if e.StepErr != nil && len(e.actions) > e.FailAt {
		return nil, e.StepErr
	}
	if e.pos < len(e.Observations)-1 {
		e.pos++
	}
	return e.current(), nil
}

// Goal returns the goal passed to the last Reset.
func (e *ScriptedEnvironment) Goal() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.goal
}

// Actions returns the actions received since the last Reset.
func (e *ScriptedEnvironment) Actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.actions...)
}

func (e *ScriptedEnvironment) current() core.RawObservation {
	if len(e.Observations) == 0 {
		return core.RawObservation{}
	}
	out := make(core.RawObservation, len(e.Observations[e.pos]))
	for k, v := range e.Observations[e.pos] {
		out[k] = v
	}
	return out
}
