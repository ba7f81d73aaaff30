package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/webreasoner/cognitive"
	"github.com/hupe1980/webreasoner/core"
)

// Counter is an embeddable, concurrency safe call counter.
type Counter struct {
	mu    sync.Mutex
	calls int
}

func (c *Counter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

// Calls returns how often the stub was invoked.
func (c *Counter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Spend is an embeddable fixed cost reporter.
type Spend struct {
	mu    sync.Mutex
	value float64
}

// SetCost sets the reported cost.
func (s *Spend) SetCost(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

// Cost implements core.CostReporter.
func (s *Spend) Cost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// StubEncoder returns a fixed state.
type StubEncoder struct {
	Counter
	Spend
	State string
	Err   error
}

// Encode implements cognitive.Encoder.
func (s *StubEncoder) Encode(context.Context, string, core.Memory) (cognitive.EncoderOutput, error) {
	s.inc()
	return cognitive.EncoderOutput{State: s.State}, s.Err
}

// StubPolicy returns Plan from Propose and Samples from Sample.
type StubPolicy struct {
	Counter
	Spend
	Plan    string
	Samples []string
	Err     error
}

// Propose implements cognitive.Policy.
func (s *StubPolicy) Propose(context.Context, string, core.Memory) (cognitive.PolicyOutput, error) {
	s.inc()
	return cognitive.PolicyOutput{Plan: s.Plan}, s.Err
}

// Sample implements cognitive.Policy. Without Samples it returns Plan n times.
func (s *StubPolicy) Sample(_ context.Context, _ string, _ core.Memory, n int) ([]cognitive.PolicyOutput, error) {
	s.inc()
	if s.Err != nil {
		return nil, s.Err
	}
	plans := s.Samples
	if len(plans) == 0 {
		for i := 0; i < n; i++ {
			plans = append(plans, s.Plan)
		}
	}
	out := make([]cognitive.PolicyOutput, 0, len(plans))
	for _, p := range plans {
		out = append(out, cognitive.PolicyOutput{Plan: p})
	}
	return out, nil
}

// StubWorldModel predicts Predict(plan) or "<state> -> <plan>" by default.
type StubWorldModel struct {
	Counter
	Spend
	Transition func(state, plan string) string
}

// Predict implements cognitive.WorldModel.
func (s *StubWorldModel) Predict(_ context.Context, state string, _ core.Memory, plan string) (cognitive.WorldModelOutput, error) {
	s.inc()
	if s.Transition != nil {
		return cognitive.WorldModelOutput{NextState: s.Transition(state, plan)}, nil
	}
	return cognitive.WorldModelOutput{NextState: state + " -> " + plan}, nil
}

// StubCritic evaluates states with Judge, or reports on track by default.
type StubCritic struct {
	Counter
	Spend
	Judge func(state string) cognitive.CriticOutput
}

// Evaluate implements cognitive.Critic.
func (s *StubCritic) Evaluate(_ context.Context, state string, _ core.Memory) (cognitive.CriticOutput, error) {
	s.inc()
	return s.judge(state), nil
}

// Sample implements cognitive.Critic.
func (s *StubCritic) Sample(_ context.Context, state string, _ core.Memory, n int) ([]cognitive.CriticOutput, error) {
	s.inc()
	out := make([]cognitive.CriticOutput, n)
	for i := range out {
		out[i] = s.judge(state)
	}
	return out, nil
}

func (s *StubCritic) judge(state string) cognitive.CriticOutput {
	if s.Judge != nil {
		return s.Judge(state)
	}
	return cognitive.CriticOutput{Status: "in_progress", OnTrack: true}
}

// StubActor returns a fixed action.
type StubActor struct {
	Counter
	Spend
	Action string
	Err    error
}

// Act implements cognitive.Actor.
func (s *StubActor) Act(context.Context, string, string, core.Memory, string) (cognitive.ActorOutput, error) {
	s.inc()
	return cognitive.ActorOutput{Action: s.Action}, s.Err
}

// CountingMemory wraps a core.Memory and counts Update and Step calls.
type CountingMemory struct {
	core.Memory
	mu      sync.Mutex
	updates int
	steps   int
}

// NewCountingMemory wraps m.
func NewCountingMemory(m core.Memory) *CountingMemory { return &CountingMemory{Memory: m} }

// Update implements core.Memory.
func (c *CountingMemory) Update(ctx context.Context, fields map[string]string) error {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.Memory.Update(ctx, fields)
}

// Step implements core.Memory.
func (c *CountingMemory) Step() error {
	c.mu.Lock()
	c.steps++
	c.mu.Unlock()
	return c.Memory.Step()
}

// Updates returns the number of Update calls.
func (c *CountingMemory) Updates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

// Steps returns the number of Step calls.
func (c *CountingMemory) Steps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps
}
