package reasoner

import (
	"context"
	"errors"
)

// ErrNoTerminalState is returned by a SearchAlgorithm that could not reach
// any terminal state.
var ErrNoTerminalState = errors.New("search reached no terminal state")

// ExampleOptions carry optional values bound together with an example.
type ExampleOptions struct {
	// Prompt overrides the prompt of the planning episode when non-nil.
	Prompt *string
}

// ExampleOption mutates ExampleOptions.
type ExampleOption func(o *ExampleOptions)

// WithPrompt binds a prompt override.
func WithPrompt(prompt string) ExampleOption {
	return func(o *ExampleOptions) { o.Prompt = &prompt }
}

// WorldModel simulates the environment for planning.
type WorldModel[S, A, E any] interface {
	// InitState returns the root state of a planning episode.
	InitState(ctx context.Context) (S, error)
	// Step returns the successor of state under action plus optional
	// auxiliary data. It must not mutate state.
	Step(ctx context.Context, state S, action A) (S, map[string]any, error)
	// IsTerminal decides episode termination.
	IsTerminal(state S) bool
	// UpdateExample binds the planning target. It must be called before
	// InitState or Step are meaningful.
	UpdateExample(example E, opts ...ExampleOption)
}

// SearchConfig describes the search space and its rewards.
type SearchConfig[S, A, E any] interface {
	// Actions enumerates candidate actions at state. Order is priority.
	Actions(ctx context.Context, state S) ([]A, error)
	// FastReward is a cheap heuristic used for pruning.
	FastReward(ctx context.Context, state S, action A) (float64, map[string]any, error)
	// Reward scores a transition. aux is the auxiliary data returned by
	// WorldModel.Step.
	Reward(ctx context.Context, state S, action A, aux map[string]any) (float64, map[string]any, error)
	UpdateExample(example E, opts ...ExampleOption)
}

// Trace is one decision path: States has one more element than Actions.
type Trace[S, A any] struct {
	States  []S
	Actions []A
}

// AlgorithmOutput is the result every SearchAlgorithm returns.
type AlgorithmOutput[S, A any] struct {
	TerminalState S
	Trace         Trace[S, A]
}

// SearchAlgorithm runs a search strategy. When no terminal state is reachable
// it returns ErrNoTerminalState and a nil output.
type SearchAlgorithm[S, A, E any] interface {
	Search(ctx context.Context, wm WorldModel[S, A, E], sc SearchConfig[S, A, E]) (*AlgorithmOutput[S, A], error)
}

// SearchFunc adapts a function to SearchAlgorithm.
type SearchFunc[S, A, E any] func(ctx context.Context, wm WorldModel[S, A, E], sc SearchConfig[S, A, E]) (*AlgorithmOutput[S, A], error)

// Search implements SearchAlgorithm.
func (f SearchFunc[S, A, E]) Search(ctx context.Context, wm WorldModel[S, A, E], sc SearchConfig[S, A, E]) (*AlgorithmOutput[S, A], error) {
	return f(ctx, wm, sc)
}

// Reasoner composes a world model, a search config and a search algorithm.
type Reasoner[S, A, E any] struct {
	worldModel   WorldModel[S, A, E]
	searchConfig SearchConfig[S, A, E]
	algorithm    SearchAlgorithm[S, A, E]
}

// New creates a Reasoner.
func New[S, A, E any](wm WorldModel[S, A, E], sc SearchConfig[S, A, E], algo SearchAlgorithm[S, A, E]) *Reasoner[S, A, E] {
	return &Reasoner[S, A, E]{worldModel: wm, searchConfig: sc, algorithm: algo}
}

// Run binds example into the world model and the search config, then runs the
// algorithm and returns its output as is.
func (r *Reasoner[S, A, E]) Run(ctx context.Context, example E, opts ...ExampleOption) (*AlgorithmOutput[S, A], error) {
	r.worldModel.UpdateExample(example, opts...)
	r.searchConfig.UpdateExample(example, opts...)
	return r.algorithm.Search(ctx, r.worldModel, r.searchConfig)
}
