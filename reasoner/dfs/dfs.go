// Package dfs implements depth-first search over the reasoner contracts.
// Actions are visited in the order the search config returns them.
package dfs

import (
	"context"

	"github.com/hupe1980/webreasoner/reasoner"
)

// Options configure an Algorithm.
type Options struct {
	// MaxDepth bounds the length of a trace.
	MaxDepth int
	// MaxTerminals stops the search after this many terminal traces. The
	// best of them is returned.
	MaxTerminals int
	// FastRewardThreshold, when set, prunes actions whose fast reward is
	// below it.
	FastRewardThreshold *float64
}

// Algorithm is a depth-first search.
type Algorithm[S, A, E any] struct {
	opts Options
}

// New creates a depth-first search.
func New[S, A, E any](optFns ...func(o *Options)) *Algorithm[S, A, E] {
	opts := Options{
		MaxDepth:     10,
		MaxTerminals: 1,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTerminals < 1 {
		opts.MaxTerminals = 1
	}
	return &Algorithm[S, A, E]{opts: opts}
}

type path[S, A any] struct {
	states  []S
	actions []A
	reward  float64
}

type run[S, A, E any] struct {
	opts      Options
	wm        reasoner.WorldModel[S, A, E]
	sc        reasoner.SearchConfig[S, A, E]
	terminals []path[S, A]
}

// Search implements reasoner.SearchAlgorithm.
func (d *Algorithm[S, A, E]) Search(ctx context.Context, wm reasoner.WorldModel[S, A, E], sc reasoner.SearchConfig[S, A, E]) (*reasoner.AlgorithmOutput[S, A], error) {
	root, err := wm.InitState(ctx)
	if err != nil {
		return nil, err
	}
	r := &run[S, A, E]{opts: d.opts, wm: wm, sc: sc}
	if err := r.visit(ctx, path[S, A]{states: []S{root}}); err != nil {
		return nil, err
	}
	if len(r.terminals) == 0 {
		return nil, reasoner.ErrNoTerminalState
	}

	best := r.terminals[0]
	for _, p := range r.terminals[1:] {
		if p.reward > best.reward {
			best = p
		}
	}
	return &reasoner.AlgorithmOutput[S, A]{
		TerminalState: best.states[len(best.states)-1],
		Trace:         reasoner.Trace[S, A]{States: best.states, Actions: best.actions},
	}, nil
}

func (r *run[S, A, E]) done() bool { return len(r.terminals) >= r.opts.MaxTerminals }

func (r *run[S, A, E]) visit(ctx context.Context, p path[S, A]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state := p.states[len(p.states)-1]
	if r.wm.IsTerminal(state) {
		r.terminals = append(r.terminals, p)
		return nil
	}
	if len(p.actions) >= r.opts.MaxDepth {
		return nil
	}

	actions, err := r.sc.Actions(ctx, state)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}
	for _, a := range actions {
		if r.done() {
			return nil
		}
		if r.opts.FastRewardThreshold != nil {
			fast, _, err := r.sc.FastReward(ctx, state, a)
			if err != nil || fast < *r.opts.FastRewardThreshold {
				continue
			}
		}
		next, aux, err := r.wm.Step(ctx, state, a)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		reward, _, err := r.sc.Reward(ctx, state, a, aux)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		child := path[S, A]{
			states:  append(append([]S(nil), p.states...), next),
			actions: append(append([]A(nil), p.actions...), a),
			reward:  p.reward + reward,
		}
		if err := r.visit(ctx, child); err != nil {
			return err
		}
	}
	return nil
}
