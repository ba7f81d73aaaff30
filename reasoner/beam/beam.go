// Package beam implements a width and depth bounded beam search over the
// reasoner contracts. Candidate expansions of one frontier are evaluated
// concurrently.
package beam

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/webreasoner/reasoner"
)

// Options configure an Algorithm.
type Options struct {
	// Width is the number of nodes kept per depth.
	Width int
	// MaxDepth bounds the number of expansions when the world model never
	// reports a terminal state.
	MaxDepth int
	// Concurrency limits the number of candidates evaluated in parallel.
	Concurrency int
	// FastRewardThreshold, when set, prunes candidates whose fast reward is
	// below it before the full reward is computed.
	FastRewardThreshold *float64
}

// Algorithm is a beam search.
type Algorithm[S, A, E any] struct {
	opts Options
}

// New creates a beam search.
func New[S, A, E any](optFns ...func(o *Options)) *Algorithm[S, A, E] {
	opts := Options{
		Width:       3,
		MaxDepth:    10,
		Concurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Width < 1 {
		opts.Width = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Algorithm[S, A, E]{opts: opts}
}

type node[S, A any] struct {
	state   S
	states  []S
	actions []A
	reward  float64
}

type candidate[S, A any] struct {
	parent int
	action A
	child  node[S, A]
	ok     bool
}

// Search implements reasoner.SearchAlgorithm.
func (b *Algorithm[S, A, E]) Search(ctx context.Context, wm reasoner.WorldModel[S, A, E], sc reasoner.SearchConfig[S, A, E]) (*reasoner.AlgorithmOutput[S, A], error) {
	root, err := wm.InitState(ctx)
	if err != nil {
		return nil, err
	}
	if wm.IsTerminal(root) {
		return output(node[S, A]{state: root, states: []S{root}}), nil
	}

	beam := []node[S, A]{{state: root, states: []S{root}}}
	var terminals []node[S, A]

	for depth := 0; depth < b.opts.MaxDepth && len(beam) > 0; depth++ {
		candidates, err := b.candidates(ctx, sc, beam)
		if err != nil {
			return nil, err
		}
		if err := b.evaluate(ctx, wm, sc, beam, candidates); err != nil {
			return nil, err
		}

		ranked := make([]node[S, A], 0, len(candidates))
		for _, c := range candidates {
			if c.ok {
				ranked = append(ranked, c.child)
			}
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].reward > ranked[j].reward })
		if len(ranked) > b.opts.Width {
			ranked = ranked[:b.opts.Width]
		}

		beam = beam[:0:0]
		for _, n := range ranked {
			if wm.IsTerminal(n.state) {
				terminals = append(terminals, n)
				continue
			}
			beam = append(beam, n)
		}
	}

	if len(terminals) == 0 {
		return nil, reasoner.ErrNoTerminalState
	}
	best := terminals[0]
	for _, t := range terminals[1:] {
		if t.reward > best.reward {
			best = t
		}
	}
	return output(best), nil
}

// candidates lists every (node, action) pair of the frontier in priority order.
// A node whose actions cannot be listed is dropped; only cancellation aborts
// the search.
func (b *Algorithm[S, A, E]) candidates(ctx context.Context, sc reasoner.SearchConfig[S, A, E], beam []node[S, A]) ([]candidate[S, A], error) {
	actions := make([][]A, len(beam))
	g := new(errgroup.Group)
	g.SetLimit(b.opts.Concurrency)
	for i := range beam {
		g.Go(func() error {
			acts, err := sc.Actions(ctx, beam[i].state)
			if err != nil {
				return ctx.Err()
			}
			actions[i] = acts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []candidate[S, A]
	for i, acts := range actions {
		for _, a := range acts {
			out = append(out, candidate[S, A]{parent: i, action: a})
		}
	}
	return out, nil
}

// evaluate expands every candidate concurrently. A candidate whose transition
// or reward fails is dropped; only cancellation aborts the search.
func (b *Algorithm[S, A, E]) evaluate(ctx context.Context, wm reasoner.WorldModel[S, A, E], sc reasoner.SearchConfig[S, A, E], beam []node[S, A], candidates []candidate[S, A]) error {
	g := new(errgroup.Group)
	g.SetLimit(b.opts.Concurrency)
	for i := range candidates {
		c := &candidates[i]
		parent := beam[c.parent]
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if b.opts.FastRewardThreshold != nil {
				fast, _, err := sc.FastReward(ctx, parent.state, c.action)
				if err != nil || fast < *b.opts.FastRewardThreshold {
					return nil
				}
			}
			next, aux, err := wm.Step(ctx, parent.state, c.action)
			if err != nil {
				return nil
			}
			r, _, err := sc.Reward(ctx, parent.state, c.action, aux)
			if err != nil {
				return nil
			}
			c.child = node[S, A]{
				state:   next,
				states:  append(append([]S(nil), parent.states...), next),
				actions: append(append([]A(nil), parent.actions...), c.action),
				reward:  parent.reward + r,
			}
			c.ok = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func output[S, A any](n node[S, A]) *reasoner.AlgorithmOutput[S, A] {
	return &reasoner.AlgorithmOutput[S, A]{
		TerminalState: n.state,
		Trace:         reasoner.Trace[S, A]{States: n.states, Actions: n.actions},
	}
}
