package reasoner

import (
	"context"
	"sync"
)

// Base stores the bound example and prompt. Embed it to implement
// UpdateExample on world models and search configs.
type Base[E any] struct {
	mu      sync.RWMutex
	example E
	prompt  string
}

// UpdateExample binds example. The prompt is only replaced when given.
func (b *Base[E]) UpdateExample(example E, opts ...ExampleOption) {
	o := ExampleOptions{}
	for _, fn := range opts {
		fn(&o)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.example = example
	if o.Prompt != nil {
		b.prompt = *o.Prompt
	}
}

// Example returns the bound example.
func (b *Base[E]) Example() E {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.example
}

// Prompt returns the bound prompt override, if any.
func (b *Base[E]) Prompt() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prompt
}

// NeutralFastReward provides a FastReward that carries no pruning information.
type NeutralFastReward[S, A any] struct{}

// FastReward returns a zero reward with empty diagnostics.
func (NeutralFastReward[S, A]) FastReward(_ context.Context, _ S, _ A) (float64, map[string]any, error) {
	return 0, map[string]any{}, nil
}
