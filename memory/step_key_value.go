package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/webreasoner/core"
)

// StepKeyValue is a core.Memory that records the configured keys of every
// step. Safe for concurrent readers.
type StepKeyValue struct {
	mu      sync.RWMutex
	keys    []string
	history []core.Record
	staged  core.Record
	last    core.Record
}

// NewStepKeyValue creates a memory recording the given keys per step.
func NewStepKeyValue(keys []string) *StepKeyValue {
	return &StepKeyValue{keys: append([]string(nil), keys...)}
}

// Keys implements core.Memory.
func (m *StepKeyValue) Keys() []string { return append([]string(nil), m.keys...) }

// Update implements core.Memory. Only configured keys are staged; a missing
// or empty configured key leaves the staging area untouched.
func (m *StepKeyValue) Update(ctx context.Context, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := selectKeys(m.keys, fields)
	if err != nil {
		return err
	}
	m.stage(rec)
	return nil
}

func (m *StepKeyValue) stage(rec core.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = rec
}

// Step implements core.Memory.
func (m *StepKeyValue) Step() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if _, ok := m.staged[k]; !ok {
			return &core.MissingKeyError{Key: k}
		}
	}
	m.history = append(m.history, m.staged)
	m.last = m.staged
	m.staged = nil
	return nil
}

// CurrentStep implements core.Memory.
func (m *StepKeyValue) CurrentStep() core.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.staged != nil {
		return m.staged.Clone()
	}
	return m.last.Clone()
}

// History implements core.Memory.
func (m *StepKeyValue) History() []core.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Record, len(m.history))
	for i, r := range m.history {
		out[i] = r.Clone()
	}
	return out
}

// Render implements core.Memory.
func (m *StepKeyValue) Render() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return render(m.keys, m.history)
}

// Reset implements core.Memory.
func (m *StepKeyValue) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	m.staged = nil
	m.last = nil
}

func selectKeys(keys []string, fields map[string]string) (core.Record, error) {
	rec := make(core.Record, len(keys))
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || strings.TrimSpace(v) == "" {
			return nil, &core.MissingKeyError{Key: k}
		}
		rec[k] = v
	}
	return rec, nil
}

func render(keys []string, history []core.Record) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for i, rec := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## Step %d", i+1)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n%s: %s", k, rec[k])
		}
	}
	return b.String()
}
