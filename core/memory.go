package core

import "context"

// Record is one memory entry: field name to value.
type Record map[string]string

// Clone returns a copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Memory is the key/value record accumulated across steps with an explicit
// stage/commit lifecycle. The orchestrator is its only writer: it stages the
// step's fields between Act and commit, then commits with Step. Cognitive
// modules only read it.
type Memory interface {
	// Keys returns the configured keys every committed record must contain.
	Keys() []string
	// Update stages fields into the current step. A configured key absent from
	// fields yields a *MissingKeyError and leaves the staging area untouched.
	Update(ctx context.Context, fields map[string]string) error
	// Step commits the staged record. It fails with *MissingKeyError when a
	// configured key was never staged.
	Step() error
	// CurrentStep returns a copy of the staged record (the last committed one
	// after Step).
	CurrentStep() Record
	// History returns the committed records in step order.
	History() []Record
	// Render formats the history for prompts.
	Render() string
	// Reset clears history and staging.
	Reset()
}
