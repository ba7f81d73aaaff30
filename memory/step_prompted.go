package memory

import (
	"context"
	"strings"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/prompt"
)

// KeyMemoryUpdate is the field holding the LLM written step summary.
const KeyMemoryUpdate = "memory_update"

// StepPrompted is a core.Memory whose records carry an LLM summary of each
// step in addition to the configured keys.
type StepPrompted struct {
	*StepKeyValue
	identity *core.Identity
	parser   *model.Parser
	tmpl     *prompt.Template
	inputs   []string
	logger   logging.Logger
}

// NewStepPrompted creates a prompted memory. keys are the step fields that
// must be present on Update; the summary is stored under KeyMemoryUpdate.
// The parser must extract KeyMemoryUpdate.
func NewStepPrompted(identity *core.Identity, parser *model.Parser, tmpl *prompt.Template, keys []string, logger logging.Logger) *StepPrompted {
	all := append(append([]string(nil), keys...), KeyMemoryUpdate)
	return &StepPrompted{
		StepKeyValue: NewStepKeyValue(all),
		identity:     identity,
		parser:       parser,
		tmpl:         tmpl,
		inputs:       append([]string(nil), keys...),
		logger:       logging.Ensure(logger),
	}
}

// Update implements core.Memory. A failed or empty summary is reported as a
// missing memory_update key.
func (m *StepPrompted) Update(ctx context.Context, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := selectKeys(m.inputs, fields); err != nil {
		return err
	}

	step := make(map[string]string, len(fields))
	for k, v := range fields {
		step[k] = v
	}
	data := prompt.Data{Memory: m.Render(), Step: step}
	if m.identity != nil {
		data.Identity = m.identity.Render()
	}
	system, user, err := m.tmpl.Render(data)
	if err != nil {
		return err
	}
	out, err := m.parser.Call(ctx, system, user)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.logger.Warn("memory update failed", "error", err.Error())
		return &core.MissingKeyError{Key: KeyMemoryUpdate}
	}
	summary := strings.TrimSpace(out[KeyMemoryUpdate])
	if summary == "" {
		return &core.MissingKeyError{Key: KeyMemoryUpdate}
	}
	step[KeyMemoryUpdate] = summary

	rec, err := selectKeys(m.keys, step)
	if err != nil {
		return err
	}
	m.stage(rec)
	return nil
}

// Cost returns the spend of the summary parser.
func (m *StepPrompted) Cost() float64 { return m.parser.Cost() }
