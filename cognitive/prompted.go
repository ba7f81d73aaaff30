package cognitive

import (
	"context"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/prompt"
)

// module is the shared plumbing of every prompted role.
type module struct {
	identity *core.Identity
	parser   *model.Parser
	tmpl     *prompt.Template
}

func (m module) render(data prompt.Data) (string, string, error) {
	if m.identity != nil {
		data.Identity = m.identity.Render()
	}
	return m.tmpl.Render(data)
}

func (m module) call(ctx context.Context, data prompt.Data) (map[string]string, error) {
	system, user, err := m.render(data)
	if err != nil {
		return nil, err
	}
	return m.parser.Call(ctx, system, user)
}

func (m module) sample(ctx context.Context, data prompt.Data, n int) ([]map[string]string, error) {
	system, user, err := m.render(data)
	if err != nil {
		return nil, err
	}
	return m.parser.Sample(ctx, system, user, n)
}

// Cost returns the accumulated spend of the module's parser.
func (m module) Cost() float64 { return m.parser.Cost() }

// PromptedEncoder is an LLM-backed Encoder.
type PromptedEncoder struct{ module }

// NewPromptedEncoder creates an Encoder. The parser must extract KeyState.
func NewPromptedEncoder(identity *core.Identity, parser *model.Parser, tmpl *prompt.Template) *PromptedEncoder {
	return &PromptedEncoder{module{identity: identity, parser: parser, tmpl: tmpl}}
}

// Encode implements Encoder.
func (e *PromptedEncoder) Encode(ctx context.Context, obs string, mem core.Memory) (EncoderOutput, error) {
	fields, err := e.call(ctx, prompt.Data{Obs: obs, Memory: renderMemory(mem)})
	if err != nil {
		return EncoderOutput{}, err
	}
	return EncoderOutput{State: fields[KeyState]}, nil
}

// PromptedPolicy is an LLM-backed Policy whose plan is extracted from the
// configured output tag.
type PromptedPolicy struct {
	module
	outputName string
}

// NewPromptedPolicy creates a Policy. The parser must extract outputName and
// should extract KeyThink as an optional key.
func NewPromptedPolicy(identity *core.Identity, parser *model.Parser, tmpl *prompt.Template, outputName string) *PromptedPolicy {
	return &PromptedPolicy{
		module:     module{identity: identity, parser: parser, tmpl: tmpl},
		outputName: outputName,
	}
}

// OutputName returns the tag the plan is read from.
func (p *PromptedPolicy) OutputName() string { return p.outputName }

func (p *PromptedPolicy) data(state string, mem core.Memory) prompt.Data {
	return prompt.Data{State: state, Memory: renderMemory(mem), OutputName: p.outputName}
}

// Propose implements Policy.
func (p *PromptedPolicy) Propose(ctx context.Context, state string, mem core.Memory) (PolicyOutput, error) {
	fields, err := p.call(ctx, p.data(state, mem))
	if err != nil {
		return PolicyOutput{}, err
	}
	return PolicyOutput{Plan: fields[p.outputName], Think: fields[KeyThink]}, nil
}

// Sample implements Policy.
func (p *PromptedPolicy) Sample(ctx context.Context, state string, mem core.Memory, n int) ([]PolicyOutput, error) {
	samples, err := p.sample(ctx, p.data(state, mem), n)
	if err != nil {
		return nil, err
	}
	out := make([]PolicyOutput, 0, len(samples))
	for _, fields := range samples {
		if IsEmpty(fields[p.outputName]) {
			continue
		}
		out = append(out, PolicyOutput{Plan: fields[p.outputName], Think: fields[KeyThink]})
	}
	return out, nil
}

// PromptedWorldModel is an LLM-backed WorldModel.
type PromptedWorldModel struct {
	module
	outputName string
}

// NewPromptedWorldModel creates a WorldModel. The parser must extract KeyNextState.
func NewPromptedWorldModel(identity *core.Identity, parser *model.Parser, tmpl *prompt.Template, outputName string) *PromptedWorldModel {
	return &PromptedWorldModel{
		module:     module{identity: identity, parser: parser, tmpl: tmpl},
		outputName: outputName,
	}
}

// Predict implements WorldModel.
func (w *PromptedWorldModel) Predict(ctx context.Context, state string, mem core.Memory, plan string) (WorldModelOutput, error) {
	fields, err := w.call(ctx, prompt.Data{State: state, Memory: renderMemory(mem), Plan: plan, OutputName: w.outputName})
	if err != nil {
		return WorldModelOutput{}, err
	}
	return WorldModelOutput{NextState: fields[KeyNextState]}, nil
}

// PromptedCritic is an LLM-backed Critic.
type PromptedCritic struct{ module }

// NewPromptedCritic creates a Critic. The parser must extract KeyStatus and
// KeyOnTrack.
func NewPromptedCritic(identity *core.Identity, parser *model.Parser, tmpl *prompt.Template) *PromptedCritic {
	return &PromptedCritic{module{identity: identity, parser: parser, tmpl: tmpl}}
}

func toCriticOutput(fields map[string]string) CriticOutput {
	return CriticOutput{
		Status:  fields[KeyStatus],
		OnTrack: ParseOnTrack(fields[KeyOnTrack]),
		Think:   fields[KeyThink],
	}
}

// Evaluate implements Critic.
func (c *PromptedCritic) Evaluate(ctx context.Context, state string, mem core.Memory) (CriticOutput, error) {
	fields, err := c.call(ctx, prompt.Data{State: state, Memory: renderMemory(mem)})
	if err != nil {
		return CriticOutput{}, err
	}
	return toCriticOutput(fields), nil
}

// Sample implements Critic.
func (c *PromptedCritic) Sample(ctx context.Context, state string, mem core.Memory, n int) ([]CriticOutput, error) {
	samples, err := c.sample(ctx, prompt.Data{State: state, Memory: renderMemory(mem)}, n)
	if err != nil {
		return nil, err
	}
	out := make([]CriticOutput, 0, len(samples))
	for _, fields := range samples {
		out = append(out, toCriticOutput(fields))
	}
	return out, nil
}

// PromptedActor is an LLM-backed Actor.
type PromptedActor struct {
	module
	outputName string
}

// NewPromptedActor creates an Actor. The parser must extract KeyAction.
func NewPromptedActor(identity *core.Identity, parser *model.Parser, tmpl *prompt.Template, outputName string) *PromptedActor {
	return &PromptedActor{
		module:     module{identity: identity, parser: parser, tmpl: tmpl},
		outputName: outputName,
	}
}

// Act implements Actor.
func (a *PromptedActor) Act(ctx context.Context, obs, state string, mem core.Memory, plan string) (ActorOutput, error) {
	fields, err := a.call(ctx, prompt.Data{
		Obs:        obs,
		State:      state,
		Memory:     renderMemory(mem),
		Plan:       plan,
		OutputName: a.outputName,
	})
	if err != nil {
		return ActorOutput{}, err
	}
	return ActorOutput{Action: fields[KeyAction]}, nil
}
