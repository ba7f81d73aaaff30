package agent

import (
	"errors"
	"fmt"

	"github.com/hupe1980/webreasoner/cognitive"
	"github.com/hupe1980/webreasoner/config"
	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/memory"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/planner"
	"github.com/hupe1980/webreasoner/prompt"
	"github.com/hupe1980/webreasoner/space"
)

// errNoModel is returned when a prompted module is needed but no model was given.
var errNoModel = errors.New("agent: a model is required to build prompted modules")

// builder wires modules from the configuration.
type builder struct {
	llm      model.Model
	cfg      config.Config
	opts     Options
	identity *core.Identity
	limiter  *core.CallLimiter
}

func (b *builder) parser(keys []string, optional ...string) (*model.Parser, error) {
	if b.llm == nil {
		return nil, errNoModel
	}
	return model.NewParser(b.llm, keys, func(o *model.ParserOptions) {
		o.OptionalKeys = optional
		o.Limiter = b.limiter
		o.Logger = b.opts.Logger
		o.Stream = b.opts.Stream
		if b.opts.Pricing != nil {
			o.Pricing = b.opts.Pricing
		}
		if b.opts.MaxRetries > 0 {
			o.MaxRetries = b.opts.MaxRetries
		}
	}), nil
}

func (b *builder) template(role prompt.Role, variant string) (*prompt.Template, error) {
	t, err := prompt.Get(role, variant)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", b.cfg.Name, err)
	}
	return t, nil
}

func (b *builder) spaces() (core.ObservationSpace, core.ActionSpace, error) {
	obs, act := b.opts.ObservationSpace, b.opts.ActionSpace
	if obs != nil && act != nil {
		return obs, act, nil
	}
	pair, err := space.New(b.cfg.Environment, space.Options{
		UseNav:         b.cfg.UseNav,
		EvalMode:       b.cfg.EvalMode,
		TruncateAXTree: b.cfg.TruncateAXTree,
		Strict:         b.cfg.StrictActions,
		ErrorAction:    b.cfg.ModuleErrorMessage,
	})
	if err != nil {
		return nil, nil, err
	}
	if obs == nil {
		obs = pair.Observation
	}
	if act == nil {
		act = pair.Action
	}
	return obs, act, nil
}

func (b *builder) memory() (core.Memory, error) {
	if b.opts.Memory != nil {
		return b.opts.Memory, nil
	}
	switch b.cfg.MemoryType {
	case memory.KindStepKeyValue:
		return memory.New(memory.KindStepKeyValue, []string{core.FieldState, b.cfg.PolicyOutputName})
	case memory.KindStepPrompted:
		tmpl, err := b.template(prompt.RoleMemoryUpdate, b.cfg.MemoryPromptType)
		if err != nil {
			return nil, err
		}
		p, err := b.parser([]string{memory.KeyMemoryUpdate})
		if err != nil {
			return nil, err
		}
		return memory.New(memory.KindStepPrompted, []string{b.cfg.PolicyOutputName}, func(o *memory.Options) {
			o.Identity = b.identity
			o.Parser = p
			o.Template = tmpl
			o.Logger = b.opts.Logger
		})
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedMemory, b.cfg.MemoryType)
	}
}

func (b *builder) encoder() (cognitive.Encoder, error) {
	if b.opts.Encoder != nil {
		return b.opts.Encoder, nil
	}
	tmpl, err := b.template(prompt.RoleEncoder, b.cfg.EncoderPromptType)
	if err != nil {
		return nil, err
	}
	p, err := b.parser([]string{cognitive.KeyState})
	if err != nil {
		return nil, err
	}
	return cognitive.NewPromptedEncoder(b.identity, p, tmpl), nil
}

// planner returns the planner. Built planners report the cost of the modules
// they own; an injected planner is registered as is.
func (b *builder) planner() (planner.Planner, error) {
	if b.opts.Planner != nil {
		return b.opts.Planner, nil
	}
	kind := b.cfg.PlannerType
	if kind != planner.KindPolicy && kind != planner.KindWorldModel {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedPlanner, kind)
	}

	out := b.cfg.PolicyOutputName
	policyTmpl, err := b.template(prompt.RolePolicy, b.cfg.PolicyPromptType)
	if err != nil {
		return nil, err
	}
	policyParser, err := b.parser([]string{out}, cognitive.KeyThink)
	if err != nil {
		return nil, err
	}
	deps := planner.Deps{Policy: cognitive.NewPromptedPolicy(b.identity, policyParser, policyTmpl, out)}

	if kind == planner.KindWorldModel {
		wmTmpl, err := b.template(prompt.RoleWorldModel, b.cfg.WorldModelPromptType)
		if err != nil {
			return nil, err
		}
		wmParser, err := b.parser([]string{cognitive.KeyNextState})
		if err != nil {
			return nil, err
		}
		criticTmpl, err := b.template(prompt.RoleCritic, b.cfg.CriticPromptType)
		if err != nil {
			return nil, err
		}
		criticParser, err := b.parser([]string{cognitive.KeyStatus, cognitive.KeyOnTrack}, cognitive.KeyThink)
		if err != nil {
			return nil, err
		}
		deps.WorldModel = cognitive.NewPromptedWorldModel(b.identity, wmParser, wmTmpl, out)
		deps.Critic = cognitive.NewPromptedCritic(b.identity, criticParser, criticTmpl)
	}

	s := b.cfg.Search
	p, err := planner.New(kind, out, deps, func(o *planner.SearchOptions) {
		o.NumActions = s.NumActions
		o.Depth = s.Depth
		o.CriticNumSamples = s.CriticNumSamples
		if s.Algorithm != "" {
			o.Algorithm = s.Algorithm
		}
		if s.BeamWidth > 0 {
			o.BeamWidth = s.BeamWidth
		}
		if s.Concurrency > 0 {
			o.Concurrency = s.Concurrency
		}
		o.TracerProvider = b.opts.TracerProvider
		o.Logger = b.opts.Logger
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b *builder) actor() (cognitive.Actor, error) {
	if b.opts.Actor != nil {
		return b.opts.Actor, nil
	}
	tmpl, err := b.template(prompt.RoleActor, b.cfg.ActorPromptType)
	if err != nil {
		return nil, err
	}
	p, err := b.parser([]string{cognitive.KeyAction})
	if err != nil {
		return nil, err
	}
	return cognitive.NewPromptedActor(b.identity, p, tmpl, b.cfg.PolicyOutputName), nil
}

// costSources keeps the modules that report cost, in registration order.
func costSources(modules ...any) []core.CostReporter {
	var out []core.CostReporter
	for _, m := range modules {
		if c, ok := m.(core.CostReporter); ok && c != nil {
			out = append(out, c)
		}
	}
	return out
}

// resettables keeps the per-episode state holders, in registration order.
func resettables(holders ...any) []core.Resetter {
	var out []core.Resetter
	for _, h := range holders {
		if r, ok := h.(core.Resetter); ok && r != nil {
			out = append(out, r)
		}
	}
	return out
}
