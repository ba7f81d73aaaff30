package planner

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/webreasoner/cognitive"
	"github.com/hupe1980/webreasoner/core"
)

// Planner kinds.
const (
	KindPolicy     = "policy"
	KindWorldModel = "world_model"
)

const tracerName = "github.com/hupe1980/webreasoner/planner"

// Output is a plan under its output name.
type Output struct {
	Name string
	Plan string
}

// Planner decides the next plan for a state.
type Planner interface {
	Plan(ctx context.Context, state string, mem core.Memory) (Output, error)
}

// PolicyPlanner calls the policy once, without search.
type PolicyPlanner struct {
	policy     cognitive.Policy
	outputName string
	tracer     trace.Tracer
}

// NewPolicyPlanner creates a PolicyPlanner.
func NewPolicyPlanner(policy cognitive.Policy, outputName string) *PolicyPlanner {
	return &PolicyPlanner{
		policy:     policy,
		outputName: outputName,
		tracer:     otel.Tracer(tracerName),
	}
}

// Plan implements Planner.
func (p *PolicyPlanner) Plan(ctx context.Context, state string, mem core.Memory) (Output, error) {
	ctx, span := p.tracer.Start(ctx, "planner.policy", spanAttrs(state))
	defer span.End()

	out, err := p.policy.Propose(ctx, state, mem)
	if err != nil {
		span.RecordError(err)
		return Output{Name: p.outputName}, err
	}
	return Output{Name: p.outputName, Plan: out.Plan}, nil
}

// Cost reports the spend of the policy.
func (p *PolicyPlanner) Cost() float64 { return moduleCost(p.policy) }

// moduleCost sums the cost of the modules that report one.
func moduleCost(modules ...any) float64 {
	total := 0.0
	for _, m := range modules {
		if c, ok := m.(core.CostReporter); ok && c != nil {
			total += c.Cost()
		}
	}
	return total
}

// Deps are the modules a planner can be built from.
type Deps struct {
	Policy     cognitive.Policy
	WorldModel cognitive.WorldModel
	Critic     cognitive.Critic
}

// New builds the planner of the given kind. Unknown kinds fail with
// core.ErrUnsupportedPlanner.
func New(kind, outputName string, deps Deps, optFns ...func(o *SearchOptions)) (Planner, error) {
	switch kind {
	case KindPolicy:
		if deps.Policy == nil {
			return nil, fmt.Errorf("%s planner requires a policy", kind)
		}
		return NewPolicyPlanner(deps.Policy, outputName), nil
	case KindWorldModel:
		if deps.Policy == nil || deps.WorldModel == nil || deps.Critic == nil {
			return nil, fmt.Errorf("%s planner requires a policy, a world model and a critic", kind)
		}
		fns := append([]func(o *SearchOptions){func(o *SearchOptions) { o.OutputName = outputName }}, optFns...)
		return NewSearchPlanner(deps.Policy, deps.WorldModel, deps.Critic, fns...), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedPlanner, kind)
	}
}

func spanAttrs(state string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.Int("planner.state_length", len(state)))
}
