package planner

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/webreasoner/cognitive"
	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/reasoner"
	"github.com/hupe1980/webreasoner/reasoner/beam"
	"github.com/hupe1980/webreasoner/reasoner/dfs"
)

// Search algorithms selectable by name.
const (
	AlgorithmBeam = "beam"
	AlgorithmDFS  = "dfs"
)

// auxNextState carries the predicted state from Step to Reward.
const auxNextState = "next_state"

// PlanExample is what a planning episode is about: the current state and
// the agent memory.
type PlanExample struct {
	State  string
	Memory core.Memory
}

// PlanState is a node of the planning tree.
type PlanState struct {
	State string
	Depth int
}

// SearchOptions configure a SearchPlanner.
type SearchOptions struct {
	OutputName       string
	NumActions       int
	Depth            int
	CriticNumSamples int
	// Algorithm selects a built-in search ("beam" or "dfs").
	Algorithm   string
	BeamWidth   int
	Concurrency int
	// SearchAlgorithm overrides Algorithm with a custom strategy.
	SearchAlgorithm reasoner.SearchAlgorithm[PlanState, string, PlanExample]
	TracerProvider  trace.TracerProvider
	Logger          logging.Logger
}

// SearchPlanner plans by lookahead search.
type SearchPlanner struct {
	opts     SearchOptions
	reasoner *reasoner.Reasoner[PlanState, string, PlanExample]
	tracer   trace.Tracer
	logger   logging.Logger
	modules  []any
}

// NewSearchPlanner creates a SearchPlanner.
func NewSearchPlanner(policy cognitive.Policy, wm cognitive.WorldModel, critic cognitive.Critic, optFns ...func(o *SearchOptions)) *SearchPlanner {
	opts := SearchOptions{
		OutputName:       core.FieldPlan,
		NumActions:       20,
		Depth:            1,
		CriticNumSamples: 20,
		Algorithm:        AlgorithmBeam,
		BeamWidth:        1,
		Concurrency:      4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	algo := opts.SearchAlgorithm
	if algo == nil {
		switch opts.Algorithm {
		case AlgorithmDFS:
			algo = dfs.New[PlanState, string, PlanExample](func(o *dfs.Options) {
				o.MaxDepth = opts.Depth
				o.MaxTerminals = opts.NumActions
			})
		default:
			algo = beam.New[PlanState, string, PlanExample](func(o *beam.Options) {
				o.Width = opts.BeamWidth
				o.MaxDepth = opts.Depth
				o.Concurrency = opts.Concurrency
			})
		}
	}

	wma := &worldModel{model: wm, depth: opts.Depth}
	sca := &searchConfig{policy: policy, critic: critic, numActions: opts.NumActions, criticSamples: opts.CriticNumSamples}

	return &SearchPlanner{
		opts:     opts,
		reasoner: reasoner.New[PlanState, string, PlanExample](wma, sca, algo),
		tracer:   opts.TracerProvider.Tracer(tracerName),
		logger:   logging.Ensure(opts.Logger),
		modules:  []any{policy, wm, critic},
	}
}

// Cost reports the summed spend of the policy, world model and critic.
func (p *SearchPlanner) Cost() float64 { return moduleCost(p.modules...) }

// Plan implements Planner. A search that reaches no terminal state yields an
// empty plan and no error.
func (p *SearchPlanner) Plan(ctx context.Context, state string, mem core.Memory) (Output, error) {
	ctx, span := p.tracer.Start(ctx, "planner.search", spanAttrs(state), trace.WithAttributes(
		attribute.Int("planner.num_actions", p.opts.NumActions),
		attribute.Int("planner.depth", p.opts.Depth),
	))
	defer span.End()

	res := Output{Name: p.opts.OutputName}
	out, err := p.reasoner.Run(ctx, PlanExample{State: state, Memory: mem})
	if err != nil {
		if errors.Is(err, reasoner.ErrNoTerminalState) {
			p.logger.Warn("search reached no terminal state")
			span.SetStatus(codes.Error, err.Error())
			return res, nil
		}
		span.RecordError(err)
		return res, err
	}
	if len(out.Trace.Actions) > 0 {
		res.Plan = out.Trace.Actions[0]
	}
	span.SetAttributes(attribute.Int("planner.trace_length", len(out.Trace.Actions)))
	return res, nil
}

// worldModel adapts cognitive.WorldModel to the reasoner contract.
type worldModel struct {
	reasoner.Base[PlanExample]
	model cognitive.WorldModel
	depth int
}

func (w *worldModel) InitState(context.Context) (PlanState, error) {
	return PlanState{State: w.Example().State}, nil
}

func (w *worldModel) Step(ctx context.Context, state PlanState, action string) (PlanState, map[string]any, error) {
	out, err := w.model.Predict(ctx, state.State, w.Example().Memory, action)
	if err != nil {
		return PlanState{}, nil, err
	}
	if cognitive.IsEmpty(out.NextState) {
		return PlanState{}, nil, fmt.Errorf("world model: %w", core.ErrEmptyModuleOutput)
	}
	next := PlanState{State: out.NextState, Depth: state.Depth + 1}
	return next, map[string]any{auxNextState: out.NextState}, nil
}

func (w *worldModel) IsTerminal(state PlanState) bool { return state.Depth >= w.depth }

// searchConfig adapts the policy and the critic to the reasoner contract.
type searchConfig struct {
	reasoner.Base[PlanExample]
	reasoner.NeutralFastReward[PlanState, string]
	policy        cognitive.Policy
	critic        cognitive.Critic
	numActions    int
	criticSamples int
}

func (s *searchConfig) Actions(ctx context.Context, state PlanState) ([]string, error) {
	samples, err := s.policy.Sample(ctx, state.State, s.Example().Memory, s.numActions)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(samples))
	actions := make([]string, 0, len(samples))
	for _, o := range samples {
		if _, ok := seen[o.Plan]; ok || cognitive.IsEmpty(o.Plan) {
			continue
		}
		seen[o.Plan] = struct{}{}
		actions = append(actions, o.Plan)
	}
	return actions, nil
}

// Reward scores the predicted state by critic votes: one point per on-track
// vote and one more per "finished" status, averaged over the samples.
func (s *searchConfig) Reward(ctx context.Context, state PlanState, _ string, aux map[string]any) (float64, map[string]any, error) {
	next, _ := aux[auxNextState].(string)
	if next == "" {
		next = state.State
	}
	evals, err := s.critic.Sample(ctx, next, s.Example().Memory, s.criticSamples)
	if err != nil {
		return 0, nil, err
	}
	if len(evals) == 0 {
		return 0, map[string]any{"samples": 0}, nil
	}
	score, onTrack, finished := 0.0, 0, 0
	for _, e := range evals {
		if e.OnTrack {
			score++
			onTrack++
		}
		if e.Finished() {
			score++
			finished++
		}
	}
	return score / float64(len(evals)), map[string]any{
		"samples":  len(evals),
		"on_track": onTrack,
		"finished": finished,
	}, nil
}
