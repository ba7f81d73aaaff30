package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/webreasoner/cognitive"
	"github.com/hupe1980/webreasoner/config"
	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/planner"
)

const tracerName = "github.com/hupe1980/webreasoner/agent"

// Pipeline stages, used in logs, spans and StepInfo.ModuleError.
const (
	StageObservation = "observation"
	StageEncoder     = "encoder"
	StagePlanner     = "planner"
	StageActor       = "actor"
	StageMemory      = "memory"
)

// stepLogger is implemented by logging.StructuredLogger.
type stepLogger interface {
	LogStep(step int, action string, totalCost float64, dur time.Duration, moduleErr string)
}

// ReasonerAgent drives the encode, plan, act and memorize pipeline. It is not
// safe for concurrent Step calls; one step completes before the next begins.
type ReasonerAgent struct {
	cfg      config.Config
	identity *core.Identity
	obsSpace core.ObservationSpace
	actSpace core.ActionSpace
	encoder  cognitive.Encoder
	planner  planner.Planner
	actor    cognitive.Actor
	memory   core.Memory
	limiter  *core.CallLimiter

	costSources []core.CostReporter
	resettables []core.Resetter

	logger logging.Logger
	tracer trace.Tracer

	steps      int
	totalCost  float64
	lastAction string
	numRepeats int
}

// New builds a ReasonerAgent from a configuration and an LLM handle. The
// configuration is validated first (config.ErrInvalidConfig). Unknown
// environment, memory or planner kinds fail immediately with
// core.ErrUnsupportedEnvironment, core.ErrUnsupportedMemory or
// core.ErrUnsupportedPlanner.
func New(llm model.Model, cfg config.Config, optFns ...func(o *Options)) (*ReasonerAgent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	opts.Logger = logging.Ensure(opts.Logger)

	b := &builder{llm: llm, cfg: cfg, opts: opts, limiter: core.NewCallLimiter(opts.MaxModelCalls)}

	obsSpace, actSpace, err := b.spaces()
	if err != nil {
		return nil, err
	}
	b.identity = core.NewIdentity(cfg.AgentName, cfg.AgentDescription, obsSpace, actSpace)

	encoder, err := b.encoder()
	if err != nil {
		return nil, err
	}
	mem, err := b.memory()
	if err != nil {
		return nil, err
	}
	pl, err := b.planner()
	if err != nil {
		return nil, err
	}
	actor, err := b.actor()
	if err != nil {
		return nil, err
	}

	modules := []any{encoder, pl, actor, mem}

	a := &ReasonerAgent{
		cfg:         cfg,
		identity:    b.identity,
		obsSpace:    obsSpace,
		actSpace:    actSpace,
		encoder:     encoder,
		planner:     pl,
		actor:       actor,
		memory:      mem,
		limiter:     b.limiter,
		costSources: costSources(modules...),
		resettables: resettables(mem, b.identity, obsSpace, actSpace, b.limiter),
		logger:      opts.Logger,
		tracer:      opts.TracerProvider.Tracer(tracerName),
	}
	a.Reset()
	return a, nil
}

// Config returns the agent configuration.
func (a *ReasonerAgent) Config() config.Config { return a.cfg }

// Identity returns the shared identity.
func (a *ReasonerAgent) Identity() *core.Identity { return a.identity }

// Memory returns the agent memory.
func (a *ReasonerAgent) Memory() core.Memory { return a.memory }

// TotalCost returns the cost computed at the end of the last completed step.
func (a *ReasonerAgent) TotalCost() float64 { return a.totalCost }

// Repeats returns how often the last action was emitted in a row, minus one.
func (a *ReasonerAgent) Repeats() int { return a.numRepeats }

// Reset prepares the agent for a new episode.
func (a *ReasonerAgent) Reset() {
	core.ResetAll(a.resettables...)
	a.steps = 0
	a.totalCost = 0
	a.lastAction = ""
	a.numRepeats = 0
}

// Step runs one pass of the pipeline and returns the action for the
// environment together with the step diagnostics. A failing stage yields the
// configured module-error action and a nil error; only context cancellation
// is returned as an error, in which case memory is left uncommitted.
func (a *ReasonerAgent) Step(ctx context.Context, raw core.RawObservation) (string, core.StepInfo, error) {
	start := time.Now()
	a.steps++
	ctx, span := a.tracer.Start(ctx, "agent.step", trace.WithAttributes(attribute.Int("agent.step", a.steps)))
	defer span.End()

	info := core.StepInfo{PolicyOutputName: a.cfg.PolicyOutputName}

	obs, obsInfo, err := a.obsSpace.ParseObservation(raw)
	if err != nil {
		return a.moduleError(start, info, StageObservation, err)
	}
	info.Obs, info.ObsInfo = obs, obsInfo
	a.logger.Debug("observation parsed", "url", obsInfo.URL, "obs_length", len(obs))

	if obsInfo.HasReturnAction() {
		info.Action = obsInfo.ReturnAction
		action, info := a.actSpace.ParseAction(obsInfo.ReturnAction, info)
		a.logger.Info("observation resolved the step", "action", action)
		return action, info, nil
	}

	a.identity.Update(obsInfo.Goal)

	enc, err := traced(ctx, a.tracer, "agent.encode", func(ctx context.Context) (cognitive.EncoderOutput, error) {
		return a.encoder.Encode(ctx, obs, a.memory)
	})
	if ctx.Err() != nil {
		return "", info, ctx.Err()
	}
	info.State = enc.State
	a.logger.Debug("state encoded", "state", enc.State)
	if err != nil || cognitive.IsEmpty(enc.State) {
		return a.moduleError(start, info, StageEncoder, err)
	}

	plan, err := traced(ctx, a.tracer, "agent.plan", func(ctx context.Context) (planner.Output, error) {
		return a.planner.Plan(ctx, enc.State, a.memory)
	})
	if ctx.Err() != nil {
		return "", info, ctx.Err()
	}
	info.Plan = plan.Plan
	a.logger.Debug("plan selected", a.cfg.PolicyOutputName, plan.Plan)
	if err != nil || cognitive.IsEmpty(plan.Plan) {
		return a.moduleError(start, info, StagePlanner, err)
	}

	act, err := traced(ctx, a.tracer, "agent.act", func(ctx context.Context) (cognitive.ActorOutput, error) {
		return a.actor.Act(ctx, obs, enc.State, a.memory, plan.Plan)
	})
	if ctx.Err() != nil {
		return "", info, ctx.Err()
	}
	info.Action = act.Action
	a.logger.Debug("action chosen", "action", act.Action)
	if err != nil || cognitive.IsEmpty(act.Action) {
		return a.moduleError(start, info, StageActor, err)
	}

	_, err = traced(ctx, a.tracer, "agent.memory", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.memory.Update(ctx, info.Fields())
	})
	if err != nil && ctx.Err() == nil {
		return a.moduleError(start, info, StageMemory, err)
	}
	info.Memory = a.memory.CurrentStep()

	// The step is only committed while the caller still waits for it.
	if err := ctx.Err(); err != nil {
		return "", info, err
	}
	if err := a.memory.Step(); err != nil {
		return a.moduleError(start, info, StageMemory, err)
	}

	a.totalCost = core.TotalCost(a.costSources...)
	info.Cost = a.totalCost
	a.trackRepeats(act.Action)

	action, info := a.actSpace.ParseAction(act.Action, info)
	a.logStep(action, time.Since(start), "")
	span.SetAttributes(attribute.Float64("agent.total_cost", a.totalCost))
	return action, info, nil
}

func (a *ReasonerAgent) moduleError(start time.Time, info core.StepInfo, stage string, err error) (string, core.StepInfo, error) {
	var mk *core.MissingKeyError
	switch {
	case errors.As(err, &mk):
		a.logger.Warn("memory key missing", "stage", stage, "key", mk.Key)
	case err != nil:
		a.logger.Warn("module failed", "stage", stage, "error", err.Error())
	default:
		a.logger.Warn("module produced empty output", "stage", stage)
	}
	a.totalCost = core.TotalCost(a.costSources...)
	info.Cost = a.totalCost
	info.ModuleError = stage
	info.Action = a.cfg.ModuleErrorMessage
	a.logStep(info.Action, time.Since(start), stage)
	return a.cfg.ModuleErrorMessage, info, nil
}

func (a *ReasonerAgent) trackRepeats(action string) {
	if action == a.lastAction {
		a.numRepeats++
		a.logger.Warn("action repeated", "action", action, "repeats", a.numRepeats)
	} else {
		a.numRepeats = 0
	}
	a.lastAction = action
}

func (a *ReasonerAgent) logStep(action string, dur time.Duration, moduleErr string) {
	if l, ok := a.logger.(stepLogger); ok {
		l.LogStep(a.steps, action, a.totalCost, dur, moduleErr)
		return
	}
	a.logger.Info("agent step", "step", a.steps, "action", action, "total_cost", a.totalCost, "module_error", moduleErr)
}

// traced runs fn inside a span named name.
func traced[T any](ctx context.Context, tracer trace.Tracer, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	out, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}
