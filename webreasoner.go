// Package webreasoner provides a high-level façade over the reasoning agent,
// the episode runner and episode evaluation. Most applications interact with
// this package by:
//  1. Creating a WebReasoner via New() with a model, a named or loaded
//     configuration and a browser environment
//  2. Running goals with Run (one episode) or RunJobs (a batch that skips
//     jobs already recorded in the artifact store)
//  3. Summarizing stored episodes with Evaluate
//
// Defaults are safe for local development and testing: records are kept in
// memory unless a durable store is supplied.
package webreasoner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/webreasoner/agent"
	"github.com/hupe1980/webreasoner/artifact"
	"github.com/hupe1980/webreasoner/config"
	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/evaluation"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/runner"
	"github.com/hupe1980/webreasoner/space"
)

// Options configures the WebReasoner instance.
type Options struct {
	// MaxSteps bounds agent steps per episode.
	MaxSteps int
	// StepTimeout bounds each environment reset and step.
	StepTimeout time.Duration
	// AgentTimeout bounds each agent step (zero means none).
	AgentTimeout time.Duration

	// Store persists episode records (defaults to an in-memory store).
	Store core.ArtifactStore

	// Evaluator scores episodes (defaults to evaluation.CompletionEvaluator).
	Evaluator evaluation.Evaluator

	// Agent receives overrides for the agent (modules, model call limits).
	Agent []func(o *agent.Options)

	TracerProvider trace.TracerProvider

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Job is a named goal.
type Job struct {
	Name string
	Goal string
}

// WebReasoner aggregates agent, runner and evaluation.
type WebReasoner struct {
	agent     *agent.ReasonerAgent
	runner    *runner.Runner
	store     core.ArtifactStore
	evaluator evaluation.Evaluator
	logger    logging.Logger
}

// New wires an agent for cfg around llm and a runner over env.
func New(llm model.Model, cfg config.Config, env core.Environment, optFns ...func(o *Options)) (*WebReasoner, error) {
	opts := Options{
		MaxSteps:    30,
		StepTimeout: 30 * time.Second,
		Store:       artifact.NewInMemoryStore(),
		Evaluator:   evaluation.CompletionEvaluator{},
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.Ensure(opts.Logger)

	agentOpts := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Logger = logger
		o.TracerProvider = opts.TracerProvider
	}}, opts.Agent...)

	ag, err := agent.New(llm, cfg, agentOpts...)
	if err != nil {
		return nil, fmt.Errorf("webreasoner: %w", err)
	}

	r := runner.New(ag, env, func(o *runner.Options) {
		o.MaxSteps = opts.MaxSteps
		o.StepTimeout = opts.StepTimeout
		o.AgentTimeout = opts.AgentTimeout
		o.ErrorActions = []string{cfg.ModuleErrorMessage, space.TooManyErrorsAction}
		o.Store = opts.Store
		o.Logger = logger
	})

	return &WebReasoner{
		agent:     ag,
		runner:    r,
		store:     opts.Store,
		evaluator: opts.Evaluator,
		logger:    logger,
	}, nil
}

// Agent returns the underlying agent.
func (w *WebReasoner) Agent() *agent.ReasonerAgent { return w.agent }

// Run executes one episode for goal and stores it under jobName.
func (w *WebReasoner) Run(ctx context.Context, jobName, goal string) (*runner.Episode, error) {
	return w.runner.Run(ctx, jobName, goal)
}

// RunJobs runs every job that has no stored record yet, in order, and returns
// the episodes it ran. It stops at the first runner error.
func (w *WebReasoner) RunJobs(ctx context.Context, jobs []Job) ([]*runner.Episode, error) {
	var episodes []*runner.Episode
	for _, j := range jobs {
		exists, err := w.runner.Exists(j.Name)
		if err != nil {
			return episodes, err
		}
		if exists {
			w.logger.Info("skipping existing job", "job", j.Name)
			continue
		}
		ep, err := w.runner.Run(ctx, j.Name, j.Goal)
		if ep != nil {
			episodes = append(episodes, ep)
		}
		if err != nil {
			return episodes, fmt.Errorf("job %s: %w", j.Name, err)
		}
	}
	return episodes, nil
}

// Evaluate scores the latest stored episode of each job.
func (w *WebReasoner) Evaluate(jobs []Job) ([]*evaluation.Result, evaluation.Summary, error) {
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name)
	}
	results, err := evaluation.EvaluateJobs(w.store, w.evaluator, names)
	if err != nil {
		return nil, evaluation.Summary{}, err
	}
	return results, evaluation.Summarize(results), nil
}
