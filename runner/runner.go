package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/space"
)

// ArtifactIDFormat is the timestamp layout used as artifact id for episode
// records.
const ArtifactIDFormat = "2006-01-02-15-04-05"

const finishPrefix = "send_msg_to_user"

// ErrNoStore is returned by Exists when the runner has no artifact store.
var ErrNoStore = errors.New("runner: no artifact store configured")

// Agent is the part of the reasoner agent the loop depends on.
type Agent interface {
	Step(ctx context.Context, raw core.RawObservation) (string, core.StepInfo, error)
	Reset()
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxSteps bounds the number of agent steps per episode.
	MaxSteps int
	// StepTimeout bounds each environment reset and step.
	StepTimeout time.Duration
	// AgentTimeout bounds each agent step. Zero means no bound. A timed out
	// agent step leaves memory uncommitted.
	AgentTimeout time.Duration
	// ErrorActions are final actions that never count as completion.
	ErrorActions []string
	// Store persists episode records. Nil disables persistence.
	Store core.ArtifactStore
	// Logger receives episode progress.
	Logger logging.Logger
	// Clock is used for artifact ids.
	Clock func() time.Time
}

// HistoryEntry is one (observation, action, info) triple.
type HistoryEntry struct {
	Observation core.RawObservation `json:"observation"`
	Action      string              `json:"action"`
	Info        core.StepInfo       `json:"info"`
}

// Episode is the persisted record of one run.
type Episode struct {
	ID         string         `json:"id"`
	Job        string         `json:"job"`
	Goal       string         `json:"goal"`
	History    []HistoryEntry `json:"history"`
	IsComplete bool           `json:"is_complete"`
	Error      string         `json:"error,omitempty"`
	TotalCost  float64        `json:"total_cost"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// FinalAction returns the last action of the episode or "".
func (e *Episode) FinalAction() string {
	if len(e.History) == 0 {
		return ""
	}
	return e.History[len(e.History)-1].Action
}

// Runner drives an agent against an environment one episode at a time.
// A Runner is not safe for concurrent use since the agent is stateful.
type Runner struct {
	agent Agent
	env   core.Environment

	maxSteps     int
	stepTimeout  time.Duration
	agentTimeout time.Duration
	errorActions []string
	store        core.ArtifactStore
	logger       logging.Logger
	clock        func() time.Time
}

// New constructs a Runner with optional overrides.
func New(agent Agent, env core.Environment, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxSteps:     30,
		StepTimeout:  30 * time.Second,
		ErrorActions: []string{space.TooManyErrorsAction},
		Logger:       logging.NoOpLogger{},
		Clock:        time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agent:        agent,
		env:          env,
		maxSteps:     opts.MaxSteps,
		stepTimeout:  opts.StepTimeout,
		agentTimeout: opts.AgentTimeout,
		errorActions: opts.ErrorActions,
		store:        opts.Store,
		logger:       logging.Ensure(opts.Logger),
		clock:        opts.Clock,
	}
}

// Exists reports whether an episode record for the job is already stored.
func (r *Runner) Exists(jobName string) (bool, error) {
	if r.store == nil {
		return false, ErrNoStore
	}
	ids, err := r.store.List(jobName)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// Run executes one episode. Environment failures, environment step timeouts
// and agent timeouts end the episode and are recorded in Episode.Error; the partial history is still
// persisted. The returned error is non-nil only when the parent context is
// done or the record could not be saved.
func (r *Runner) Run(ctx context.Context, jobName, goal string) (*Episode, error) {
	ep := &Episode{
		ID:        uuid.NewString(),
		Job:       jobName,
		Goal:      goal,
		History:   []HistoryEntry{},
		StartedAt: r.clock(),
	}
	logger := logging.ForEpisode(r.logger, jobName, ep.ID)
	logger.Info("episode started")

	r.agent.Reset()
	runErr := r.loop(ctx, ep, logger)

	ep.FinishedAt = r.clock()
	ep.IsComplete = r.isComplete(ep.FinalAction())
	if runErr != nil {
		ep.Error = runErr.Error()
		logger.Warn("episode aborted", "error", runErr)
	}
	logger.Info("episode finished",
		"steps", len(ep.History),
		"complete", ep.IsComplete,
		"total_cost", ep.TotalCost,
	)

	if err := r.persist(ep); err != nil {
		return ep, err
	}
	if err := ctx.Err(); err != nil {
		return ep, err
	}
	return ep, nil
}

func (r *Runner) loop(ctx context.Context, ep *Episode, logger logging.Logger) error {
	obs, err := withTimeout(ctx, r.stepTimeout, func(ctx context.Context) (core.RawObservation, error) {
		return r.env.Reset(ctx, ep.Goal)
	})
	if err != nil {
		return fmt.Errorf("reset environment: %w", err)
	}

	for step := 0; step < r.maxSteps; step++ {
		var info core.StepInfo
		done := logging.StartTimer(logger, "agent.step", "step", step+1)
		action, err := withTimeout(ctx, r.agentTimeout, func(ctx context.Context) (string, error) {
			var stepErr error
			var action string
			action, info, stepErr = r.agent.Step(ctx, obs)
			return action, stepErr
		})
		done()
		if err != nil {
			return fmt.Errorf("step %d: agent: %w", step+1, err)
		}

		ep.History = append(ep.History, HistoryEntry{Observation: obs, Action: action, Info: info})
		ep.TotalCost = info.Cost
		if strings.HasPrefix(action, finishPrefix) {
			return nil
		}

		obs, err = withTimeout(ctx, r.stepTimeout, func(ctx context.Context) (core.RawObservation, error) {
			return r.env.Step(ctx, action)
		})
		if err != nil {
			return fmt.Errorf("step %d: environment: %w", step+1, err)
		}
	}
	return nil
}

// withTimeout runs fn under a deadline of d (none when d <= 0) and marks
// errors caused by that deadline.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	stepCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	out, err := fn(stepCtx)
	if err != nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		var zero T
		return zero, fmt.Errorf("timed out after %s: %w", d, err)
	}
	return out, err
}

func (r *Runner) isComplete(action string) bool {
	if !strings.HasPrefix(action, finishPrefix) {
		return false
	}
	for _, e := range r.errorActions {
		if action == e {
			return false
		}
	}
	return true
}

func (r *Runner) persist(ep *Episode) error {
	if r.store == nil {
		return nil
	}
	data, err := json.MarshalIndent(ep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode episode: %w", err)
	}
	id := ep.StartedAt.Format(ArtifactIDFormat)
	if err := r.store.Save(ep.Job, id, data); err != nil {
		return fmt.Errorf("save episode: %w", err)
	}
	r.logger.Debug("episode saved", "job", ep.Job, "artifact_id", id)
	return nil
}
