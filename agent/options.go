package agent

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/webreasoner/cognitive"
	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/planner"
)

// Options configure a ReasonerAgent.
//
// Use functional options with New to override defaults.
type Options struct {
	Logger         logging.Logger
	TracerProvider trace.TracerProvider

	// MaxModelCalls bounds the LLM calls of one episode. Zero means unlimited.
	MaxModelCalls int
	// Pricing converts token usage into cost. Defaults to model.DefaultPricing.
	Pricing model.Pricing
	// Stream requests streaming generation from the model.
	Stream bool
	// MaxRetries bounds parser retries on missing output tags.
	MaxRetries int

	// Module overrides. A nil field is built from the configuration.
	ObservationSpace core.ObservationSpace
	ActionSpace      core.ActionSpace
	Encoder          cognitive.Encoder
	Planner          planner.Planner
	Actor            cognitive.Actor
	Memory           core.Memory
}
