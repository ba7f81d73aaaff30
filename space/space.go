package space

import (
	"fmt"

	"github.com/hupe1980/webreasoner/core"
)

// Environment kinds.
const (
	EnvBrowserGym = "browsergym"
	EnvOpenDevin  = "opendevin"
)

// Options configure New.
type Options struct {
	UseNav         bool
	EvalMode       bool
	TruncateAXTree bool
	Strict         bool
	ErrorAction    string
}

// Pair is the observation and action space of one environment.
type Pair struct {
	Observation core.ObservationSpace
	Action      core.ActionSpace
}

// Resettables returns the stateful parts of the pair.
func (p Pair) Resettables() []core.Resetter {
	var out []core.Resetter
	if r, ok := p.Observation.(core.Resetter); ok {
		out = append(out, r)
	}
	if r, ok := p.Action.(core.Resetter); ok {
		out = append(out, r)
	}
	return out
}

// New builds the spaces of an environment kind. Unknown kinds fail with
// core.ErrUnsupportedEnvironment.
func New(kind string, opts Options) (Pair, error) {
	actionOpts := func(o *ActionSpaceOptions) {
		o.Subsets = []string{SubsetChat, SubsetBID}
		o.Strict = opts.Strict
		o.ErrorAction = opts.ErrorAction
	}
	switch kind {
	case EnvBrowserGym:
		return Pair{
			Observation: NewBrowserGymObservationSpace(),
			Action: NewBrowserActionSpace(actionOpts, func(o *ActionSpaceOptions) {
				o.UseNav = true
			}),
		}, nil
	case EnvOpenDevin:
		return Pair{
			Observation: NewOpenDevinObservationSpace(opts.EvalMode, opts.TruncateAXTree),
			Action: NewBrowserActionSpace(actionOpts, func(o *ActionSpaceOptions) {
				o.UseNav = opts.UseNav
			}),
		}, nil
	default:
		return Pair{}, fmt.Errorf("%w: %q", core.ErrUnsupportedEnvironment, kind)
	}
}
