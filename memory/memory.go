package memory

import (
	"fmt"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/prompt"
)

// Memory kinds accepted by New.
const (
	KindStepKeyValue = "step_key_value"
	KindStepPrompted = "step_prompted"
)

// Options configure New. Identity, Parser and Template are required for
// KindStepPrompted.
type Options struct {
	Identity *core.Identity
	Parser   *model.Parser
	Template *prompt.Template
	Logger   logging.Logger
}

// New builds a memory of the given kind. Unknown kinds fail with
// core.ErrUnsupportedMemory.
func New(kind string, keys []string, optFns ...func(o *Options)) (core.Memory, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	switch kind {
	case KindStepKeyValue:
		return NewStepKeyValue(keys), nil
	case KindStepPrompted:
		if opts.Parser == nil || opts.Template == nil {
			return nil, fmt.Errorf("%s memory requires a parser and a template", kind)
		}
		return NewStepPrompted(opts.Identity, opts.Parser, opts.Template, keys, opts.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedMemory, kind)
	}
}
