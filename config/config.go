// Package config provides the named agent configurations and YAML loading.
// A configuration selects the environment kind, the prompt variant of every
// cognitive role, the memory and planner kinds, search hyperparameters, the
// module-error fallback action and the plan output name. Every module of an
// agent is built from a Config plus an LLM handle.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownConfig is returned by Get for names outside the library.
	ErrUnknownConfig = errors.New("unknown config")
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// DefaultName is the configuration used when none is given.
const DefaultName = "browsergym"

// reserved step fields a plan output name must not shadow.
var reserved = map[string]struct{}{
	"obs":           {},
	"state":         {},
	"action":        {},
	"think":         {},
	"status":        {},
	"next_state":    {},
	"memory_update": {},
}

// Config selects and parameterizes every agent module.
type Config struct {
	Name             string `yaml:"name"`
	Environment      string `yaml:"environment"`
	AgentName        string `yaml:"agent_name"`
	AgentDescription string `yaml:"agent_description"`

	EncoderPromptType    string `yaml:"encoder_prompt_type"`
	PolicyPromptType     string `yaml:"policy_prompt_type"`
	WorldModelPromptType string `yaml:"world_model_prompt_type,omitempty"`
	CriticPromptType     string `yaml:"critic_prompt_type,omitempty"`
	ActorPromptType      string `yaml:"actor_prompt_type"`
	MemoryPromptType     string `yaml:"memory_prompt_type,omitempty"`

	MemoryType  string `yaml:"memory_type"`
	PlannerType string `yaml:"planner_type"`

	// PolicyOutputName is the tag the policy answers in and the memory key
	// the plan is stored under.
	PolicyOutputName string `yaml:"policy_output_name"`
	// ModuleErrorMessage is emitted whenever a stage produces no usable output.
	ModuleErrorMessage string `yaml:"module_error_message"`

	UseNav         bool `yaml:"use_nav"`
	EvalMode       bool `yaml:"eval_mode"`
	TruncateAXTree bool `yaml:"truncate_axtree"`
	// StrictActions replaces actions outside the action space with the
	// module-error message.
	StrictActions bool `yaml:"strict_actions,omitempty"`

	Search Search `yaml:"search"`
}

// Search holds the lookahead search hyperparameters.
type Search struct {
	NumActions       int    `yaml:"num_actions"`
	Depth            int    `yaml:"depth"`
	CriticNumSamples int    `yaml:"critic_num_samples"`
	Algorithm        string `yaml:"algorithm,omitempty"`
	BeamWidth        int    `yaml:"beam_width,omitempty"`
	Concurrency      int    `yaml:"concurrency,omitempty"`
}

// Get returns a copy of a named configuration.
func Get(name string) (Config, error) {
	cfg, ok := library[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownConfig, name)
	}
	return cfg, nil
}

// Names lists the library configurations, sorted.
func Names() []string {
	names := make([]string, 0, len(library))
	for n := range library {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse decodes a YAML configuration. Fields not present in data are taken
// from the named config given by the top level "base" key (default
// DefaultName).
func Parse(data []byte) (Config, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if head.Base == "" {
		head.Base = DefaultName
	}
	cfg, err := Get(head.Base)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and validates a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants every agent relies on. Unknown module kinds
// are reported later by the constructors.
func (c Config) Validate() error {
	var errs []error
	if c.PolicyOutputName == "" {
		errs = append(errs, errors.New("policy_output_name must not be empty"))
	} else if _, ok := reserved[c.PolicyOutputName]; ok {
		errs = append(errs, fmt.Errorf("policy_output_name %q collides with a step field", c.PolicyOutputName))
	}
	if c.ModuleErrorMessage == "" {
		errs = append(errs, errors.New("module_error_message must not be empty"))
	}
	if c.PlannerType == "world_model" {
		if c.Search.NumActions < 1 {
			errs = append(errs, errors.New("search.num_actions must be positive"))
		}
		if c.Search.Depth < 1 {
			errs = append(errs, errors.New("search.depth must be positive"))
		}
		if c.Search.CriticNumSamples < 1 {
			errs = append(errs, errors.New("search.critic_num_samples must be positive"))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
