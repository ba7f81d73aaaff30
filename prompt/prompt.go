// Package prompt holds the role prompt templates of the cognitive modules.
// Each role (encoder, policy, world model, critic, actor, memory update) has
// one or more named variants selected by configuration. Templates are
// rendered with text/template and the sprig function set.
package prompt

import (
	"errors"
	"fmt"
	"text/template"

	"github.com/hupe1980/webreasoner/internal/util"
)

// ErrUnknownTemplate is returned for a role/variant pair with no template.
var ErrUnknownTemplate = errors.New("unknown prompt template")

// Role names a cognitive role.
type Role string

// Cognitive roles.
const (
	RoleEncoder      Role = "encoder"
	RolePolicy       Role = "policy"
	RoleWorldModel   Role = "world_model"
	RoleCritic       Role = "critic"
	RoleActor        Role = "actor"
	RoleMemoryUpdate Role = "memory_update"
)

// Data is the value every template is rendered with. Modules fill only the
// fields their role consumes.
type Data struct {
	Identity   string
	Obs        string
	Memory     string
	State      string
	Plan       string
	OutputName string
	Step       map[string]string
}

// Template is a compiled system/user prompt pair.
type Template struct {
	Name   string
	system *template.Template
	user   *template.Template
}

// New compiles a system/user template pair.
func New(name, system, user string) (*Template, error) {
	sys, err := util.CompileTemplate(name+".system", system)
	if err != nil {
		return nil, fmt.Errorf("compile %s system prompt: %w", name, err)
	}
	usr, err := util.CompileTemplate(name+".user", user)
	if err != nil {
		return nil, fmt.Errorf("compile %s user prompt: %w", name, err)
	}
	return &Template{Name: name, system: sys, user: usr}, nil
}

// Must panics when err is non-nil. Used for the built-in library.
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

// Render produces the system and user messages.
func (t *Template) Render(data Data) (string, string, error) {
	system, err := util.Execute(t.system, data)
	if err != nil {
		return "", "", fmt.Errorf("render %s system prompt: %w", t.Name, err)
	}
	user, err := util.Execute(t.user, data)
	if err != nil {
		return "", "", fmt.Errorf("render %s user prompt: %w", t.Name, err)
	}
	return system, user, nil
}

// Get returns the template registered for role and variant. An empty variant
// selects "default".
func Get(role Role, variant string) (*Template, error) {
	if variant == "" {
		variant = "default"
	}
	variants, ok := library[role]
	if !ok {
		return nil, fmt.Errorf("%w: role %q", ErrUnknownTemplate, role)
	}
	t, ok := variants[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownTemplate, role, variant)
	}
	return t, nil
}
