package core

import (
	"strings"
	"sync"
)

// Describer is implemented by observation and action spaces so their
// descriptions can be embedded in prompts.
type Describer interface {
	Describe() string
}

// Identity is the shared, mutable context read by every cognitive module:
// who the agent is, what it observes, what it can do, and what the user asked
// for. Only the orchestrator mutates it (once per step, before any module
// runs); modules hold it by reference and read it, possibly concurrently.
type Identity struct {
	mu               sync.RWMutex
	agentName        string
	agentDescription string
	observationSpace Describer
	actionSpace      Describer
	instruction      string
}

// NewIdentity creates an Identity for the given agent and spaces.
func NewIdentity(name, description string, observationSpace, actionSpace Describer) *Identity {
	return &Identity{
		agentName:        name,
		agentDescription: description,
		observationSpace: observationSpace,
		actionSpace:      actionSpace,
	}
}

// Update refreshes the current user instruction.
func (i *Identity) Update(instruction string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.instruction = instruction
}

// AgentName returns the configured agent name.
func (i *Identity) AgentName() string { return i.agentName }

// AgentDescription returns the configured agent description.
func (i *Identity) AgentDescription() string { return i.agentDescription }

// Instruction returns the current user instruction.
func (i *Identity) Instruction() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.instruction
}

// Render produces the system prompt preamble shared by every module.
func (i *Identity) Render() string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var b strings.Builder
	b.WriteString(i.agentDescription)
	if i.instruction != "" {
		b.WriteString("\n\n# Instruction\n")
		b.WriteString(i.instruction)
	}
	if i.observationSpace != nil {
		if d := i.observationSpace.Describe(); d != "" {
			b.WriteString("\n\n# Observation Space\n")
			b.WriteString(d)
		}
	}
	if i.actionSpace != nil {
		if d := i.actionSpace.Describe(); d != "" {
			b.WriteString("\n\n# Action Space\n")
			b.WriteString(d)
		}
	}
	return b.String()
}

// Reset clears the per-episode instruction.
func (i *Identity) Reset() { i.Update("") }
