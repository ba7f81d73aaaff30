package cognitive

import (
	"context"
	"strings"

	"github.com/hupe1980/webreasoner/core"
)

// Output tags extracted by the prompted modules.
const (
	KeyState        = "state"
	KeyNextState    = "next_state"
	KeyThink        = "think"
	KeyStatus       = "status"
	KeyOnTrack      = "on_the_right_track"
	KeyAction       = "action"
	KeyMemoryUpdate = "memory_update"
)

// StatusFinished is the critic status for a fully accomplished instruction.
const StatusFinished = "finished"

// EncoderOutput is the result of encoding an observation.
type EncoderOutput struct {
	State string
}

// PolicyOutput is one proposed plan.
type PolicyOutput struct {
	Plan  string
	Think string
}

// WorldModelOutput is the predicted state after a plan is carried out.
type WorldModelOutput struct {
	NextState string
}

// CriticOutput is one evaluation of a state.
type CriticOutput struct {
	Status  string
	OnTrack bool
	Think   string
}

// Finished reports whether the critic judged the task complete.
func (c CriticOutput) Finished() bool {
	return strings.EqualFold(c.Status, StatusFinished)
}

// ActorOutput is the concrete environment action.
type ActorOutput struct {
	Action string
}

// Encoder turns an observation into a compact state.
type Encoder interface {
	Encode(ctx context.Context, obs string, mem core.Memory) (EncoderOutput, error)
}

// Policy proposes plans for a state.
type Policy interface {
	Propose(ctx context.Context, state string, mem core.Memory) (PolicyOutput, error)
	// Sample returns up to n proposals. Empty proposals are dropped.
	Sample(ctx context.Context, state string, mem core.Memory, n int) ([]PolicyOutput, error)
}

// WorldModel predicts the consequence of a plan.
type WorldModel interface {
	Predict(ctx context.Context, state string, mem core.Memory, plan string) (WorldModelOutput, error)
}

// Critic evaluates a state against the instruction.
type Critic interface {
	Evaluate(ctx context.Context, state string, mem core.Memory) (CriticOutput, error)
	Sample(ctx context.Context, state string, mem core.Memory, n int) ([]CriticOutput, error)
}

// Actor grounds a plan into a concrete action.
type Actor interface {
	Act(ctx context.Context, obs, state string, mem core.Memory, plan string) (ActorOutput, error)
}

// IsEmpty reports whether a module value counts as missing output.
// Whitespace-only values are treated as empty.
func IsEmpty(v string) bool { return strings.TrimSpace(v) == "" }

// ParseOnTrack interprets the critic's on-track answer.
func ParseOnTrack(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "y":
		return true
	default:
		return false
	}
}

func renderMemory(mem core.Memory) string {
	if mem == nil {
		return ""
	}
	return mem.Render()
}
