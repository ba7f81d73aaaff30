package cognitive

import (
	"context"
	"testing"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type describer string

func (d describer) Describe() string { return string(d) }

func newIdentity() *core.Identity {
	id := core.NewIdentity("tester", "You are a web agent.", describer("obs space"), describer("act space"))
	id.Update("buy shoes")
	return id
}

func tmpl(t *testing.T, role prompt.Role) *prompt.Template {
	t.Helper()
	tp, err := prompt.Get(role, "default")
	require.NoError(t, err)
	return tp
}

func TestPromptedEncoder_Encode(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue("<state>on the home page</state>")
	enc := NewPromptedEncoder(newIdentity(), model.NewParser(m, []string{KeyState}), tmpl(t, prompt.RoleEncoder))

	out, err := enc.Encode(context.Background(), "page text", nil)
	require.NoError(t, err)
	assert.Equal(t, "on the home page", out.State)
	assert.Equal(t, 1, m.Calls())
}

func TestPromptedPolicy_ProposeUsesOutputName(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue("<think>hmm</think><intent>search shoes</intent>")
	parser := model.NewParser(m, []string{"intent"}, func(o *model.ParserOptions) {
		o.OptionalKeys = []string{KeyThink}
	})
	p := NewPromptedPolicy(newIdentity(), parser, tmpl(t, prompt.RolePolicy), "intent")

	out, err := p.Propose(context.Background(), "S1", nil)
	require.NoError(t, err)
	assert.Equal(t, "search shoes", out.Plan)
	assert.Equal(t, "hmm", out.Think)
	assert.Equal(t, "intent", p.OutputName())
}

func TestPromptedPolicy_SampleDropsEmpty(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue("<plan>a</plan>", "<plan> </plan>", "<plan>b</plan>")
	p := NewPromptedPolicy(newIdentity(), model.NewParser(m, []string{"plan"}), tmpl(t, prompt.RolePolicy), "plan")

	out, err := p.Sample(context.Background(), "S1", nil, 3)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Plan)
	assert.Equal(t, "b", out[1].Plan)
}

func TestPromptedCritic_Sample(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue(
		"<status>finished</status><on_the_right_track>yes</on_the_right_track>",
		"<status>in_progress</status><on_the_right_track>no</on_the_right_track>",
	)
	c := NewPromptedCritic(newIdentity(), model.NewParser(m, []string{KeyStatus, KeyOnTrack}), tmpl(t, prompt.RoleCritic))

	out, err := c.Sample(context.Background(), "S", nil, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Finished())
	assert.True(t, out[0].OnTrack)
	assert.False(t, out[1].Finished())
	assert.False(t, out[1].OnTrack)
}

func TestPromptedWorldModelAndActor(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue("<next_state>results page</next_state>", "<action>click('12')</action>")
	wm := NewPromptedWorldModel(newIdentity(), model.NewParser(m, []string{KeyNextState}), tmpl(t, prompt.RoleWorldModel), "plan")
	actor := NewPromptedActor(newIdentity(), model.NewParser(m, []string{KeyAction}), tmpl(t, prompt.RoleActor), "plan")

	next, err := wm.Predict(context.Background(), "S", nil, "search")
	require.NoError(t, err)
	assert.Equal(t, "results page", next.NextState)

	act, err := actor.Act(context.Background(), "obs", "S", nil, "search")
	require.NoError(t, err)
	assert.Equal(t, "click('12')", act.Action)
}

func TestPromptedModule_CostTracksParser(t *testing.T) {
	m := model.NewMockModel("gpt-4o-mini", "mock")
	m.SetUsage(model.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 0, TotalTokens: 1_000_000})
	m.Enqueue("<state>s</state>")
	parser := model.NewParser(m, []string{KeyState})
	enc := NewPromptedEncoder(newIdentity(), parser, tmpl(t, prompt.RoleEncoder))

	assert.Zero(t, enc.Cost())
	_, err := enc.Encode(context.Background(), "o", nil)
	require.NoError(t, err)
	assert.Greater(t, enc.Cost(), 0.0)
	assert.Equal(t, parser.Cost(), enc.Cost())
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsEmpty("  \n"))
	assert.False(t, IsEmpty("x"))
	assert.True(t, ParseOnTrack(" Yes "))
	assert.False(t, ParseOnTrack("no"))
}
