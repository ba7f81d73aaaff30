package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/webreasoner/cognitive"
	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/internal/testutil"
	"github.com/hupe1980/webreasoner/memory"
	"github.com/hupe1980/webreasoner/reasoner"
)

var (
	_ Planner = (*PolicyPlanner)(nil)
	_ Planner = (*SearchPlanner)(nil)
)

func TestPolicyPlanner_CallsPolicyOnce(t *testing.T) {
	policy := &testutil.StubPolicy{Plan: "P1"}
	p := NewPolicyPlanner(policy, "intent")

	out, err := p.Plan(context.Background(), "S1", memory.NewStepKeyValue([]string{"state"}))
	require.NoError(t, err)
	assert.Equal(t, Output{Name: "intent", Plan: "P1"}, out)
	assert.Equal(t, 1, policy.Calls())
}

func TestPlanners_SameOutputName(t *testing.T) {
	const name = "intent"
	policy := &testutil.StubPolicy{Plan: "click search"}
	direct, err := New(KindPolicy, name, Deps{Policy: policy})
	require.NoError(t, err)
	search, err := New(KindWorldModel, name, Deps{
		Policy:     policy,
		WorldModel: &testutil.StubWorldModel{},
		Critic:     &testutil.StubCritic{},
	}, func(o *SearchOptions) { o.NumActions = 2; o.CriticNumSamples = 2 })
	require.NoError(t, err)

	d, err := direct.Plan(context.Background(), "S", nil)
	require.NoError(t, err)
	s, err := search.Plan(context.Background(), "S", nil)
	require.NoError(t, err)

	assert.Equal(t, name, d.Name)
	assert.Equal(t, d.Name, s.Name)
	assert.Equal(t, d.Plan, s.Plan)
}

func TestSearchPlanner_PicksBestScoredPlan(t *testing.T) {
	policy := &testutil.StubPolicy{Samples: []string{"go back", "open cart", "go back", "checkout"}}
	critic := &testutil.StubCritic{Judge: func(state string) cognitive.CriticOutput {
		switch {
		case strings.HasSuffix(state, "checkout"):
			return cognitive.CriticOutput{Status: cognitive.StatusFinished, OnTrack: true}
		case strings.HasSuffix(state, "open cart"):
			return cognitive.CriticOutput{Status: "in_progress", OnTrack: true}
		default:
			return cognitive.CriticOutput{Status: "in_progress", OnTrack: false}
		}
	}}
	wm := &testutil.StubWorldModel{}
	p := NewSearchPlanner(policy, wm, critic, func(o *SearchOptions) {
		o.OutputName = "plan"
		o.NumActions = 4
		o.CriticNumSamples = 3
		o.BeamWidth = 3
	})

	out, err := p.Plan(context.Background(), "cart page", nil)
	require.NoError(t, err)
	assert.Equal(t, "checkout", out.Plan)
	// duplicates are evaluated once
	assert.Equal(t, 3, wm.Calls())
	assert.Equal(t, 3, critic.Calls())
}

func TestSearchPlanner_DFS(t *testing.T) {
	policy := &testutil.StubPolicy{Samples: []string{"a", "b"}}
	p := NewSearchPlanner(policy, &testutil.StubWorldModel{}, &testutil.StubCritic{}, func(o *SearchOptions) {
		o.Algorithm = AlgorithmDFS
		o.NumActions = 2
		o.CriticNumSamples = 1
	})
	out, err := p.Plan(context.Background(), "S", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", out.Plan)
}

func TestSearchPlanner_NoTerminalIsEmptyPlan(t *testing.T) {
	policy := &testutil.StubPolicy{Samples: []string{"   "}}
	p := NewSearchPlanner(policy, &testutil.StubWorldModel{}, &testutil.StubCritic{}, func(o *SearchOptions) {
		o.OutputName = "intent"
	})
	out, err := p.Plan(context.Background(), "S", nil)
	require.NoError(t, err)
	assert.Equal(t, Output{Name: "intent"}, out)
}

func TestSearchPlanner_CustomAlgorithmSeesExample(t *testing.T) {
	mem := memory.NewStepKeyValue([]string{"state"})
	var seen PlanExample
	algo := reasoner.SearchFunc[PlanState, string, PlanExample](func(ctx context.Context, wm reasoner.WorldModel[PlanState, string, PlanExample], sc reasoner.SearchConfig[PlanState, string, PlanExample]) (*reasoner.AlgorithmOutput[PlanState, string], error) {
		root, err := wm.InitState(ctx)
		if err != nil {
			return nil, err
		}
		seen = PlanExample{State: root.State, Memory: mem}
		return &reasoner.AlgorithmOutput[PlanState, string]{
			TerminalState: PlanState{State: "done", Depth: 1},
			Trace:         reasoner.Trace[PlanState, string]{States: []PlanState{root, {State: "done", Depth: 1}}, Actions: []string{"first"}},
		}, nil
	})
	p := NewSearchPlanner(&testutil.StubPolicy{}, &testutil.StubWorldModel{}, &testutil.StubCritic{}, func(o *SearchOptions) {
		o.SearchAlgorithm = algo
	})
	out, err := p.Plan(context.Background(), "S0", mem)
	require.NoError(t, err)
	assert.Equal(t, "first", out.Plan)
	assert.Equal(t, core.FieldPlan, out.Name)
	assert.Equal(t, "S0", seen.State)
}

func TestSearchPlanner_PolicyErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	p := NewSearchPlanner(&testutil.StubPolicy{Err: boom}, &testutil.StubWorldModel{}, &testutil.StubCritic{})
	_, err := p.Plan(context.Background(), "S", nil)
	assert.ErrorIs(t, err, boom)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("mcts", "plan", Deps{})
	assert.ErrorIs(t, err, core.ErrUnsupportedPlanner)

	_, err = New(KindWorldModel, "plan", Deps{Policy: &testutil.StubPolicy{}})
	assert.Error(t, err)
}

func TestSearchConfig_RewardScoring(t *testing.T) {
	critic := &testutil.StubCritic{Judge: func(string) cognitive.CriticOutput {
		return cognitive.CriticOutput{Status: cognitive.StatusFinished, OnTrack: true}
	}}
	sc := &searchConfig{critic: critic, criticSamples: 4}
	r, aux, err := sc.Reward(context.Background(), PlanState{State: "S"}, "a", map[string]any{auxNextState: "S'"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, r)
	assert.Equal(t, 4, aux["samples"])
}

func TestPlanners_ReportModuleCost(t *testing.T) {
	policy := &testutil.StubPolicy{Plan: "p"}
	wm := &testutil.StubWorldModel{}
	critic := &testutil.StubCritic{}
	policy.SetCost(1)
	wm.SetCost(0.5)
	critic.SetCost(0.25)

	assert.InDelta(t, 1, NewPolicyPlanner(policy, "plan").Cost(), 1e-9)
	assert.InDelta(t, 1.75, NewSearchPlanner(policy, wm, critic).Cost(), 1e-9)

	critic.SetCost(1)
	assert.InDelta(t, 2.5, NewSearchPlanner(policy, wm, critic).Cost(), 1e-9)
}
