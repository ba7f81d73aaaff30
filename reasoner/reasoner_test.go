package reasoner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWorld struct {
	Base[string]
}

func (w *stubWorld) InitState(context.Context) (int, error) { return 0, nil }

func (w *stubWorld) Step(_ context.Context, state int, action string) (int, map[string]any, error) {
	return state + 1, nil, nil
}

func (w *stubWorld) IsTerminal(state int) bool { return state >= 1 }

type stubConfig struct {
	Base[string]
	NeutralFastReward[int, string]
}

func (c *stubConfig) Actions(context.Context, int) ([]string, error) { return []string{"a0"}, nil }

func (c *stubConfig) Reward(context.Context, int, string, map[string]any) (float64, map[string]any, error) {
	return 1, nil, nil
}

var (
	_ WorldModel[int, string, string]   = (*stubWorld)(nil)
	_ SearchConfig[int, string, string] = (*stubConfig)(nil)
)

func TestReasoner_ReturnsAlgorithmOutputVerbatim(t *testing.T) {
	wm, sc := &stubWorld{}, &stubConfig{}
	want := &AlgorithmOutput[int, string]{
		TerminalState: 1,
		Trace:         Trace[int, string]{States: []int{0, 1}, Actions: []string{"a0"}},
	}
	var gotWM WorldModel[int, string, string]
	var gotSC SearchConfig[int, string, string]
	algo := SearchFunc[int, string, string](func(_ context.Context, w WorldModel[int, string, string], s SearchConfig[int, string, string]) (*AlgorithmOutput[int, string], error) {
		gotWM, gotSC = w, s
		return want, nil
	})

	r := New[int, string, string](wm, sc, algo)
	got, err := r.Run(context.Background(), "example-1")
	require.NoError(t, err)

	assert.Same(t, want, got)
	assert.Equal(t, "example-1", wm.Example())
	assert.Equal(t, "example-1", sc.Example())
	assert.Same(t, wm, gotWM)
	assert.Same(t, sc, gotSC)
}

func TestReasoner_PropagatesFailure(t *testing.T) {
	algo := SearchFunc[int, string, string](func(context.Context, WorldModel[int, string, string], SearchConfig[int, string, string]) (*AlgorithmOutput[int, string], error) {
		return nil, ErrNoTerminalState
	})
	out, err := New[int, string, string](&stubWorld{}, &stubConfig{}, algo).Run(context.Background(), "e")
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrNoTerminalState))
}

func TestBase_PromptOnlyReplacedWhenGiven(t *testing.T) {
	var b Base[string]
	b.UpdateExample("e1", WithPrompt("p1"))
	assert.Equal(t, "p1", b.Prompt())

	b.UpdateExample("e2")
	assert.Equal(t, "e2", b.Example())
	assert.Equal(t, "p1", b.Prompt())
}

func TestNeutralFastReward(t *testing.T) {
	var n NeutralFastReward[int, string]
	r, aux, err := n.FastReward(context.Background(), 3, "x")
	require.NoError(t, err)
	assert.Zero(t, r)
	assert.NotNil(t, aux)
	assert.Empty(t, aux)
}
