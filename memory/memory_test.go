package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/model"
	"github.com/hupe1980/webreasoner/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Memory       = (*StepKeyValue)(nil)
	_ core.Memory       = (*StepPrompted)(nil)
	_ core.CostReporter = (*StepPrompted)(nil)
)

func TestStepKeyValue_UpdateAndStep(t *testing.T) {
	m := NewStepKeyValue([]string{"state", "plan"})
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, map[string]string{"state": "S1", "plan": "P1", "obs": "ignored"}))
	assert.Equal(t, core.Record{"state": "S1", "plan": "P1"}, m.CurrentStep())
	require.NoError(t, m.Step())

	hist := m.History()
	require.Len(t, hist, 1)
	assert.Equal(t, core.Record{"state": "S1", "plan": "P1"}, hist[0])
	assert.Equal(t, core.Record{"state": "S1", "plan": "P1"}, m.CurrentStep())
}

func TestStepKeyValue_MissingKeyLeavesStagingUntouched(t *testing.T) {
	m := NewStepKeyValue([]string{"state", "plan"})
	ctx := context.Background()
	require.NoError(t, m.Update(ctx, map[string]string{"state": "S1", "plan": "P1"}))

	err := m.Update(ctx, map[string]string{"state": "S2"})
	var mk *core.MissingKeyError
	require.True(t, errors.As(err, &mk))
	assert.Equal(t, "plan", mk.Key)
	assert.Equal(t, core.Record{"state": "S1", "plan": "P1"}, m.CurrentStep())
}

func TestStepKeyValue_StepWithoutUpdateFails(t *testing.T) {
	m := NewStepKeyValue([]string{"state"})
	err := m.Step()
	var mk *core.MissingKeyError
	require.True(t, errors.As(err, &mk))
	assert.Equal(t, "state", mk.Key)

	ctx := context.Background()
	require.NoError(t, m.Update(ctx, map[string]string{"state": "S"}))
	require.NoError(t, m.Step())
	assert.Error(t, m.Step(), "staging is cleared after commit")
}

func TestStepKeyValue_NStepsInOrder(t *testing.T) {
	keys := []string{"state", "intent"}
	m := NewStepKeyValue(keys)
	ctx := context.Background()
	const n = 7
	for i := 0; i < n; i++ {
		require.NoError(t, m.Update(ctx, map[string]string{
			"state":  fmt.Sprintf("S%d", i),
			"intent": fmt.Sprintf("I%d", i),
			"action": "noop",
		}))
		require.NoError(t, m.Step())
	}

	hist := m.History()
	require.Len(t, hist, n)
	for i, rec := range hist {
		assert.Len(t, rec, len(keys))
		assert.Equal(t, fmt.Sprintf("S%d", i), rec["state"])
		assert.Equal(t, fmt.Sprintf("I%d", i), rec["intent"])
	}
}

func TestStepKeyValue_HistoryIsCopy(t *testing.T) {
	m := NewStepKeyValue([]string{"state"})
	require.NoError(t, m.Update(context.Background(), map[string]string{"state": "S"}))
	require.NoError(t, m.Step())
	m.History()[0]["state"] = "changed"
	assert.Equal(t, "S", m.History()[0]["state"])
}

func TestStepKeyValue_RenderAndReset(t *testing.T) {
	m := NewStepKeyValue([]string{"state", "plan"})
	assert.Empty(t, m.Render())
	require.NoError(t, m.Update(context.Background(), map[string]string{"state": "S1", "plan": "P1"}))
	require.NoError(t, m.Step())
	assert.Equal(t, "## Step 1\nstate: S1\nplan: P1", m.Render())

	m.Reset()
	assert.Empty(t, m.History())
	assert.Empty(t, m.CurrentStep())
}

func TestStepKeyValue_CanceledContext(t *testing.T) {
	m := NewStepKeyValue([]string{"state"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Update(ctx, map[string]string{"state": "S"}), context.Canceled)
}

func newPrompted(t *testing.T, responses ...string) (*StepPrompted, *model.MockModel) {
	t.Helper()
	mm := model.NewMockModel("mock", "mock")
	mm.Enqueue(responses...)
	tmpl, err := prompt.Get(prompt.RoleMemoryUpdate, "")
	require.NoError(t, err)
	parser := model.NewParser(mm, []string{KeyMemoryUpdate}, func(o *model.ParserOptions) { o.MaxRetries = 1 })
	return NewStepPrompted(nil, parser, tmpl, []string{"intent"}, nil), mm
}

func TestStepPrompted_StagesSummary(t *testing.T) {
	m, mm := newPrompted(t, "<memory_update>searched for shoes</memory_update>")
	require.NoError(t, m.Update(context.Background(), map[string]string{"intent": "search", "state": "S"}))
	require.NoError(t, m.Step())

	assert.Equal(t, 1, mm.Calls())
	assert.Equal(t, []string{"intent", KeyMemoryUpdate}, m.Keys())
	assert.Equal(t, []core.Record{{"intent": "search", KeyMemoryUpdate: "searched for shoes"}}, m.History())
}

func TestStepPrompted_EmptySummaryIsMissingKey(t *testing.T) {
	m, _ := newPrompted(t, "<memory_update> </memory_update>")
	err := m.Update(context.Background(), map[string]string{"intent": "search"})
	var mk *core.MissingKeyError
	require.True(t, errors.As(err, &mk))
	assert.Equal(t, KeyMemoryUpdate, mk.Key)
}

func TestStepPrompted_MissingInputSkipsModel(t *testing.T) {
	m, mm := newPrompted(t)
	err := m.Update(context.Background(), map[string]string{"state": "S"})
	var mk *core.MissingKeyError
	require.True(t, errors.As(err, &mk))
	assert.Equal(t, "intent", mk.Key)
	assert.Zero(t, mm.Calls())
}

func TestNew(t *testing.T) {
	m, err := New(KindStepKeyValue, []string{"state"})
	require.NoError(t, err)
	assert.IsType(t, &StepKeyValue{}, m)

	_, err = New(KindStepPrompted, []string{"plan"})
	assert.Error(t, err)

	_, err = New("vector", nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedMemory)
}
