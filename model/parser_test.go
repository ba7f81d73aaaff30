package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/webreasoner/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_CallExtractsKeys(t *testing.T) {
	m := NewMockModel("gpt-4o", "mock")
	m.Enqueue("<think>because</think>\n<state> page shows cart </state>")
	p := NewParser(m, []string{"state"}, func(o *ParserOptions) { o.OptionalKeys = []string{"think"} })

	fields, err := p.Call(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "page shows cart", fields["state"])
	assert.Equal(t, "because", fields["think"])
}

func TestParser_RetriesOnMissingKeys(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.Enqueue("no tags here", "<action>click('a1')</action>")
	p := NewParser(m, []string{"action"})

	fields, err := p.Call(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "click('a1')", fields["action"])
	assert.Equal(t, 2, m.Calls())
}

func TestParser_GivesUpAfterMaxRetries(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.Enqueue("x", "y")
	p := NewParser(m, []string{"action"}, func(o *ParserOptions) { o.MaxRetries = 2 })

	_, err := p.Call(context.Background(), "sys", "user")
	assert.True(t, errors.Is(err, ErrMissingOutput))
	assert.Equal(t, 2, m.Calls())
}

func TestParser_AccumulatesCost(t *testing.T) {
	m := NewMockModel("gpt-4o", "mock")
	m.SetUsage(TokenUsage{PromptTokens: 1000, CompletionTokens: 100, TotalTokens: 1100})
	m.Enqueue("<a>1</a>", "<a>2</a>")
	p := NewParser(m, []string{"a"})

	_, err := p.Call(context.Background(), "s", "u")
	require.NoError(t, err)
	first := p.Cost()
	assert.InDelta(t, (1000*2.5+100*10.0)/1e6, first, 1e-12)

	_, err = p.Call(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.InDelta(t, 2*first, p.Cost(), 1e-12)
}

func TestParser_SampleSkipsFailures(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.Enqueue("<plan>a</plan>", "junk", "<plan>b</plan>")
	p := NewParser(m, []string{"plan"}, func(o *ParserOptions) { o.MaxRetries = 1 })

	samples, err := p.Sample(context.Background(), "s", "u", 3)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "a", samples[0]["plan"])
	assert.Equal(t, "b", samples[1]["plan"])
}

func TestParser_SampleAllFail(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.Enqueue("junk", "junk")
	p := NewParser(m, []string{"plan"}, func(o *ParserOptions) { o.MaxRetries = 1 })
	_, err := p.Sample(context.Background(), "s", "u", 2)
	assert.True(t, errors.Is(err, ErrMissingOutput))
}

func TestParser_RespectsLimiter(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.Enqueue("<a>1</a>", "<a>2</a>")
	limiter := core.NewCallLimiter(1)
	p := NewParser(m, []string{"a"}, func(o *ParserOptions) { o.Limiter = limiter })

	_, err := p.Call(context.Background(), "s", "u")
	require.NoError(t, err)
	_, err = p.Call(context.Background(), "s", "u")
	assert.Error(t, err)
	assert.Equal(t, 1, m.Calls())
}
