package space

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/internal/testutil"
)

var (
	_ core.ObservationSpace = (*BrowserGymObservationSpace)(nil)
	_ core.ObservationSpace = (*OpenDevinObservationSpace)(nil)
	_ core.Resetter         = (*OpenDevinObservationSpace)(nil)
	_ core.ActionSpace      = (*BrowserActionSpace)(nil)
)

func TestBrowserGymObservationSpace_Parse(t *testing.T) {
	raw := testutil.NewObservationBuilder().
		Goal("buy shoes").
		URL("http://shop.test").
		AXTree("[1] link 'Home'").
		LastAction("click('9')", "element not found").
		Build()

	obs, info, err := NewBrowserGymObservationSpace().ParseObservation(raw)
	require.NoError(t, err)
	assert.Equal(t, "buy shoes", info.Goal)
	assert.Equal(t, "http://shop.test", info.URL)
	assert.False(t, info.HasReturnAction())
	assert.Contains(t, obs, "# Current Page URL\nhttp://shop.test")
	assert.Contains(t, obs, "Tab 0: about:blank")
	assert.Contains(t, obs, "[1] link 'Home'")
	assert.Contains(t, obs, "# Previous Action\nclick('9')")
	assert.Contains(t, obs, "# Error Message from Previous Action\nelement not found")
}

func TestObservationSpace_Nil(t *testing.T) {
	_, _, err := NewBrowserGymObservationSpace().ParseObservation(nil)
	assert.Error(t, err)
	_, _, err = NewOpenDevinObservationSpace(false, false).ParseObservation(nil)
	assert.Error(t, err)
}

func TestOpenDevinObservationSpace_TooManyErrors(t *testing.T) {
	s := NewOpenDevinObservationSpace(false, false)
	failing := testutil.NewObservationBuilder().Goal("g").LastAction("click('1')", "timeout").Build()

	for i := 1; i < s.MaxErrors; i++ {
		_, info, err := s.ParseObservation(failing)
		require.NoError(t, err)
		assert.False(t, info.HasReturnAction(), "error %d", i)
	}
	_, info, err := s.ParseObservation(failing)
	require.NoError(t, err)
	assert.Equal(t, TooManyErrorsAction, info.ReturnAction)

	s.Reset()
	_, info, err = s.ParseObservation(failing)
	require.NoError(t, err)
	assert.False(t, info.HasReturnAction())
}

func TestOpenDevinObservationSpace_SuccessResetsCounter(t *testing.T) {
	s := NewOpenDevinObservationSpace(false, false)
	s.MaxErrors = 2
	failing := testutil.NewObservationBuilder().LastAction("a()", "boom").Build()
	ok := testutil.NewObservationBuilder().LastAction("a()", "").Build()

	_, _, _ = s.ParseObservation(failing)
	_, _, _ = s.ParseObservation(ok)
	_, info, _ := s.ParseObservation(failing)
	assert.False(t, info.HasReturnAction())
	assert.Equal(t, 1, info.Extra["error_count"])
}

func TestOpenDevinObservationSpace_EvalModePinsGoal(t *testing.T) {
	s := NewOpenDevinObservationSpace(true, false)
	_, info, _ := s.ParseObservation(testutil.NewObservationBuilder().Goal("first").Build())
	assert.Equal(t, "first", info.Goal)
	_, info, _ = s.ParseObservation(testutil.NewObservationBuilder().Goal("").Build())
	assert.Equal(t, "first", info.Goal)
}

func TestOpenDevinObservationSpace_Truncation(t *testing.T) {
	s := NewOpenDevinObservationSpace(false, true)
	s.MaxAXTreeChars = 10
	obs, info, err := s.ParseObservation(testutil.NewObservationBuilder().AXTree(strings.Repeat("x", 50)).Build())
	require.NoError(t, err)
	assert.Contains(t, obs, strings.Repeat("x", 10)+"\n...(truncated)")
	assert.NotContains(t, obs, strings.Repeat("x", 11))
	assert.Equal(t, true, info.Extra["truncated"])
}

func TestOpenDevinObservationSpace_TruncationKeepsRunesWhole(t *testing.T) {
	s := NewOpenDevinObservationSpace(false, true)
	s.MaxAXTreeChars = 10
	// Each "ä" is two bytes, so byte 10 is not a rune boundary after the prefix.
	obs, info, err := s.ParseObservation(testutil.NewObservationBuilder().AXTree("x" + strings.Repeat("ä", 20)).Build())
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(obs))
	assert.Contains(t, obs, "x"+strings.Repeat("ä", 4)+"\n...(truncated)")
	assert.Equal(t, true, info.Extra["truncated"])
}

func TestBrowserActionSpace_Describe(t *testing.T) {
	s := NewBrowserActionSpace()
	assert.Contains(t, s.Describe(), "send_msg_to_user(text: str)")
	assert.Contains(t, s.Describe(), "Only a single action can be provided at once.")
	assert.NotContains(t, s.Describe(), "goto(url: str)")

	nav := NewBrowserActionSpace(func(o *ActionSpaceOptions) { o.UseNav = true })
	assert.Contains(t, nav.Describe(), "goto(url: str)")
	assert.Contains(t, nav.Functions(), "go_back")
}

func TestBrowserActionSpace_ParseAction(t *testing.T) {
	s := NewBrowserActionSpace()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  click('12')  ", "click('12')"},
		{"fenced", "```python\nfill('3', 'shoes')\n```", "fill('3', 'shoes')"},
		{"first of many", "click('1')\nclick('2')", "click('1')"},
		{"skips prose", "I will click.\nclick('7')", "click('7')"},
		{"multiline call", "send_msg_to_user('a\n(b)')\nclick('1')", "send_msg_to_user('a\n(b)')"},
		{"escaped quote", `fill('3', 'it\'s')` + "\nclick('1')", `fill('3', 'it\'s')`},
		{"escaped quote before paren", `fill('3', 'it\'s (big)') trailing`, `fill('3', 'it\'s (big)')`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, info := s.ParseAction(tt.in, core.StepInfo{})
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, info.Action)
			assert.Equal(t, true, info.Extra["action_valid"])
		})
	}
}

func TestBrowserActionSpace_StrictRejectsUnknown(t *testing.T) {
	const errAction = "send_msg_to_user('Error encountered when browsing.')"
	lenient := NewBrowserActionSpace(func(o *ActionSpaceOptions) { o.ErrorAction = errAction })
	got, info := lenient.ParseAction("goto('x')", core.StepInfo{})
	assert.Equal(t, "goto('x')", got)
	assert.Equal(t, false, info.Extra["action_valid"])

	strict := NewBrowserActionSpace(func(o *ActionSpaceOptions) {
		o.Strict = true
		o.ErrorAction = errAction
	})
	got, _ = strict.ParseAction("goto('x')", core.StepInfo{})
	assert.Equal(t, errAction, got)
}

func TestNew(t *testing.T) {
	p, err := New(EnvOpenDevin, Options{EvalMode: true})
	require.NoError(t, err)
	assert.IsType(t, &OpenDevinObservationSpace{}, p.Observation)
	assert.Len(t, p.Resettables(), 1)

	p, err = New(EnvBrowserGym, Options{})
	require.NoError(t, err)
	assert.Empty(t, p.Resettables())

	_, err = New("desktop", Options{})
	assert.ErrorIs(t, err, core.ErrUnsupportedEnvironment)
}
