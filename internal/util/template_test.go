package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate_FastPath(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestRenderTemplate_SprigAndHelpers(t *testing.T) {
	out, err := RenderTemplate(`{{ .name | upper }} {{ tag "state" .state }} {{ .missing | default "none" }}`, map[string]any{
		"name":  "agent",
		"state": "S1",
	})
	require.NoError(t, err)
	assert.Equal(t, "AGENT <state>S1</state> none", out)
}

func TestRenderTemplate_Numbered(t *testing.T) {
	out, err := RenderTemplate(`{{ numbered .items }}`, map[string]any{"items": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "1. a\n2. b", out)
}

func TestRenderTemplate_NoHTMLEscaping(t *testing.T) {
	out, err := RenderTemplate(`{{ .v }}`, map[string]any{"v": "click('<a>')"})
	require.NoError(t, err)
	assert.Equal(t, "click('<a>')", out)
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate(`{{ .v `, nil)
	assert.Error(t, err)
}
