package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestStructuredLogger_ComponentAndArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})
	l.WithComponent("encoder").WithEpisode("ep-1").Info("encoded", "state", "S1")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "encoded", lines[0]["msg"])
	assert.Equal(t, "encoder", lines[0]["component"])
	assert.Equal(t, "ep-1", lines[0]["episode_id"])
	assert.Equal(t, "S1", lines[0]["state"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestStructuredLogger_LogLLMCall(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	l.LogLLMCall("gpt-4o", 120, 0.01, time.Millisecond, nil)
	l.LogLLMCall("gpt-4o", 0, 0, time.Millisecond, errors.New("boom"))
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "LLM call completed", lines[0]["msg"])
	assert.Equal(t, "LLM call failed", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestStructuredLogger_LogStep(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	l.LogStep(1, "click('a')", 0.2, time.Second, "")
	l.LogStep(2, "send_msg_to_user('err')", 0.2, time.Second, "empty state")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "WARN", lines[1]["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("whatever"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestEnsure(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, Ensure(nil))
	l := NewSlogAdapter(slog.Default())
	assert.Same(t, l, Ensure(l))
}

func TestForEpisode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	scoped := ForEpisode(l, "job_1", "ep-7")
	scoped.Info("started")
	done := StartTimer(scoped, "agent.step", "step", 1)
	done()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "ep-7", lines[0]["episode_id"])
	assert.Equal(t, "job_1", lines[0]["job"])
	assert.Equal(t, "agent.step", lines[1]["operation"])
	assert.Equal(t, float64(1), lines[1]["step"])
	assert.Equal(t, "ep-7", lines[1]["episode_id"])

	assert.Equal(t, NoOpLogger{}, ForEpisode(NoOpLogger{}, "job", "ep"))
}
