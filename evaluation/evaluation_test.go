package evaluation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/webreasoner/artifact"
	"github.com/hupe1980/webreasoner/runner"
)

func episode(job, final string, complete bool, errMsg string) *runner.Episode {
	return &runner.Episode{
		ID:         job + "-id",
		Job:        job,
		Goal:       "goal",
		History:    []runner.HistoryEntry{{Action: "click('1')"}, {Action: final}},
		IsComplete: complete,
		Error:      errMsg,
		TotalCost:  0.5,
	}
}

func TestAnswer(t *testing.T) {
	assert.Equal(t, "42", Answer("send_msg_to_user('42')"))
	assert.Equal(t, "it's 42", Answer(`send_msg_to_user("it's 42")`))
	assert.Equal(t, "it's", Answer(`send_msg_to_user('it\'s')`))
	assert.Equal(t, "", Answer("click('1')"))
	assert.Equal(t, "", Answer(""))
}

func TestCompletionEvaluator(t *testing.T) {
	ev := CompletionEvaluator{Expected: map[string]string{"job_1": "Blue"}}

	res, err := ev.Evaluate(episode("job_1", "send_msg_to_user('The color is blue')", true, ""))
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, "The color is blue", res.Answer)
	assert.Equal(t, 2, res.Steps)

	res, err = ev.Evaluate(episode("job_1", "send_msg_to_user('red')", true, ""))
	require.NoError(t, err)
	assert.False(t, res.Complete)

	res, err = ev.Evaluate(episode("job_2", "click('3')", false, "step 2: timed out"))
	require.NoError(t, err)
	assert.False(t, res.Complete)
	assert.Equal(t, "step 2: timed out", res.Error)

	_, err = ev.Evaluate(nil)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]*Result{
		{Complete: true, Steps: 2, Cost: 1},
		{Complete: false, Steps: 4, Cost: 0.5, Error: "boom"},
		nil,
	})
	assert.Equal(t, 2, s.Episodes)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Errored)
	assert.InDelta(t, 0.5, s.SuccessRate, 1e-9)
	assert.InDelta(t, 3.0, s.AvgSteps, 1e-9)
	assert.InDelta(t, 1.5, s.TotalCost, 1e-9)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestEvaluateJobs(t *testing.T) {
	store := artifact.NewInMemoryStore()
	save := func(id string, ep *runner.Episode) {
		data, err := json.Marshal(ep)
		require.NoError(t, err)
		require.NoError(t, store.Save(ep.Job, id, data))
	}
	save("2024-01-01-00-00-00", episode("a", "click('1')", false, "old"))
	save("2024-01-02-00-00-00", episode("a", "send_msg_to_user('done')", true, ""))
	save("2024-01-01-00-00-00", episode("b", "send_msg_to_user('x')", true, ""))

	results, err := EvaluateJobs(store, CompletionEvaluator{}, []string{"a", "b", "missing"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "done", results[0].Answer)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, "b", results[1].Job)

	require.NoError(t, store.Save("c", "2024-01-01-00-00-00", []byte("{not json")))
	_, err = EvaluateJobs(store, CompletionEvaluator{}, []string{"c"})
	assert.Error(t, err)
}

func TestLoadExpected(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	got, err := LoadExpected(write("a.yaml", "job_0: \"10am\"\njob_1: blue\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"job_0": "10am", "job_1": "blue"}, got)

	got, err = LoadExpected(write("a.json", `{"job_2": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, "x", got["job_2"])

	_, err = LoadExpected(write("a.txt", "job: x"))
	assert.Error(t, err)

	_, err = LoadExpected(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
