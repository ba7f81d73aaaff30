package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/webreasoner"
)

func TestParseFlags(t *testing.T) {
	_, err := parseFlags([]string{})
	assert.Error(t, err)

	_, err = parseFlags([]string{"-goal", "a", "-goals", "b.txt"})
	assert.Error(t, err)

	f, err := parseFlags([]string{"-goal", "buy milk", "-max-steps", "5", "-timeout", "10s"})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", f.goal)
	assert.Equal(t, 5, f.maxSteps)
	assert.Equal(t, "10s", f.timeout.String())
	assert.Equal(t, "browsergym", f.configName)
}

func TestLoadJobs_Range(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.txt")
	require.NoError(t, os.WriteFile(path, []byte("g0\n\ng1\ng2\ng3\n"), 0o600))

	jobs, err := loadJobs(flags{job: "run", goalsFile: path, start: 1, end: 3})
	require.NoError(t, err)
	assert.Equal(t, []webreasoner.Job{{Name: "run_1", Goal: "g1"}, {Name: "run_2", Goal: "g2"}}, jobs)

	jobs, err = loadJobs(flags{job: "run", goalsFile: path, start: 2, end: -1})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = loadJobs(flags{job: "run", goalsFile: path, start: 5, end: -1})
	assert.Error(t, err)
}

func TestLoadJobs_SingleGoal(t *testing.T) {
	jobs, err := loadJobs(flags{job: "solo", goal: "find the price"})
	require.NoError(t, err)
	assert.Equal(t, []webreasoner.Job{{Name: "solo", Goal: "find the price"}}, jobs)
}

func TestNewModel_UnknownProvider(t *testing.T) {
	_, err := newModel(flags{provider: "nope"})
	assert.Error(t, err)
}
