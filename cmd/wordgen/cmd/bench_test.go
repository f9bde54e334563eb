package cmd

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/wordgen/internal/benchmark"
	"github.com/MeKo-Tech/wordgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchCommand_Text(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "catsat.txt", testutil.CatSatText)

	out, _, err := executeCommand(t, "bench", path, "-n", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Model: "+path+" (4 words)")
	for _, stage := range []string{"top_words", "successors", "greedy", "beam", "run"} {
		assert.Contains(t, out, stage+": 5 iterations")
	}
}

func TestBenchCommand_SingleStageJSON(t *testing.T) {
	path := testutil.WriteModel(t, t.TempDir(), "garden.yaml", testutil.GardenPathModel(t))

	out, _, err := executeCommand(t, "bench", path, "--stage", "beam", "--iterations", "3", "--format", "json")
	require.NoError(t, err)

	var results []benchmark.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "beam", results[0].Name)
	assert.Equal(t, 3, results[0].Iterations)
}

func TestBenchCommand_Errors(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "catsat.txt", testutil.CatSatText)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no model", []string{"bench"}, "accepts 1 arg"},
		{"zero iterations", []string{"bench", path, "-n", "0"}, "iterations must be at least 1"},
		{"unknown stage", []string{"bench", path, "--stage", "nope"}, `unknown stage "nope"`},
		{"csv", []string{"bench", path, "--format", "csv"}, "invalid output format"},
		{"bad decoder", []string{"bench", path, "--beam-width", "0"}, "invalid decoder settings"},
		{"missing model", []string{"bench", "missing.txt"}, "failed to create generator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
