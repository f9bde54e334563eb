package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/wordgen/internal/testutil"
)

func writeModels(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		testutil.WriteModel(t, dir, "catsat.txt", testutil.CatSatModel(t)),
		testutil.WriteModel(t, dir, "garden.yaml", testutil.GardenPathModel(t)),
		testutil.WriteModel(t, dir, "tie.json", testutil.TieModel(t)),
	}
}

func TestDefaultParallelConfig(t *testing.T) {
	cfg := DefaultParallelConfig()
	assert.Positive(t, cfg.MaxWorkers)
	assert.Nil(t, cfg.ProgressCallback)
	assert.Nil(t, cfg.ErrorHandler)
}

func TestRunFiles_EmptyInput(t *testing.T) {
	results, err := RunFiles(context.Background(), nil, DefaultConfig())
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "no model files provided")
}

func TestRunFiles_PreservesOrder(t *testing.T) {
	paths := writeModels(t)

	for _, workers := range []int{1, 2, 8} {
		cfg := DefaultConfig()
		cfg.Parallel.MaxWorkers = workers

		results, err := RunFiles(context.Background(), paths, cfg)
		require.NoError(t, err)
		require.Len(t, results, 3)

		for i, res := range results {
			require.NotNil(t, res)
			assert.Equal(t, paths[i], res.Model)
		}
		assert.Equal(t, "<start> cat <end>", results[0].Beam.Text)
		assert.Equal(t, "<start> a <end>", results[1].Beam.Text)
		assert.Equal(t, "<start> left <end>", results[2].Beam.Text)
	}
}

func TestRunFiles_ErrorReporting(t *testing.T) {
	models := writeModels(t)
	paths := []string{models[0], filepath.Join(t.TempDir(), "missing.txt"), models[1]}

	var mu sync.Mutex
	handled := map[int]string{}

	cfg := DefaultConfig()
	cfg.Parallel.MaxWorkers = 2
	cfg.Parallel.ErrorHandler = func(i int, path string, _ error) {
		mu.Lock()
		defer mu.Unlock()
		handled[i] = path
	}

	results, err := RunFiles(context.Background(), paths, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model 1")
	assert.Contains(t, err.Error(), "missing.txt")

	require.Len(t, results, 3)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])
	assert.Equal(t, map[int]string{1: paths[1]}, handled)
}

func TestRunFiles_Progress(t *testing.T) {
	paths := writeModels(t)

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Parallel.ProgressCallback = NewConsoleProgressCallback(&buf, "Models: ").WithUpdateInterval(0)

	_, err := RunFiles(context.Background(), paths, cfg)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Models: 0/3 (0.0%)")
	assert.Contains(t, out, "3/3 (100.0%)")
	assert.Contains(t, out, "Models: Completed in")
}

func TestRunFiles_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := RunFiles(ctx, writeModels(t), DefaultConfig())
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestCalculateParallelStats(t *testing.T) {
	results := []*Result{{}, nil, {}, {}}
	stats := CalculateParallelStats(results, 2*time.Second, 4)

	assert.Equal(t, 4, stats.TotalModels)
	assert.Equal(t, 3, stats.ProcessedModels)
	assert.Equal(t, 1, stats.FailedModels)
	assert.Equal(t, 4, stats.WorkerCount)
	assert.InDelta(t, 1.5, stats.ThroughputPerSec, 1e-9)
	assert.Equal(t, 2*time.Second/3, stats.AveragePerModel)

	empty := CalculateParallelStats(nil, time.Second, 1)
	assert.Zero(t, empty.ThroughputPerSec)
}
