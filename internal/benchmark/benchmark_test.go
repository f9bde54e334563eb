package benchmark

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/MeKo-Tech/wordgen/internal/testutil"
)

func TestTimer(t *testing.T) {
	timer := NewTimer("test_timer")
	time.Sleep(10 * time.Millisecond)

	duration := timer.Stop()
	assert.GreaterOrEqual(t, duration, 10*time.Millisecond)
	assert.Equal(t, duration, timer.Duration())
	assert.Contains(t, timer.String(), "test_timer")
}

func TestSuiteRun(t *testing.T) {
	suite := NewSuite()
	suite.Add("success_test", func() error {
		time.Sleep(time.Millisecond)
		return nil
	})

	calls := 0
	suite.Add("error_test", func() error {
		calls++
		if calls == 2 {
			return errors.New("test error")
		}
		return nil
	})
	assert.Equal(t, []string{"success_test", "error_test"}, suite.Names())

	result := suite.Run("success_test", 5)
	assert.Equal(t, "success_test", result.Name)
	assert.Equal(t, 5, result.Iterations)
	require.NoError(t, result.Error)
	assert.Positive(t, result.Duration)
	assert.Positive(t, result.Average())

	result = suite.Run("error_test", 3)
	require.Error(t, result.Error)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, "test error", result.ErrorMessage)
	assert.Contains(t, result.String(), "ERROR - test error")

	result = suite.Run("non_existent", 1)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "not found")
	assert.Zero(t, result.Average())
}

func TestSuiteRunAll(t *testing.T) {
	suite := NewSuite()
	suite.Add("fast_test", func() error {
		time.Sleep(time.Millisecond)
		return nil
	})
	suite.Add("slow_test", func() error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	results, err := suite.RunAll(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results, suite.Results())
	assert.Greater(t, results[1].Duration, results[0].Duration)

	var buf bytes.Buffer
	suite.WriteResults(&buf)
	assert.Contains(t, buf.String(), "Benchmark Results:")
	assert.Contains(t, buf.String(), "fast_test: 3 iterations")
	assert.Contains(t, buf.String(), "slow_test: 3 iterations")
}

func TestSuiteRunAll_Canceled(t *testing.T) {
	suite := NewSuite()
	suite.Add("never", func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := suite.RunAll(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestGeneratorSuite(t *testing.T) {
	g, err := pipeline.NewBuilder().WithModel(testutil.GardenPathModel(t)).Build()
	require.NoError(t, err)

	suite := NewGeneratorSuite(context.Background(), g)
	assert.Equal(t, []string{StageTopWords, StageSuccessors, StageGreedy, StageBeam, StageRun}, suite.Names())

	results, err := suite.RunAll(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		require.NoError(t, r.Error, r.Name)
		assert.Equal(t, 10, r.Iterations, r.Name)
	}
}

func BenchmarkBeam_Random(b *testing.B) {
	m := testutil.RandomModel(b, 7, 200, 0.3)
	g, err := pipeline.NewBuilder().WithModel(m).Build()
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for range b.N {
		_ = g.Beam()
	}
}
