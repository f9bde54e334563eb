package cmd

import (
	"testing"

	"github.com/MeKo-Tech/wordgen/internal/config"
	"github.com/MeKo-Tech/wordgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommandFlags(t *testing.T) {
	for _, name := range []string{
		"model", "host", "port", "cors-origin", "max-body-kb", "timeout", "shutdown-timeout",
		"beam-width", "max-rounds", "max-length", "max-greedy-steps",
		"rate-limit-enabled", "requests-per-minute", "requests-per-hour", "max-requests-per-day",
	} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), "missing flag --%s", name)
	}
}

func TestConfigToServerConfig(t *testing.T) {
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	path := testutil.WriteModel(t, t.TempDir(), "garden.txt", testutil.GardenPathModel(t))
	require.NoError(t, serveCmd.ParseFlags([]string{
		"--model", path,
		"--port", "9090",
		"--cors-origin", "https://example.com",
		"--beam-width", "3",
		"--rate-limit-enabled",
		"--requests-per-minute", "5",
	}))

	cfg := config.DefaultConfig()
	sc, shutdown, err := configToServerConfig(&cfg, serveCmd)
	require.NoError(t, err)

	assert.Equal(t, "localhost", sc.Host)
	assert.Equal(t, 9090, sc.Port)
	assert.Equal(t, "https://example.com", sc.CORSOrigin)
	assert.Equal(t, int64(256), sc.MaxBodyKB)
	assert.True(t, sc.RateLimit.Enabled)
	assert.Equal(t, 5, sc.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10, shutdown)

	require.NotNil(t, sc.Generator)
	assert.Equal(t, 3, sc.Generator.Config().Decoder.BeamWidth)
	assert.Equal(t, 4, sc.Generator.Model.Size())
}

func TestConfigToServerConfig_Errors(t *testing.T) {
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	cfg := config.DefaultConfig()
	_, _, err := configToServerConfig(&cfg, serveCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model given")

	cfg = config.DefaultConfig()
	cfg.ModelPath = "does-not-exist.txt"
	_, _, err = configToServerConfig(&cfg, serveCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create generator")

	require.NoError(t, serveCmd.ParseFlags([]string{"--port", "70000"}))
	cfg = config.DefaultConfig()
	cfg.ModelPath = "does-not-exist.txt"
	_, _, err = configToServerConfig(&cfg, serveCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}
