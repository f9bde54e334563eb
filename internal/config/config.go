package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/wordgen/internal/decoder"
	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/MeKo-Tech/wordgen/internal/pipeline"
)

// DefaultConfig returns a configuration with the decoder's standard limits.
func DefaultConfig() Config {
	dec := decoder.DefaultConfig()
	return Config{
		LogLevel: "info",
		Decoder: DecoderConfig{
			BeamWidth:         dec.BeamWidth,
			MaxSentenceLength: dec.MaxSentenceLength,
			MaxRounds:         dec.MaxRounds,
			MaxGreedySteps:    dec.MaxGreedySteps,
		},
		Output: OutputConfig{
			Format:   "text",
			TopWords: model.DefaultTopWords,
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			TimeoutSec:        30,
			ShutdownTimeout:   10,
			MaxBodyKB:         256,
			RateLimitEnabled:  false,
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			MaxRequestsPerDay: 10000,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: false,
		},
	}
}

// Validate validates the configuration and returns the first problem found.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Output.TopWords <= 0 {
		return fmt.Errorf("invalid top words: %d (must be positive)", c.Output.TopWords)
	}

	if err := c.ToDecoderConfig().Validate(); err != nil {
		return fmt.Errorf("invalid decoder settings: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if err := validatePositive(c.Server.TimeoutSec, "server.timeout_sec"); err != nil {
		return err
	}
	if err := validatePositive(c.Server.MaxBodyKB, "server.max_body_kb"); err != nil {
		return err
	}
	if c.Server.RateLimitEnabled {
		if err := validatePositive(c.Server.RequestsPerMinute, "server.requests_per_minute"); err != nil {
			return err
		}
		if err := validatePositive(c.Server.RequestsPerHour, "server.requests_per_hour"); err != nil {
			return err
		}
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToDecoderConfig converts the decoder section to decoder.Config.
func (c *Config) ToDecoderConfig() decoder.Config {
	return decoder.Config{
		BeamWidth:         c.Decoder.BeamWidth,
		MaxSentenceLength: c.Decoder.MaxSentenceLength,
		MaxRounds:         c.Decoder.MaxRounds,
		MaxGreedySteps:    c.Decoder.MaxGreedySteps,
	}
}

// ToPipelineConfig converts the config to the generator configuration.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.ModelPath = c.ModelPath
	cfg.Decoder = c.ToDecoderConfig()
	cfg.TopWords = c.Output.TopWords
	cfg.Parallel.MaxWorkers = c.Batch.Workers
	return cfg
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func validatePositive(value int, name string) error {
	if value <= 0 {
		return fmt.Errorf("invalid %s: %d (must be positive)", name, value)
	}
	return nil
}
