// Package pipeline wires a loaded transition model to the decoders and runs
// the four generation stages: top words, most likely successors, greedy
// decoding and beam decoding.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/wordgen/internal/decoder"
	"github.com/MeKo-Tech/wordgen/internal/model"
)

// Config holds configuration for a Generator.
type Config struct {
	ModelPath string
	Decoder   decoder.Config
	TopWords  int // entries reported by the top-words stage
	Start     int // start word for the greedy walk

	Parallel ParallelConfig
}

// DefaultConfig returns a default generator config.
func DefaultConfig() Config {
	return Config{
		Decoder:  decoder.DefaultConfig(),
		TopWords: model.DefaultTopWords,
		Start:    model.StartIndex,
		Parallel: DefaultParallelConfig(),
	}
}

// Builder constructs a Generator with fluent configuration.
type Builder struct {
	cfg   Config
	model *model.Model
}

// NewBuilder creates a new generator builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithModelPath sets the model file to load on Build.
func (b *Builder) WithModelPath(path string) *Builder {
	b.cfg.ModelPath = path
	return b
}

// WithModel uses an already loaded model; it takes precedence over the model path.
func (b *Builder) WithModel(m *model.Model) *Builder {
	b.model = m
	return b
}

// WithDecoderConfig replaces all decoder settings at once.
func (b *Builder) WithDecoderConfig(cfg decoder.Config) *Builder {
	b.cfg.Decoder = cfg
	return b
}

// WithBeamWidth sets the number of hypotheses kept per round.
func (b *Builder) WithBeamWidth(k int) *Builder {
	if k > 0 {
		b.cfg.Decoder.BeamWidth = k
	}
	return b
}

// WithMaxRounds sets the beam expansion budget.
func (b *Builder) WithMaxRounds(n int) *Builder {
	if n > 0 {
		b.cfg.Decoder.MaxRounds = n
	}
	return b
}

// WithMaxSentenceLength sets the token bound per hypothesis.
func (b *Builder) WithMaxSentenceLength(n int) *Builder {
	if n > 0 {
		b.cfg.Decoder.MaxSentenceLength = n
	}
	return b
}

// WithMaxGreedySteps sets the greedy walk's regular-word cap.
func (b *Builder) WithMaxGreedySteps(n int) *Builder {
	if n >= 0 {
		b.cfg.Decoder.MaxGreedySteps = n
	}
	return b
}

// WithTopWords sets how many words the first stage reports.
func (b *Builder) WithTopWords(n int) *Builder {
	if n > 0 {
		b.cfg.TopWords = n
	}
	return b
}

// WithParallelWorkers sets the worker count for multi-model runs.
func (b *Builder) WithParallelWorkers(workers int) *Builder {
	if workers > 0 {
		b.cfg.Parallel.MaxWorkers = workers
	}
	return b
}

// WithProgressCallback sets progress reporting for multi-model runs.
func (b *Builder) WithProgressCallback(callback ProgressCallback) *Builder {
	b.cfg.Parallel.ProgressCallback = callback
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that a model source is set and the decoder settings are sane.
func (b *Builder) Validate() error {
	if b.model == nil && b.cfg.ModelPath == "" {
		return errors.New("model path is empty")
	}
	if err := b.cfg.Decoder.Validate(); err != nil {
		return fmt.Errorf("decoder config: %w", err)
	}
	if b.cfg.TopWords <= 0 {
		return errors.New("top words must be > 0")
	}
	return nil
}

// Generator runs the generation stages against one model. It is safe for
// concurrent use: the model is read-only and every decode owns its own pool.
type Generator struct {
	cfg   Config
	Model *model.Model
}

// Build loads the model if needed and returns a ready Generator.
func (b *Builder) Build() (*Generator, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	m := b.model
	if m == nil {
		var err error
		m, err = model.LoadFile(b.cfg.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
	}
	if b.cfg.Start < 0 || b.cfg.Start >= m.Size() {
		return nil, fmt.Errorf("start word %d out of range for vocabulary of %d", b.cfg.Start, m.Size())
	}

	slog.Debug("Generator ready",
		"model", b.cfg.ModelPath,
		"vocabulary", m.Size(),
		"beam_width", b.cfg.Decoder.BeamWidth,
		"max_rounds", b.cfg.Decoder.MaxRounds)

	return &Generator{cfg: b.cfg, Model: m}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() Config { return g.cfg }

// WithDecoder returns a generator sharing the model but decoding with cfg.
func (g *Generator) WithDecoder(cfg decoder.Config) *Generator {
	c := g.cfg
	c.Decoder = cfg
	return &Generator{cfg: c, Model: g.Model}
}

// Info returns a map with key generator properties.
func (g *Generator) Info() map[string]interface{} {
	return map[string]interface{}{
		"model_path":          g.cfg.ModelPath,
		"vocabulary_size":     g.Model.Size(),
		"beam_width":          g.cfg.Decoder.BeamWidth,
		"max_sentence_length": g.cfg.Decoder.MaxSentenceLength,
		"max_rounds":          g.cfg.Decoder.MaxRounds,
		"max_greedy_steps":    g.cfg.Decoder.MaxGreedySteps,
	}
}
