package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/wordgen/internal/decoder"
	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/MeKo-Tech/wordgen/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, decoder.DefaultConfig(), cfg.Decoder)
	assert.Equal(t, model.DefaultTopWords, cfg.TopWords)
	assert.Equal(t, model.StartIndex, cfg.Start)
	assert.Positive(t, cfg.Parallel.MaxWorkers)
}

func TestBuilder_Setters(t *testing.T) {
	b := NewBuilder()
	assert.Same(t, b, b.WithBeamWidth(4))
	b.WithMaxRounds(7).
		WithMaxSentenceLength(9).
		WithMaxGreedySteps(5).
		WithTopWords(3).
		WithParallelWorkers(2).
		WithModelPath("/tmp/model.txt")

	cfg := b.Config()
	assert.Equal(t, 4, cfg.Decoder.BeamWidth)
	assert.Equal(t, 7, cfg.Decoder.MaxRounds)
	assert.Equal(t, 9, cfg.Decoder.MaxSentenceLength)
	assert.Equal(t, 5, cfg.Decoder.MaxGreedySteps)
	assert.Equal(t, 3, cfg.TopWords)
	assert.Equal(t, 2, cfg.Parallel.MaxWorkers)
	assert.Equal(t, "/tmp/model.txt", cfg.ModelPath)
}

func TestBuilder_IgnoresNonPositive(t *testing.T) {
	b := NewBuilder().
		WithBeamWidth(0).
		WithMaxRounds(-1).
		WithMaxSentenceLength(0).
		WithMaxGreedySteps(-3).
		WithTopWords(0).
		WithParallelWorkers(0)

	def := DefaultConfig()
	cfg := b.Config()
	assert.Equal(t, def.Decoder, cfg.Decoder)
	assert.Equal(t, def.TopWords, cfg.TopWords)
	assert.Equal(t, def.Parallel.MaxWorkers, cfg.Parallel.MaxWorkers)
}

func TestBuilder_Validate(t *testing.T) {
	err := NewBuilder().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model path is empty")

	err = NewBuilder().WithModelPath("m.txt").WithMaxSentenceLength(100).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder config")

	assert.NoError(t, NewBuilder().WithModel(testutil.CatSatModel(t)).Validate())
}

func TestBuilder_BuildFromModel(t *testing.T) {
	m := testutil.CatSatModel(t)
	g, err := NewBuilder().WithModel(m).WithBeamWidth(3).Build()
	require.NoError(t, err)
	assert.Same(t, m, g.Model)
	assert.Equal(t, 3, g.Config().Decoder.BeamWidth)

	info := g.Info()
	assert.Equal(t, 4, info["vocabulary_size"])
	assert.Equal(t, 3, info["beam_width"])
}

func TestBuilder_BuildFromPath(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "catsat.txt", testutil.CatSatText)

	g, err := NewBuilder().WithModelPath(path).Build()
	require.NoError(t, err)
	assert.Equal(t, 4, g.Model.Size())
	assert.Equal(t, path, g.Info()["model_path"])
}

func TestBuilder_BuildMissingFile(t *testing.T) {
	_, err := NewBuilder().WithModelPath(filepath.Join(t.TempDir(), "missing.txt")).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load model")
}

func TestBuilder_BuildStartOutOfRange(t *testing.T) {
	m := testutil.Fixture(t, []string{model.EndToken}, nil)
	_, err := NewBuilder().WithModel(m).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start word 1 out of range")
}

func TestGenerator_WithDecoder(t *testing.T) {
	m := testutil.GardenPathModel(t)
	g, err := NewBuilder().WithModel(m).Build()
	require.NoError(t, err)

	cfg := decoder.DefaultConfig()
	cfg.BeamWidth = 1
	narrow := g.WithDecoder(cfg)

	assert.Same(t, g.Model, narrow.Model)
	assert.Equal(t, 1, narrow.Config().Decoder.BeamWidth)
	assert.Equal(t, 2, g.Config().Decoder.BeamWidth)
	assert.Equal(t, "<start> the <end>", narrow.Beam().Text)
	assert.Equal(t, "<start> a <end>", g.Beam().Text)
}
