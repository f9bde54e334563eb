package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/MeKo-Tech/wordgen/internal/decoder"
	"github.com/MeKo-Tech/wordgen/internal/model"
)

// Sequence is a decoded word sequence rendered against the vocabulary.
type Sequence struct {
	Indices     []int    `json:"indices"`
	Words       []string `json:"words"`
	Text        string   `json:"text"`
	Probability float64  `json:"probability"`
}

// BeamOutput is the beam decoder's best sequence plus search statistics.
type BeamOutput struct {
	Sequence
	Rounds    int        `json:"rounds"`
	Converged bool       `json:"converged"`
	Beam      []Sequence `json:"beam"`
}

// Result is the output of all generation stages for one model.
type Result struct {
	Model          string            `json:"model,omitempty"`
	VocabularySize int               `json:"vocabulary_size"`
	TopWords       []model.Word      `json:"top_words"`
	Successors     []model.Successor `json:"successors"`
	Greedy         Sequence          `json:"greedy"`
	Beam           BeamOutput        `json:"beam"`
	Comparison     Comparison        `json:"comparison"`
	Processing     struct {
		TopWordsNs   int64 `json:"top_words_ns"`
		SuccessorsNs int64 `json:"successors_ns"`
		GreedyNs     int64 `json:"greedy_ns"`
		BeamNs       int64 `json:"beam_ns"`
		TotalNs      int64 `json:"total_ns"`
	} `json:"processing"`
}

// Run executes every stage with the generator's configuration.
func (g *Generator) Run() (*Result, error) {
	return g.RunContext(context.Background())
}

// RunContext executes every stage, checking ctx between stages. The
// decoders themselves are bounded by their caps and are not interrupted.
// opts are passed to the beam decoder.
func (g *Generator) RunContext(ctx context.Context, opts ...decoder.BeamOption) (*Result, error) {
	start := time.Now()
	res := &Result{Model: g.cfg.ModelPath, VocabularySize: g.Model.Size()}

	t := time.Now()
	res.TopWords = g.Model.TopWords(g.cfg.TopWords)
	res.Processing.TopWordsNs = time.Since(t).Nanoseconds()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t = time.Now()
	res.Successors = g.Model.Successors()
	res.Processing.SuccessorsNs = time.Since(t).Nanoseconds()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t = time.Now()
	res.Greedy = g.Greedy()
	res.Processing.GreedyNs = time.Since(t).Nanoseconds()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t = time.Now()
	res.Beam = g.Beam(opts...)
	res.Processing.BeamNs = time.Since(t).Nanoseconds()

	res.Comparison = Compare(g.Model, res.Greedy.Indices, res.Beam.Indices)
	res.Processing.TotalNs = time.Since(start).Nanoseconds()

	slog.Debug("Generation completed",
		"model", g.cfg.ModelPath,
		"greedy", res.Greedy.Text,
		"beam", res.Beam.Text,
		"rounds", res.Beam.Rounds,
		"total_ns", res.Processing.TotalNs)

	return res, nil
}

// Greedy runs the greedy decoder with the generator's settings.
func (g *Generator) Greedy() Sequence {
	return g.GreedyWith(g.cfg.Decoder)
}

// GreedyWith runs the greedy decoder with cfg.
func (g *Generator) GreedyWith(cfg decoder.Config) Sequence {
	seq := decoder.Greedy(g.Model, g.cfg.Start, cfg)
	// A terminator appended at the step cap carries no transition.
	scored := seq
	if len(seq) == cfg.MaxGreedySteps+2 && seq[len(seq)-2] != model.EndIndex {
		scored = seq[:len(seq)-1]
	}
	return g.sequence(seq, pathProbability(g.Model, scored))
}

// Beam runs the beam decoder with the generator's settings.
func (g *Generator) Beam(opts ...decoder.BeamOption) BeamOutput {
	return g.BeamWith(g.cfg.Decoder, opts...)
}

// BeamWith runs the beam decoder with cfg.
func (g *Generator) BeamWith(cfg decoder.Config, opts ...decoder.BeamOption) BeamOutput {
	res := decoder.NewBeamDecoder(cfg, opts...).Decode(g.Model)
	out := BeamOutput{
		Sequence:  g.Hypothesis(res.Best),
		Rounds:    res.Rounds,
		Converged: res.Converged,
		Beam:      make([]Sequence, len(res.Beam)),
	}
	for i, h := range res.Beam {
		out.Beam[i] = g.Hypothesis(h)
	}
	return out
}

// Hypothesis renders a decoder hypothesis.
func (g *Generator) Hypothesis(h decoder.Hypothesis) Sequence {
	return g.sequence(h.Tokens(), h.Probability())
}

func (g *Generator) sequence(indices []int, p float64) Sequence {
	words := g.Model.Render(indices)
	return Sequence{
		Indices:     indices,
		Words:       words,
		Text:        strings.Join(words, " "),
		Probability: p,
	}
}

func pathProbability(m decoder.TransitionModel, seq []int) float64 {
	p := 1.0
	for i := 1; i < len(seq); i++ {
		p *= m.Transition(seq[i-1], seq[i])
	}
	return p
}
