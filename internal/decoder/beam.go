package decoder

import "github.com/MeKo-Tech/wordgen/internal/mempool"

// candidates recycles the per-round candidate pools across decodes.
var candidates mempool.SlicePool[Hypothesis]

// State is a phase of the beam decoder.
type State int

const (
	StateSeeded State = iota
	StateExpanding
	StatePruned
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateExpanding:
		return "expanding"
	case StatePruned:
		return "pruned"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// RoundObserver is notified after every prune with the 1-based round number
// and the surviving beam. The slice is a copy owned by the observer.
type RoundObserver func(round int, beam []Hypothesis)

// BeamResult is the outcome of a beam decode.
type BeamResult struct {
	Best      Hypothesis   // top-ranked hypothesis, completed
	Beam      []Hypothesis // final beam in rank order, as pruned
	Rounds    int          // expansion rounds executed
	Converged bool         // every beam hypothesis ended with the terminator
	State     State
}

// BeamDecoder runs beam search over a TransitionModel. A BeamDecoder holds
// no per-decode state and may be used from several goroutines at once.
type BeamDecoder struct {
	cfg      Config
	observer RoundObserver
}

// BeamOption configures a BeamDecoder.
type BeamOption func(*BeamDecoder)

// WithRoundObserver registers a callback invoked after every prune.
func WithRoundObserver(fn RoundObserver) BeamOption {
	return func(d *BeamDecoder) { d.observer = fn }
}

// NewBeamDecoder creates a beam decoder with the given settings.
func NewBeamDecoder(cfg Config, opts ...BeamOption) *BeamDecoder {
	d := &BeamDecoder{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the decoder settings.
func (d *BeamDecoder) Config() Config { return d.cfg }

// Decode seeds the beam with the start token and alternates expansion and
// pruning until every hypothesis is complete or MaxRounds is reached.
func (d *BeamDecoder) Decode(m TransitionModel) BeamResult {
	beam := []Hypothesis{Seed()}
	res := BeamResult{State: StateSeeded}

	for res.Rounds < d.cfg.MaxRounds {
		res.State = StateExpanding
		pool := d.expand(m, beam)
		res.Rounds++

		if len(pool) == 0 {
			// Dead end: nothing could be extended. Keep the previous beam.
			candidates.Put(pool)
			break
		}

		beam = Prune(pool, d.cfg.BeamWidth)
		candidates.Put(pool)
		res.State = StatePruned
		if d.observer != nil {
			d.observer(res.Rounds, cloneBeam(beam))
		}

		if allDone(beam) {
			res.Converged = true
			break
		}
	}

	res.State = StateTerminated
	res.Beam = beam
	res.Best = beam[0].Complete()
	return res
}

// expand builds the candidate pool for one round. Complete hypotheses are
// carried forward unchanged apart from their insertion tag; the others are
// extended by every word with a positive transition probability. Candidates
// that would exceed MaxSentenceLength are dropped.
func (d *BeamDecoder) expand(m TransitionModel, beam []Hypothesis) []Hypothesis {
	n := m.Size()
	pool := candidates.Get(len(beam) * max(n, 1))
	order := 0

	for _, h := range beam {
		if h.Done() {
			pool = append(pool, h.retag(order))
			order++
			continue
		}
		if h.length >= d.cfg.MaxSentenceLength {
			continue
		}
		for next := range n {
			p := m.Transition(h.last, next)
			if p <= 0 {
				continue
			}
			pool = append(pool, h.extend(next, p, order))
			order++
		}
	}
	return pool
}

// Beam is a convenience wrapper that decodes with cfg and returns the best
// completed hypothesis.
func Beam(m TransitionModel, cfg Config) Hypothesis {
	return NewBeamDecoder(cfg).Decode(m).Best
}

func allDone(beam []Hypothesis) bool {
	for _, h := range beam {
		if !h.Done() {
			return false
		}
	}
	return true
}

func cloneBeam(beam []Hypothesis) []Hypothesis {
	out := make([]Hypothesis, len(beam))
	copy(out, beam)
	return out
}
