// Package decoder generates word sequences from a word-transition model.
//
// Two strategies are provided: a greedy one-best walk that always follows the
// single most probable transition, and a beam decoder that keeps the top-K
// partial hypotheses per round and ranks them by cumulative probability with
// insertion order as a deterministic tie-break.
package decoder

import (
	"errors"
	"fmt"
)

// Reserved vocabulary indices.
const (
	EndIndex   = 0
	StartIndex = 1
)

// MaxSentenceCapacity is the hard capacity of a hypothesis token buffer.
// MaxSentenceLength may be tuned up to this value but never beyond it.
const MaxSentenceCapacity = 32

// TransitionModel is the read-only view of a word-transition model that the
// decoders consume. Implementations must be safe for concurrent readers.
type TransitionModel interface {
	// Size returns the vocabulary size N.
	Size() int
	// Transition returns the probability of moving from word i to word j.
	Transition(from, to int) float64
}

// Config holds decoder tunables.
type Config struct {
	BeamWidth         int // hypotheses kept after each prune (K)
	MaxSentenceLength int // tokens per hypothesis, start and terminator included
	MaxRounds         int // beam expansion rounds
	MaxGreedySteps    int // regular words the greedy walk may emit
}

// DefaultConfig returns the standard decoder settings.
func DefaultConfig() Config {
	return Config{
		BeamWidth:         2,
		MaxSentenceLength: 12,
		MaxRounds:         10,
		MaxGreedySteps:    10,
	}
}

// Validate checks that every tunable is usable.
func (c Config) Validate() error {
	if c.BeamWidth < 1 {
		return fmt.Errorf("invalid beam width: %d (must be >= 1)", c.BeamWidth)
	}
	if c.MaxSentenceLength < 2 || c.MaxSentenceLength > MaxSentenceCapacity {
		return fmt.Errorf("invalid max sentence length: %d (must be between 2 and %d)",
			c.MaxSentenceLength, MaxSentenceCapacity)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("invalid max rounds: %d (must be >= 1)", c.MaxRounds)
	}
	if c.MaxGreedySteps < 0 {
		return errors.New("max greedy steps must not be negative")
	}
	return nil
}
