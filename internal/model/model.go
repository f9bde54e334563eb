// Package model holds the vocabulary and transition-probability matrix that
// the decoders read from. A Model is immutable once built and may be shared
// by any number of concurrent decodes.
package model

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"gonum.org/v1/gonum/mat"
)

// Reserved vocabulary positions.
const (
	EndIndex   = 0
	StartIndex = 1
)

// Reserved tokens by caller convention.
const (
	EndToken   = "<end>"
	StartToken = "<start>"
)

// Practical bounds of a model.
const (
	MaxVocabularySize = 50
	MaxWordLength     = 20
)

var (
	ErrEmptyVocabulary     = errors.New("vocabulary is empty")
	ErrVocabularyTooLarge  = errors.New("vocabulary too large")
	ErrMatrixShape         = errors.New("transition matrix is not N×N")
	ErrNegativeProbability = errors.New("probability must be a finite non-negative number")
	ErrWordTooLong         = errors.New("word too long")
	ErrEmptyWord           = errors.New("word is empty")
)

// Word is one vocabulary entry.
type Word struct {
	Text        string  `json:"word" yaml:"word"`
	Probability float64 `json:"probability" yaml:"probability"`
	Index       int     `json:"index" yaml:"-"`
}

// Model is a vocabulary plus a dense N×N transition matrix where entry (i, j)
// is the probability of moving from word i to word j.
type Model struct {
	words []Word
	trans *mat.Dense
}

// New builds a model from words and a row-major transition matrix. Word
// indices are reassigned from their position. The inputs are copied.
func New(words []Word, transitions [][]float64) (*Model, error) {
	n := len(words)
	if n == 0 {
		return nil, ErrEmptyVocabulary
	}
	if n > MaxVocabularySize {
		return nil, fmt.Errorf("%w: %d entries (max %d)", ErrVocabularyTooLarge, n, MaxVocabularySize)
	}
	if len(transitions) != n {
		return nil, fmt.Errorf("%w: %d rows for %d words", ErrMatrixShape, len(transitions), n)
	}

	data := make([]float64, 0, n*n)
	for i, row := range transitions {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMatrixShape, i, len(row), n)
		}
		data = append(data, row...)
	}

	ws := make([]Word, n)
	for i, w := range words {
		w.Index = i
		ws[i] = w
	}

	return &Model{words: ws, trans: mat.NewDense(n, n, data)}, nil
}

// Size returns the vocabulary size N.
func (m *Model) Size() int { return len(m.words) }

// Transition returns the probability of moving from word from to word to.
func (m *Model) Transition(from, to int) float64 { return m.trans.At(from, to) }

// Row returns a copy of the transition row for word i.
func (m *Model) Row(i int) []float64 { return mat.Row(nil, i, m.trans) }

// Word returns the vocabulary entry at index i.
func (m *Model) Word(i int) Word { return m.words[i] }

// Words returns a copy of the vocabulary in index order.
func (m *Model) Words() []Word {
	out := make([]Word, len(m.words))
	copy(out, m.words)
	return out
}

// Text returns the word text at index i, or an empty string when i is out of range.
func (m *Model) Text(i int) string {
	if i < 0 || i >= len(m.words) {
		return ""
	}
	return m.words[i].Text
}

// Render maps a sequence of indices to their words. Out-of-range indices are skipped.
func (m *Model) Render(seq []int) []string {
	out := make([]string, 0, len(seq))
	for _, idx := range seq {
		if idx < 0 || idx >= len(m.words) {
			continue
		}
		out = append(out, m.words[idx].Text)
	}
	return out
}

// RowSums returns the sum of each transition row.
func (m *Model) RowSums() []float64 {
	n := m.Size()
	sums := make([]float64, n)
	for i := range n {
		sums[i] = mat.Sum(m.trans.RowView(i))
	}
	return sums
}

// Validate checks the invariants the decoders rely on: bounded words and a
// finite, non-negative matrix. Rows are not required to sum to one.
func (m *Model) Validate() error {
	for _, w := range m.words {
		if w.Text == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyWord, w.Index)
		}
		if utf8.RuneCountInString(w.Text) > MaxWordLength {
			return fmt.Errorf("%w: %q (max %d characters)", ErrWordTooLong, w.Text, MaxWordLength)
		}
		if !validProbability(w.Probability) {
			return fmt.Errorf("%w: unigram probability of %q is %v", ErrNegativeProbability, w.Text, w.Probability)
		}
	}

	n := m.Size()
	for i := range n {
		for j := range n {
			if v := m.trans.At(i, j); !validProbability(v) {
				return fmt.Errorf("%w: transition (%d, %d) is %v", ErrNegativeProbability, i, j, v)
			}
		}
	}
	return nil
}

func validProbability(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
