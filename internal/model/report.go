package model

import (
	"cmp"
	"slices"

	"github.com/MeKo-Tech/wordgen/internal/decoder"
)

// DefaultTopWords is the number of entries TopWords reports by default.
const DefaultTopWords = 10

// Successor pairs a word with its most likely next word.
type Successor struct {
	From        Word    `json:"from"`
	To          Word    `json:"to"`
	Probability float64 `json:"probability"`
}

func isReserved(w Word) bool {
	return w.Index == EndIndex || w.Index == StartIndex || w.Text == EndToken || w.Text == StartToken
}

// TopWords returns up to limit regular words ordered by unigram probability,
// highest first, with the lower index winning ties. Reserved tokens are
// excluded. A non-positive limit means DefaultTopWords.
func (m *Model) TopWords(limit int) []Word {
	if limit <= 0 {
		limit = DefaultTopWords
	}
	regular := make([]Word, 0, len(m.words))
	for _, w := range m.words {
		if !isReserved(w) {
			regular = append(regular, w)
		}
	}
	slices.SortFunc(regular, func(a, b Word) int {
		if c := cmp.Compare(b.Probability, a.Probability); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	if len(regular) > limit {
		regular = regular[:limit]
	}
	return regular
}

// Successors returns, for every word except the terminator, the single most
// likely next word. Ties go to the lower index.
func (m *Model) Successors() []Successor {
	n := m.Size()
	out := make([]Successor, 0, max(n-1, 0))
	for i := 1; i < n; i++ {
		j := decoder.NextWord(m, i)
		out = append(out, Successor{From: m.words[i], To: m.words[j], Probability: m.Transition(i, j)})
	}
	return out
}
