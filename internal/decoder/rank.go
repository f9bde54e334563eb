package decoder

import (
	"cmp"
	"slices"
)

// RankKey is the total-order key of a hypothesis: negated probability first,
// so that ascending order puts the most probable hypothesis first, then the
// insertion-order tag, so that the earlier candidate wins exact ties.
type RankKey struct {
	NegProbability float64
	Order          int
}

// Compare orders keys ascending; it returns -1, 0 or +1.
func (k RankKey) Compare(o RankKey) int {
	if c := cmp.Compare(k.NegProbability, o.NegProbability); c != 0 {
		return c
	}
	return cmp.Compare(k.Order, o.Order)
}

// Less reports whether k ranks strictly before o.
func (k RankKey) Less(o RankKey) bool { return k.Compare(o) < 0 }

// Rank sorts hypotheses in place by RankKey.
func Rank(pool []Hypothesis) {
	slices.SortStableFunc(pool, func(a, b Hypothesis) int {
		return a.Key().Compare(b.Key())
	})
}

// Prune ranks the pool and returns its first k entries as a new slice.
func Prune(pool []Hypothesis, k int) []Hypothesis {
	Rank(pool)
	if len(pool) > k {
		pool = pool[:k]
	}
	return slices.Clone(pool)
}
