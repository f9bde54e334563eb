package decoder

// Hypothesis is one partial or complete generated sequence.
//
// Hypotheses are values: the token buffer is a fixed array, so copying a
// Hypothesis never aliases the original. One extra slot beyond
// MaxSentenceCapacity is reserved for the terminator appended by Complete.
type Hypothesis struct {
	tokens      [MaxSentenceCapacity + 1]int
	length      int
	last        int
	probability float64
	order       int
}

// Seed returns the initial hypothesis holding only the start token.
func Seed() Hypothesis {
	h := Hypothesis{last: StartIndex, probability: 1.0, length: 1}
	h.tokens[0] = StartIndex
	return h
}

// Tokens returns a copy of the vocabulary indices in the hypothesis.
func (h Hypothesis) Tokens() []int {
	out := make([]int, h.length)
	copy(out, h.tokens[:h.length])
	return out
}

// Len returns the number of tokens in the hypothesis.
func (h Hypothesis) Len() int { return h.length }

// Last returns the index of the final token.
func (h Hypothesis) Last() int { return h.last }

// Probability returns the product of transition probabilities along the sequence.
func (h Hypothesis) Probability() float64 { return h.probability }

// Order returns the insertion-order tag assigned in the round that produced h.
func (h Hypothesis) Order() int { return h.order }

// Done reports whether the hypothesis ends with the terminator.
func (h Hypothesis) Done() bool { return h.last == EndIndex }

// Key returns the ranking key of h.
func (h Hypothesis) Key() RankKey {
	return RankKey{NegProbability: -h.probability, Order: h.order}
}

// extend returns a new hypothesis with next appended. The receiver is untouched.
func (h Hypothesis) extend(next int, p float64, order int) Hypothesis {
	h.tokens[h.length] = next
	h.length++
	h.last = next
	h.probability *= p
	h.order = order
	return h
}

// retag returns a copy of h carrying a new insertion-order tag.
func (h Hypothesis) retag(order int) Hypothesis {
	h.order = order
	return h
}

// Complete returns h with the terminator appended if it is missing.
// The probability is left unchanged.
func (h Hypothesis) Complete() Hypothesis {
	if h.Done() {
		return h
	}
	h.tokens[h.length] = EndIndex
	h.length++
	h.last = EndIndex
	return h
}
