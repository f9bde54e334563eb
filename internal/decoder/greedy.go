package decoder

// NextWord returns the column of the row for word from with the strictly
// greatest probability. Scanning runs left to right, so the smallest index
// wins ties. An empty model yields EndIndex.
func NextWord(m TransitionModel, from int) int {
	best := EndIndex
	if m.Size() == 0 {
		return best
	}
	maxProb := m.Transition(from, 0)
	for j := 1; j < m.Size(); j++ {
		if p := m.Transition(from, j); p > maxProb {
			maxProb = p
			best = j
		}
	}
	return best
}

// Greedy walks the model from start, taking the most probable transition at
// each step. It stops when the terminator is chosen or after
// cfg.MaxGreedySteps regular words; in the latter case the terminator is
// appended explicitly.
func Greedy(m TransitionModel, start int, cfg Config) []int {
	seq := make([]int, 0, cfg.MaxGreedySteps+2)
	seq = append(seq, start)

	current := start
	for steps := 0; steps < cfg.MaxGreedySteps; steps++ {
		next := NextWord(m, current)
		seq = append(seq, next)
		current = next
		if next == EndIndex {
			break
		}
	}

	if current != EndIndex {
		seq = append(seq, EndIndex)
	}
	return seq
}
