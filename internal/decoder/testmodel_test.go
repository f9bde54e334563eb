package decoder

// matrixModel is a dense in-memory TransitionModel for tests.
type matrixModel [][]float64

func (m matrixModel) Size() int { return len(m) }

func (m matrixModel) Transition(from, to int) float64 { return m[from][to] }

func newMatrix(n int) matrixModel {
	m := make(matrixModel, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// catSatModel: <end>(0) <start>(1) cat(2) sat(3).
func catSatModel() matrixModel {
	m := newMatrix(4)
	m[1][2] = 0.9
	m[1][3] = 0.1
	m[2][0] = 1.0
	return m
}

// modelFromValues builds an n×n model from the first n*n values, zeroing
// entries below 0.4 so that rows are sparse.
func modelFromValues(n int, vals []float64) matrixModel {
	m := newMatrix(n)
	for i := range n {
		for j := range n {
			v := vals[i*n+j]
			if v < 0.4 {
				v = 0
			}
			m[i][j] = v
		}
	}
	return m
}

// pathProbability recomputes the product of transitions along seq.
func pathProbability(m TransitionModel, seq []int) float64 {
	p := 1.0
	for i := 1; i < len(seq); i++ {
		p *= m.Transition(seq[i-1], seq[i])
	}
	return p
}
