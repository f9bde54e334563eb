package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/stretchr/testify/require"
)

// CatSatText is the four-word model <end> <start> cat sat in the text format.
// Greedy and beam decoding both produce "<start> cat <end>".
const CatSatText = `4
<end> 0.0
<start> 0.0
cat 0.6
sat 0.4
0 0 0 0
0 0 0.9 0.1
1.0 0 0 0
0 0 0 0
`

// GardenPathText is GardenPathModel in the text format.
const GardenPathText = `4
<end> 0.25
<start> 0.25
the 0.25
a 0.25
0 0 0 0
0 0 0.6 0.4
0.1 0 0.05 0
1.0 0 0 0
`

// Fixture builds a model from a vocabulary and a sparse set of transitions
// keyed by [from, to].
func Fixture(t testing.TB, words []string, trans map[[2]int]float64) *model.Model {
	t.Helper()

	ws := make([]model.Word, len(words))
	for i, w := range words {
		ws[i] = model.Word{Text: w, Probability: 1.0 / float64(len(words))}
	}
	rows := make([][]float64, len(words))
	for i := range rows {
		rows[i] = make([]float64, len(words))
	}
	for k, p := range trans {
		rows[k[0]][k[1]] = p
	}
	m, err := model.New(ws, rows)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	return m
}

// CatSatModel returns the model described by CatSatText.
func CatSatModel(t *testing.T) *model.Model {
	t.Helper()
	return Fixture(t, []string{model.EndToken, model.StartToken, "cat", "sat"}, map[[2]int]float64{
		{1, 2}: 0.9,
		{1, 3}: 0.1,
		{2, 0}: 1.0,
	})
}

// TieModel returns a model where both transitions out of the start token are
// equally likely and each leads straight to the terminator.
func TieModel(t *testing.T) *model.Model {
	t.Helper()
	return Fixture(t, []string{model.EndToken, model.StartToken, "left", "right"}, map[[2]int]float64{
		{1, 2}: 0.5,
		{1, 3}: 0.5,
		{2, 0}: 1.0,
		{3, 0}: 1.0,
	})
}

// GardenPathModel returns a model where the greedy walk is beaten by beam
// search: greedy yields "<start> the <end>" with 0.06, beam finds
// "<start> a <end>" with 0.4.
func GardenPathModel(t *testing.T) *model.Model {
	t.Helper()
	return Fixture(t, []string{model.EndToken, model.StartToken, "the", "a"}, map[[2]int]float64{
		{1, 2}: 0.6,
		{1, 3}: 0.4,
		{2, 0}: 0.1,
		{2, 2}: 0.05,
		{3, 0}: 1.0,
	})
}

// RandomModel returns a reproducible random model with n words where roughly
// density of the transitions are non-zero.
func RandomModel(t testing.TB, seed int64, n int, density float64) *model.Model {
	t.Helper()

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: deterministic test data
	words := make([]string, n)
	words[0], words[1] = model.EndToken, model.StartToken
	for i := 2; i < n; i++ {
		words[i] = "w" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	trans := make(map[[2]int]float64)
	for i := range n {
		for j := range n {
			if rng.Float64() < density {
				trans[[2]int{i, j}] = rng.Float64()
			}
		}
	}
	return Fixture(t, words, trans)
}

// WriteModel encodes m into dir/name using the format implied by the name.
func WriteModel(t *testing.T, dir, name string, m *model.Model) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	require.NoError(t, model.Encode(f, m, model.FormatFromPath(path)))
	return path
}
