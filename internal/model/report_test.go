package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopWords_OrderAndReservedFiltering(t *testing.T) {
	words := []Word{
		{Text: EndToken, Probability: 0.9},
		{Text: StartToken, Probability: 0.9},
		{Text: "a", Probability: 0.2},
		{Text: "b", Probability: 0.5},
		{Text: "c", Probability: 0.2},
		{Text: "d", Probability: 0.1},
	}
	rows := make([][]float64, len(words))
	for i := range rows {
		rows[i] = make([]float64, len(words))
	}
	m, err := New(words, rows)
	require.NoError(t, err)

	top := m.TopWords(0)
	got := make([]string, len(top))
	for i, w := range top {
		got[i] = w.Text
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, got)

	assert.Len(t, m.TopWords(2), 2)
}

func TestTopWords_DefaultLimit(t *testing.T) {
	var sb strings.Builder
	n := 14
	sb.WriteString("14\n<end> 0\n<start> 0\n")
	for i := 2; i < n; i++ {
		sb.WriteString("w")
		sb.WriteString(strings.Repeat("x", i))
		sb.WriteString(" 0.1\n")
	}
	for range n {
		sb.WriteString(strings.Repeat("0 ", n))
		sb.WriteString("\n")
	}
	m, err := Read(strings.NewReader(sb.String()))
	require.NoError(t, err)
	top := m.TopWords(0)
	require.Len(t, top, DefaultTopWords)
	assert.Equal(t, 2, top[0].Index)
}

func TestSuccessors(t *testing.T) {
	m, err := Read(strings.NewReader(catSatText))
	require.NoError(t, err)

	succ := m.Successors()
	require.Len(t, succ, 3)
	assert.Equal(t, StartToken, succ[0].From.Text)
	assert.Equal(t, "cat", succ[0].To.Text)
	assert.InDelta(t, 0.9, succ[0].Probability, 0)
	assert.Equal(t, EndToken, succ[1].To.Text)
	// Zero row: first column wins.
	assert.Equal(t, "sat", succ[2].From.Text)
	assert.Equal(t, EndToken, succ[2].To.Text)
}
