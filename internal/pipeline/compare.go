package pipeline

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/MeKo-Tech/wordgen/internal/model"
)

// Edit operations reported by Compare.
const (
	EditEqual  = "equal"
	EditDelete = "delete" // only in the greedy sequence
	EditInsert = "insert" // only in the beam sequence
)

// wordRuneBase maps vocabulary indices into the private use area so each
// word diffs as a single rune.
const wordRuneBase = 0xE000

// Edit is one run of words shared by, or unique to, one of the sequences.
type Edit struct {
	Op    string   `json:"op"`
	Words []string `json:"words"`
}

// Comparison is a word-level diff from the greedy to the beam sequence.
type Comparison struct {
	Identical bool   `json:"identical"`
	Distance  int    `json:"distance"` // word-level Levenshtein distance
	Edits     []Edit `json:"edits"`
}

// Compare diffs two index sequences word by word.
func Compare(m *model.Model, greedy, beam []int) Comparison {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(toRunes(greedy), toRunes(beam), false)

	cmp := Comparison{
		Identical: true,
		Distance:  dmp.DiffLevenshtein(diffs),
		Edits:     make([]Edit, 0, len(diffs)),
	}
	for _, d := range diffs {
		e := Edit{}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			e.Op = EditEqual
		case diffmatchpatch.DiffDelete:
			e.Op = EditDelete
			cmp.Identical = false
		case diffmatchpatch.DiffInsert:
			e.Op = EditInsert
			cmp.Identical = false
		}
		for _, r := range d.Text {
			e.Words = append(e.Words, m.Text(int(r-wordRuneBase)))
		}
		cmp.Edits = append(cmp.Edits, e)
	}
	return cmp
}

func toRunes(seq []int) []rune {
	rs := make([]rune, len(seq))
	for i, idx := range seq {
		rs[i] = rune(wordRuneBase + idx)
	}
	return rs
}
