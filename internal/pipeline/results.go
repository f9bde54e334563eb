package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/wordgen/internal/model"
)

const stageHeader = "Stage %d\n==========\n"

// ToJSON serializes a single Result to pretty JSON.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONBatch serializes the results of a multi-model run.
func ToJSONBatch(results []*Result) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText renders the four stages under their headers: the top words
// framed by the reserved tokens, one "word -> next" line per word, then the
// greedy and beam sentences.
func ToPlainText(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, stageHeader, 1)
	sb.WriteString(model.StartToken)
	for _, w := range res.TopWords {
		sb.WriteString(" " + w.Text)
	}
	sb.WriteString(" " + model.EndToken + "\n\n")

	fmt.Fprintf(&sb, stageHeader, 2)
	for _, s := range res.Successors {
		fmt.Fprintf(&sb, "%s -> %s\n", s.From.Text, s.To.Text)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, stageHeader, 3)
	sb.WriteString(res.Greedy.Text + "\n\n")

	fmt.Fprintf(&sb, stageHeader, 4)
	sb.WriteString(res.Beam.Text + "\n")

	return sb.String(), nil
}

// ToCSV exports one row per decoded sequence: the greedy result, then every
// hypothesis of the final beam in rank order.
func ToCSV(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"model", "decoder", "rank", "probability", "length", "text"})

	row := func(dec string, rank int, s Sequence) {
		_ = w.Write([]string{
			res.Model,
			dec,
			strconv.Itoa(rank),
			strconv.FormatFloat(s.Probability, 'g', -1, 64),
			strconv.Itoa(len(s.Indices)),
			s.Text,
		})
	}
	row("greedy", 0, res.Greedy)
	for i, s := range res.Beam.Beam {
		row("beam", i, s)
	}
	w.Flush()
	return buf.String(), w.Error()
}

// ToCSVBatch concatenates the CSV rows of several results under one header.
func ToCSVBatch(results []*Result) (string, error) {
	var sb strings.Builder
	for i, res := range results {
		if res == nil {
			continue
		}
		s, err := ToCSV(res)
		if err != nil {
			return "", err
		}
		if i > 0 && sb.Len() > 0 {
			_, s, _ = strings.Cut(s, "\n")
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}
