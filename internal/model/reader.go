package model

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Format is an on-disk model encoding.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is the structured (YAML or JSON) model encoding.
type Document struct {
	Words       []Word      `json:"words" yaml:"words"`
	Transitions [][]float64 `json:"transitions" yaml:"transitions"`
}

// FormatFromPath guesses the encoding of a model file from its extension.
// Anything that is not YAML or JSON is read as the plain text format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// LoadFile reads and validates a model from path.
func LoadFile(path string) (*Model, error) {
	if path == "" {
		return nil, errors.New("model path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // G304: Opening user-provided model file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing model file: %v\n", err)
		}
	}()

	m, err := Load(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Load reads a model in the given format and validates it.
func Load(r io.Reader, format Format) (*Model, error) {
	var (
		m   *Model
		err error
	)
	switch format {
	case FormatYAML:
		m, err = readDocument(r, func(data []byte, doc *Document) error { return yaml.Unmarshal(data, doc) })
	case FormatJSON:
		m, err = readDocument(r, func(data []byte, doc *Document) error { return json.Unmarshal(data, doc) })
	case FormatText, "":
		m, err = Read(r)
	default:
		return nil, fmt.Errorf("unsupported model format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return m, nil
}

// Read parses the whitespace-separated text format: the vocabulary size N,
// then N "word probability" pairs in index order, then the N×N transition
// matrix in row-major order.
func Read(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("reading %s: %w", what, err)
			}
			return "", fmt.Errorf("reading %s: %w", what, io.ErrUnexpectedEOF)
		}
		return sc.Text(), nil
	}
	nextFloat := func(what string) (float64, error) {
		tok, err := next(what)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", what, err)
		}
		return v, nil
	}

	tok, err := next("vocabulary size")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return nil, fmt.Errorf("parsing vocabulary size: %w", err)
	}
	if n <= 0 {
		return nil, ErrEmptyVocabulary
	}
	if n > MaxVocabularySize {
		return nil, fmt.Errorf("%w: %d entries (max %d)", ErrVocabularyTooLarge, n, MaxVocabularySize)
	}

	words := make([]Word, n)
	for i := range n {
		text, err := next(fmt.Sprintf("word %d", i))
		if err != nil {
			return nil, err
		}
		p, err := nextFloat(fmt.Sprintf("probability of word %d", i))
		if err != nil {
			return nil, err
		}
		words[i] = Word{Text: norm.NFC.String(text), Probability: p, Index: i}
	}

	rows := make([][]float64, n)
	for i := range n {
		rows[i] = make([]float64, n)
		for j := range n {
			v, err := nextFloat(fmt.Sprintf("transition (%d, %d)", i, j))
			if err != nil {
				return nil, err
			}
			rows[i][j] = v
		}
	}

	return New(words, rows)
}

func readDocument(r io.Reader, decode func([]byte, *Document) error) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var doc Document
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	for i := range doc.Words {
		doc.Words[i].Text = norm.NFC.String(doc.Words[i].Text)
	}
	return New(doc.Words, doc.Transitions)
}

// Encode writes m in the given format. The output of Encode can be read back by Load.
func Encode(w io.Writer, m *Model, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(m.Document())
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m.Document())
	case FormatText, "":
		return writeText(w, m)
	default:
		return fmt.Errorf("unsupported model format: %s", format)
	}
}

// Document returns the structured form of m.
func (m *Model) Document() Document {
	n := m.Size()
	doc := Document{Words: m.Words(), Transitions: make([][]float64, n)}
	for i := range n {
		doc.Transitions[i] = m.Row(i)
	}
	return doc
}

func writeText(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	n := m.Size()
	fmt.Fprintf(bw, "%d\n", n)
	for _, word := range m.words {
		fmt.Fprintf(bw, "%s %s\n", word.Text, strconv.FormatFloat(word.Probability, 'g', -1, 64))
	}
	for i := range n {
		row := m.Row(i)
		cells := make([]string, n)
		for j, v := range row {
			cells[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintln(bw, strings.Join(cells, " "))
	}
	return bw.Flush()
}
