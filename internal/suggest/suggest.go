// Package suggest serves prefix completions from a title dataset.
package suggest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxResults caps the number of completions returned for one input.
const MaxResults = 15

// TitleColumn is the dataset column holding titles.
const TitleColumn = "title"

// ErrNoTitleColumn is returned when the dataset header lacks TitleColumn.
var ErrNoTitleColumn = errors.New("suggest: dataset has no title column")

var (
	disallowed = regexp.MustCompile(`[^a-zA-Z\d\s:]`)
	spaces     = regexp.MustCompile(`\s+`)
)

type entry struct {
	normalized string
	display    string
}

// Index buckets normalized titles by their first character.
type Index struct {
	buckets map[rune][]entry
	size    int
}

// Normalize lowercases s, replaces punctuation with spaces and collapses
// runs of whitespace.
func Normalize(s string) string {
	s = disallowed.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Display capitalises the first letter of each word.
func Display(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r, n := utf8.DecodeRuneInString(w)
		if n == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[n:]
	}
	return strings.Join(words, " ")
}

// New indexes titles in the given order.
func New(titles []string) *Index {
	idx := &Index{buckets: make(map[rune][]entry)}
	for _, t := range titles {
		n := Normalize(t)
		if n == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(n)
		idx.buckets[first] = append(idx.buckets[first], entry{normalized: n, display: Display(n)})
		idx.size++
	}
	return idx
}

// Read builds an index from CSV data with a title column.
func Read(r io.Reader) (*Index, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), TitleColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrNoTitleColumn
	}

	var titles []string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col < len(row) {
			titles = append(titles, row[col])
		}
	}
	return New(titles), nil
}

// Load reads a CSV dataset from path.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open suggestions: %w", err)
	}
	defer func() { _ = f.Close() }()

	idx, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load suggestions %s: %w", path, err)
	}
	return idx, nil
}

// Len returns the number of indexed titles.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

// Suggest returns up to MaxResults display titles that extend input.
// Exact matches are excluded; results keep dataset order.
func (idx *Index) Suggest(input string) []string {
	input = strings.ToLower(input)
	if idx == nil || input == "" || strings.HasPrefix(input, ".") {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(input)

	var out []string
	seen := make(map[string]struct{})
	for _, e := range idx.buckets[first] {
		if e.normalized == input || !strings.HasPrefix(e.normalized, input) {
			continue
		}
		if _, dup := seen[e.normalized]; dup {
			continue
		}
		seen[e.normalized] = struct{}{}
		out = append(out, e.display)
		if len(out) == MaxResults {
			break
		}
	}
	return out
}
