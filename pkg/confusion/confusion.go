/*
Package confusion implements the substitution cost tables used by the
weighted edit distance.

A table maps pairs of tokens that are easy to mistake for one another to a
substitution cost below the standard cost of 1. Two independent tables are
used by the matcher: one over graphemes and one over pinyin syllables.
*/
package confusion

import (
	"encoding/json"
	"fmt"
	"os"
)

// Table is a sparse symmetric map of token pairs to substitution costs in
// (0, 1]. Pairs not in the table cost the full 1.0; a token against itself
// costs 0. Tables are immutable after construction and safe for concurrent
// readers.
type Table struct {
	costs map[string]map[string]float64
}

// NewTable returns an empty table: every substitution costs 1.
func NewTable() *Table {
	return &Table{costs: map[string]map[string]float64{}}
}

// FromMap builds a table from a nested cost map. The input may be written
// asymmetrically; the table keeps min(entry(a,b), entry(b,a)) for both
// directions. Costs outside (0, 1] are rejected.
func FromMap(m map[string]map[string]float64) (*Table, error) {
	t := NewTable()
	for a, row := range m {
		for b, cost := range row {
			if cost <= 0 || cost > 1 {
				return nil, fmt.Errorf("confusion cost for (%q, %q) must be in (0,1], got %g", a, b, cost)
			}
			t.set(a, b, cost)
			t.set(b, a, cost)
		}
	}
	return t, nil
}

// Load reads a confusion matrix JSON file with the shape
//
//	{ "a": { "b": 0.5 } }
//
// An unreadable or malformed file is an error; use NewTable for the
// no-file case.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading confusion matrix %s: %w", path, err)
	}
	var m map[string]map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing confusion matrix %s: %w", path, err)
	}
	t, err := FromMap(m)
	if err != nil {
		return nil, fmt.Errorf("confusion matrix %s: %w", path, err)
	}
	return t, nil
}

func (t *Table) set(a, b string, cost float64) {
	row, ok := t.costs[a]
	if !ok {
		row = map[string]float64{}
		t.costs[a] = row
	}
	if prev, ok := row[b]; !ok || cost < prev {
		row[b] = cost
	}
}

// Cost returns the substitution cost for replacing token a with token b.
func (t *Table) Cost(a, b string) float64 {
	if a == b {
		return 0
	}
	if t == nil {
		return 1
	}
	if cost, ok := t.costs[a][b]; ok {
		return cost
	}
	return 1
}

// Len reports the number of tokens with at least one confusable partner.
func (t *Table) Len() int {
	return len(t.costs)
}
