package data

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Record is one observation: the feature vector in column order plus its label.
type Record struct {
	Features []decimal.Decimal
	Outcome  int
}

// Table is an ordered set of records sharing the same feature columns.
// Record order is the file order and is what split indices refer to.
type Table struct {
	Features []string
	Outcome  string
	Records  []Record
}

func NewTable(features []string, outcome string) *Table {
	return &Table{
		Features: features,
		Outcome:  outcome,
	}
}

// Shape returns rows and columns, the outcome column included.
func (t *Table) Shape() (int, int) {
	return len(t.Records), len(t.Features) + 1
}

func (t *Table) Len() int {
	return len(t.Records)
}

// FeatureIndex returns the position of the named feature column.
func (t *Table) FeatureIndex(name string) (int, error) {
	for i, f := range t.Features {
		if f == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown feature: %s", name)
}

// Matrix returns the feature matrix and label vector. Rows are shared with the table.
func (t *Table) Matrix() ([][]decimal.Decimal, []int) {
	X := make([][]decimal.Decimal, len(t.Records))
	y := make([]int, len(t.Records))
	for i, r := range t.Records {
		X[i] = r.Features
		y[i] = r.Outcome
	}
	return X, y
}

// Labels returns the outcome column.
func (t *Table) Labels() []int {
	y := make([]int, len(t.Records))
	for i, r := range t.Records {
		y[i] = r.Outcome
	}
	return y
}

// Column returns the values of one feature column.
func (t *Table) Column(j int) []decimal.Decimal {
	col := make([]decimal.Decimal, len(t.Records))
	for i, r := range t.Records {
		col[i] = r.Features[j]
	}
	return col
}

// GroupCounts counts records per outcome label.
func (t *Table) GroupCounts() map[int]int {
	counts := make(map[int]int)
	for _, r := range t.Records {
		counts[r.Outcome]++
	}
	return counts
}

// Classes returns the distinct labels in ascending order.
func (t *Table) Classes() []int {
	counts := t.GroupCounts()
	classes := make([]int, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

// Subset returns a new table holding copies of the records at the given positions.
func (t *Table) Subset(indices []int) *Table {
	sub := NewTable(t.Features, t.Outcome)
	sub.Records = make([]Record, len(indices))
	for i, idx := range indices {
		sub.Records[i] = t.Records[idx].clone()
	}
	return sub
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	c := NewTable(append([]string(nil), t.Features...), t.Outcome)
	c.Records = make([]Record, len(t.Records))
	for i, r := range t.Records {
		c.Records[i] = r.clone()
	}
	return c
}

func (r Record) clone() Record {
	features := make([]decimal.Decimal, len(r.Features))
	copy(features, r.Features)
	return Record{Features: features, Outcome: r.Outcome}
}
