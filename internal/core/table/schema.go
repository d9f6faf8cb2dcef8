package table

import (
	"fmt"
	"strings"
)

// Schema is the ordered list of column names of a dataset.
type Schema []string

// NewSchema builds a schema from a header record. Blank names become
// "Unnamed: <index>" and repeated names get ".1", ".2" suffixes so every
// column name is unique.
func NewSchema(header []string) Schema {
	out := make(Schema, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for used[name] {
			counts[base]++
			name = fmt.Sprintf("%s.%d", base, counts[base])
		}

		used[name] = true
		out[i] = name
	}

	return out
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s) }

// Index returns the position of the named column or -1.
func (s Schema) Index(name string) int {
	for i, n := range s {
		if n == name {
			return i
		}
	}
	return -1
}

// Row is one record, one value per schema column.
type Row []Value

// Formatted renders every value of the row for display.
func (r Row) Formatted() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.Format()
	}
	return out
}

// Batch is a contiguous run of rows parsed together. Columns is the schema
// the rows were parsed with.
type Batch struct {
	Columns Schema
	Rows    []Row
}

// Len returns the number of rows in the batch.
func (b Batch) Len() int { return len(b.Rows) }
