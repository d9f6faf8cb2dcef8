package search

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/colonyops/tabula/internal/core/store"
	"github.com/colonyops/tabula/internal/core/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schema = table.Schema{"id", "name", "note"}

// fixture loads n rows where row i has name "item-<i>" and note "" (missing),
// except row 42 which carries a unique note.
func fixture(t *testing.T, n int) *store.Store {
	t.Helper()

	nulls := table.NewNullSet([]string{""})
	rows := make([]table.Row, n)
	for i := range rows {
		note := ""
		if i == 42 {
			note = "The Needle"
		}
		rows[i] = table.Row{
			table.ParseValue(strconv.Itoa(i), nulls),
			table.ParseValue(fmt.Sprintf("item-%d", i), nulls),
			table.ParseValue(note, nulls),
		}
	}

	s := store.New(100)
	s.AppendBatch(table.Batch{Columns: schema, Rows: rows})
	return s
}

func TestSearch_UniqueRow(t *testing.T) {
	s := fixture(t, 1000)

	res := New(DefaultLookback).Search(s, "needle", AllColumns)

	assert.Equal(t, []int{42}, res.Matches)
	assert.True(t, res.Moved)
	assert.Equal(t, 37, res.Window.Offset)
	assert.Equal(t, 37, s.Offset())
	assert.Equal(t, "Found 1 matches", res.Status())
	assert.Equal(t, 1000, res.Scanned)
}

func TestSearch_NoMatchLeavesWindow(t *testing.T) {
	s := fixture(t, 1000)
	s.SetOffset(300)

	res := New(5).Search(s, "absent", AllColumns)

	assert.Empty(t, res.Matches)
	assert.False(t, res.Moved)
	assert.Equal(t, 300, s.Offset())
	assert.Equal(t, "No matches found", res.Status())
}

func TestSearch_EmptyQueryIsNoop(t *testing.T) {
	s := fixture(t, 200)
	s.SetOffset(50)

	res := New(5).Search(s, "", AllColumns)

	assert.Zero(t, res.Count())
	assert.False(t, res.Moved)
	assert.Equal(t, 50, s.Offset())
}

func TestSearch_FirstMatchNearTop(t *testing.T) {
	s := fixture(t, 1000)

	res := New(5).Search(s, "item-2", AllColumns)

	require.NotEmpty(t, res.Matches)
	assert.Equal(t, 2, res.Matches[0])
	assert.Equal(t, 0, res.Window.Offset, "max(0, first-lookback)")
}

func TestSearch_OffsetClampedByStore(t *testing.T) {
	s := fixture(t, 1000)

	res := New(5).Search(s, "item-998", AllColumns)

	assert.Equal(t, []int{998}, res.Matches)
	assert.Equal(t, 900, res.Window.Offset)
}

func TestScan(t *testing.T) {
	nulls := table.NewNullSet([]string{"", "NA"})
	rows := []table.Row{
		{table.ParseValue("Alpha", nulls), table.ParseValue("NA", nulls)},
		{table.ParseValue("beta", nulls), table.ParseValue("ALPHABET", nulls)},
		{table.ParseValue("3.50", nulls), table.ParseValue("gamma", nulls)},
		{table.ParseValue("delta", nulls)},
	}

	tests := []struct {
		name   string
		query  string
		column int
		want   []int
	}{
		{name: "case insensitive all columns", query: "alpha", column: AllColumns, want: []int{0, 1}},
		{name: "single column", query: "alpha", column: 1, want: []int{1}},
		{name: "missing never matches", query: "na", column: 1, want: nil},
		{name: "natural form of numbers", query: "3.50", column: AllColumns, want: []int{2}},
		{name: "display form does not match", query: "3.500000", column: AllColumns, want: nil},
		{name: "short row column out of range", query: "delta", column: 1, want: nil},
		{name: "column past schema", query: "alpha", column: 7, want: nil},
		{name: "empty query", query: "", column: AllColumns, want: nil},
	}

	e := New(5)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Scan(rows, tt.query, tt.column))
		})
	}
}

func TestResult_Cycle(t *testing.T) {
	res := Result{Matches: []int{3, 10, 42}}

	row, ok := res.Current()
	require.True(t, ok)
	assert.Equal(t, 3, row)

	row, _ = res.Next()
	assert.Equal(t, 10, row)
	row, _ = res.Next()
	assert.Equal(t, 42, row)
	row, _ = res.Next()
	assert.Equal(t, 3, row, "wraps")

	row, _ = res.Prev()
	assert.Equal(t, 42, row)
	assert.Equal(t, 2, res.Index())

	assert.True(t, res.Contains(10))
	assert.False(t, res.Contains(11))

	var empty Result
	_, ok = empty.Next()
	assert.False(t, ok)
	_, ok = empty.Prev()
	assert.False(t, ok)
}

func TestEngine_Jump(t *testing.T) {
	s := fixture(t, 1000)
	e := New(5)

	res := e.Search(s, "item-5", AllColumns)
	require.Greater(t, res.Count(), 2)

	res.Next()
	win, ok := e.Jump(s, &res)
	require.True(t, ok)

	row, _ := res.Current()
	assert.Equal(t, e.OffsetFor(row), win.Offset)

	var none Result
	_, ok = e.Jump(s, &none)
	assert.False(t, ok)
}

func TestNew_NegativeLookback(t *testing.T) {
	assert.Equal(t, DefaultLookback, New(-1).Lookback())
	assert.Equal(t, 0, New(0).OffsetFor(17)-17)
}
