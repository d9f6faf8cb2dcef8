// Package search scans loaded rows for a case-insensitive substring and moves
// the window to the first hit.
package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/tabula/internal/core/store"
	"github.com/colonyops/tabula/internal/core/table"
)

// AllColumns selects every column; a row matches if any field matches.
const AllColumns = -1

// DefaultLookback is how many rows above the first match stay visible.
const DefaultLookback = 5

// Windower is the part of the store a search needs.
type Windower interface {
	Rows() []table.Row
	SetOffset(offset int) (store.Window, bool)
}

// Engine matches a query against every loaded row. There is no index: each
// call scans all rows loaded so far, so cost is rows x columns per query and
// rows that arrive later are only seen by the next query.
type Engine struct {
	lookback int
}

// New creates an engine. A negative lookback uses DefaultLookback.
func New(lookback int) *Engine {
	if lookback < 0 {
		lookback = DefaultLookback
	}
	return &Engine{lookback: lookback}
}

// Lookback returns the configured lookback.
func (e *Engine) Lookback() int { return e.lookback }

// OffsetFor returns the window offset that shows row with lookback context.
func (e *Engine) OffsetFor(row int) int {
	return max(0, row-e.lookback)
}

// Scan returns the ascending indices of rows matching query in column, or in
// any column when column is AllColumns. Missing values never match. A row
// whose predicate fails counts as no match.
func (e *Engine) Scan(rows []table.Row, query string, column int) []int {
	if query == "" {
		return nil
	}

	needle := strings.ToLower(query)

	var matches []int
	for i, row := range rows {
		if matchRow(row, needle, column) {
			matches = append(matches, i)
		}
	}
	return matches
}

// Search scans w's rows and, on a hit, moves the window so the first match
// sits lookback rows below the top. An empty query does nothing. With no hit
// the window is left where it is.
func (e *Engine) Search(w Windower, query string, column int) Result {
	if query == "" {
		return Result{Column: column}
	}

	rows := w.Rows()
	res := Result{
		Query:   query,
		Column:  column,
		Matches: e.Scan(rows, query, column),
		Scanned: len(rows),
	}

	if len(res.Matches) > 0 {
		win, _ := w.SetOffset(e.OffsetFor(res.Matches[0]))
		res.Window = win
		res.Moved = true
	}

	return res
}

// Jump moves the window to the result's current match.
func (e *Engine) Jump(w Windower, res *Result) (store.Window, bool) {
	row, ok := res.Current()
	if !ok {
		return store.Window{}, false
	}
	win, _ := w.SetOffset(e.OffsetFor(row))
	res.Window = win
	return win, true
}

func matchRow(row table.Row, needle string, column int) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if column == AllColumns {
		for _, v := range row {
			if matchValue(v, needle) {
				return true
			}
		}
		return false
	}

	if column < 0 || column >= len(row) {
		return false
	}
	return matchValue(row[column], needle)
}

func matchValue(v table.Value, needle string) bool {
	if v.IsMissing() {
		return false
	}
	return strings.Contains(strings.ToLower(v.Natural()), needle)
}

// Result is the outcome of one query. Matches holds 0-based dataset row
// indices in ascending order.
type Result struct {
	Query   string
	Column  int
	Matches []int
	Scanned int

	// Window is the window after repositioning; zero when Moved is false.
	Window store.Window
	Moved  bool

	cursor int
}

// Count returns the number of matches.
func (r Result) Count() int { return len(r.Matches) }

// Status returns the user-facing summary of the result.
func (r Result) Status() string {
	if len(r.Matches) == 0 {
		return "No matches found"
	}
	return fmt.Sprintf("Found %d matches", len(r.Matches))
}

// Current returns the row index of the selected match.
func (r Result) Current() (int, bool) {
	if len(r.Matches) == 0 {
		return 0, false
	}
	return r.Matches[r.cursor], true
}

// Index returns the 0-based position of the selected match.
func (r Result) Index() int { return r.cursor }

// Next selects the following match, wrapping at the end.
func (r *Result) Next() (int, bool) {
	if len(r.Matches) == 0 {
		return 0, false
	}
	r.cursor = (r.cursor + 1) % len(r.Matches)
	return r.Matches[r.cursor], true
}

// Prev selects the preceding match, wrapping at the start.
func (r *Result) Prev() (int, bool) {
	if len(r.Matches) == 0 {
		return 0, false
	}
	r.cursor = (r.cursor - 1 + len(r.Matches)) % len(r.Matches)
	return r.Matches[r.cursor], true
}

// Contains reports whether row is a match.
func (r Result) Contains(row int) bool {
	_, ok := slices.BinarySearch(r.Matches, row)
	return ok
}
