// Package store holds the rows of the current load and the fixed-size window
// of them that is on screen.
package store

import (
	"sync"

	"github.com/colonyops/tabula/internal/core/table"
)

// DefaultCapacity is the window size used when New is given a non-positive
// capacity.
const DefaultCapacity = 100

// Window is a view of at most Capacity consecutive rows starting at Offset.
// Rows aliases the store's buffer and must not be modified.
type Window struct {
	Offset int
	Rows   []table.Row
	Schema table.Schema
	Total  int
}

// Len returns the number of rows in the window.
func (w Window) Len() int { return len(w.Rows) }

// RowNumber returns the 1-based dataset row number of window row i.
func (w Window) RowNumber(i int) int { return w.Offset + i + 1 }

// Cell returns the display text of window row i, column j. Out of range
// positions render empty.
func (w Window) Cell(i, j int) string {
	if i < 0 || i >= len(w.Rows) || j < 0 || j >= len(w.Rows[i]) {
		return ""
	}
	return w.Rows[i][j].Format()
}

// Store is the sole owner of the dataset and the window offset. Rows are only
// ever appended, in batch order. All methods are safe for concurrent use and
// readers observe whole batches only.
type Store struct {
	mu       sync.RWMutex
	capacity int
	schema   table.Schema
	rows     []table.Row
	total    int
	offset   int
}

// New creates an empty store with a window of capacity rows.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// ClampOffset clamps offset to [0, max(0, total-capacity)].
func ClampOffset(offset, total, capacity int) int {
	return min(max(offset, 0), max(total-capacity, 0))
}

// AppendBatch appends a batch in order. The schema is taken from the first
// non-empty batch and never changes afterwards. windowChanged reports whether
// the appended rows fall inside the current window.
func (s *Store) AppendBatch(b table.Batch) (schemaSet, windowChanged bool) {
	if b.Len() == 0 {
		return false, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema == nil {
		s.schema = b.Columns
		schemaSet = true
	}

	start := len(s.rows)
	s.rows = append(s.rows, b.Rows...)
	end := len(s.rows)

	windowChanged = start < s.offset+s.capacity && end > s.offset
	return schemaSet, windowChanged
}

// SetTotalRowCount records the provisional or final row count and re-clamps
// the offset. The returned bool reports whether the offset moved.
func (s *Store) SetTotalRowCount(n int) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = max(n, 0)

	clamped := ClampOffset(s.offset, s.effectiveTotal(), s.capacity)
	changed := clamped != s.offset
	s.offset = clamped

	return s.window(s.offset), changed
}

// ComputeWindow returns the window for offset without storing it.
func (s *Store) ComputeWindow(offset int) Window {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.window(ClampOffset(offset, s.effectiveTotal(), s.capacity))
}

// SetOffset clamps and stores offset and returns the resulting window.
// changed reports whether the stored offset moved.
func (s *Store) SetOffset(offset int) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clamped := ClampOffset(offset, s.effectiveTotal(), s.capacity)
	changed := clamped != s.offset
	s.offset = clamped

	return s.window(s.offset), changed
}

// Current returns the window at the stored offset.
func (s *Store) Current() Window {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.window(s.offset)
}

// Rows returns every row loaded so far. The slice is a snapshot: rows appended
// later are not visible through it.
func (s *Store) Rows() []table.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rows[:len(s.rows):len(s.rows)]
}

// Schema returns the column schema, nil until the first batch arrives.
func (s *Store) Schema() table.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.schema
}

// Len returns the number of rows loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rows)
}

// Total returns the row count used for clamping: the recorded total, or the
// loaded count once that is larger.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.effectiveTotal()
}

// Offset returns the stored window offset.
func (s *Store) Offset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.offset
}

// Capacity returns the window size.
func (s *Store) Capacity() int { return s.capacity }

func (s *Store) effectiveTotal() int {
	return max(s.total, len(s.rows))
}

// window slices the dataset at offset. Rows not yet loaded are simply absent.
func (s *Store) window(offset int) Window {
	start := min(offset, len(s.rows))
	end := min(offset+s.capacity, len(s.rows))

	return Window{
		Offset: offset,
		Rows:   s.rows[start:end:end],
		Schema: s.schema,
		Total:  s.effectiveTotal(),
	}
}
