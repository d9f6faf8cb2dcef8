package store

import (
	"strconv"
	"sync"
	"testing"

	"github.com/colonyops/tabula/internal/core/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = table.Schema{"id", "label"}

// makeBatch builds rows numbered from..from+n-1.
func makeBatch(from, n int) table.Batch {
	rows := make([]table.Row, n)
	for i := range rows {
		id := strconv.Itoa(from + i)
		rows[i] = table.Row{table.ParseValue(id, nil), table.Text("row " + id)}
	}
	return table.Batch{Columns: testSchema, Rows: rows}
}

func loaded(n, batch int) *Store {
	s := New(100)
	for from := 0; from < n; from += batch {
		s.AppendBatch(makeBatch(from, min(batch, n-from)))
	}
	return s
}

func ids(w Window) []int {
	out := make([]int, len(w.Rows))
	for i, row := range w.Rows {
		out[i] = int(row[0].Num)
	}
	return out
}

func TestClampOffset(t *testing.T) {
	tests := []struct {
		name                    string
		offset, total, capacity int
		want                    int
	}{
		{name: "negative", offset: -5, total: 1000, capacity: 100, want: 0},
		{name: "inside", offset: 250, total: 1000, capacity: 100, want: 250},
		{name: "max", offset: 900, total: 1000, capacity: 100, want: 900},
		{name: "past max", offset: 950, total: 1000, capacity: 100, want: 900},
		{name: "total below capacity", offset: 10, total: 40, capacity: 100, want: 0},
		{name: "empty", offset: 3, total: 0, capacity: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampOffset(tt.offset, tt.total, tt.capacity))
		})
	}
}

func TestComputeWindow_SliceBounds(t *testing.T) {
	s := loaded(1000, 250)

	for _, o := range []int{-10, 0, 1, 37, 450, 899, 900, 901, 5000} {
		t.Run(strconv.Itoa(o), func(t *testing.T) {
			w := s.ComputeWindow(o)
			want := min(max(o, 0), 900)

			assert.Equal(t, want, w.Offset)
			assert.Equal(t, 100, w.Len())
			assert.Equal(t, want, int(w.Rows[0][0].Num))
			assert.Equal(t, testSchema, w.Schema)
			assert.Equal(t, want+1, w.RowNumber(0))
		})
	}
}

func TestComputeWindow_DoesNotStoreOffset(t *testing.T) {
	s := loaded(500, 500)

	s.ComputeWindow(200)
	assert.Equal(t, 0, s.Offset())
}

func TestComputeWindow_TruncatedWhenRowsNotLoaded(t *testing.T) {
	s := New(100)
	s.SetTotalRowCount(1000)
	s.AppendBatch(makeBatch(0, 150))

	w := s.ComputeWindow(120)
	assert.Equal(t, 120, w.Offset)
	assert.Equal(t, 30, w.Len(), "never padded")

	w = s.ComputeWindow(600)
	assert.Equal(t, 600, w.Offset)
	assert.Zero(t, w.Len())
	assert.Equal(t, 1000, w.Total)
}

func TestSetOffset_EquivalentToClamp(t *testing.T) {
	s := loaded(1000, 1000)

	for _, o := range []int{-1, 0, 450, 900, 2000} {
		w, _ := s.SetOffset(o)
		assert.Equal(t, ClampOffset(o, 1000, 100), w.Offset)
		assert.Equal(t, w.Offset, s.Offset())
	}
}

func TestSetOffset_Changed(t *testing.T) {
	s := loaded(1000, 1000)

	_, changed := s.SetOffset(0)
	assert.False(t, changed)

	_, changed = s.SetOffset(10)
	assert.True(t, changed)

	_, changed = s.SetOffset(10)
	assert.False(t, changed)
}

func TestSetOffset_SmallDataset(t *testing.T) {
	s := loaded(40, 40)

	w, changed := s.SetOffset(25)
	assert.False(t, changed)
	assert.Equal(t, 0, w.Offset)
	assert.Equal(t, 40, w.Len())
}

func TestAppendBatch_SchemaSetOnce(t *testing.T) {
	s := New(10)

	schemaSet, _ := s.AppendBatch(table.Batch{Columns: table.Schema{"ignored"}})
	assert.False(t, schemaSet, "empty batches are ignored")
	assert.Nil(t, s.Schema())

	schemaSet, _ = s.AppendBatch(makeBatch(0, 5))
	assert.True(t, schemaSet)

	other := makeBatch(5, 5)
	other.Columns = table.Schema{"x", "y"}
	schemaSet, _ = s.AppendBatch(other)
	assert.False(t, schemaSet)
	assert.Equal(t, testSchema, s.Schema())
}

func TestAppendBatch_ConcatenatesInOrder(t *testing.T) {
	s := New(100)
	sizes := []int{7, 1, 30, 12}

	from := 0
	for _, n := range sizes {
		s.AppendBatch(makeBatch(from, n))
		from += n
	}

	rows := s.Rows()
	require.Len(t, rows, 50)
	for i, row := range rows {
		assert.Equal(t, float64(i), row[0].Num)
	}
}

func TestAppendBatch_WindowChanged(t *testing.T) {
	s := New(10)

	_, changed := s.AppendBatch(makeBatch(0, 5))
	assert.True(t, changed, "first rows fill the window")

	_, changed = s.AppendBatch(makeBatch(5, 10))
	assert.True(t, changed, "window was only half full")

	_, changed = s.AppendBatch(makeBatch(15, 10))
	assert.False(t, changed, "rows land past the window")

	s.SetTotalRowCount(100)
	s.SetOffset(20)
	_, changed = s.AppendBatch(makeBatch(25, 3))
	assert.True(t, changed)
}

func TestSetTotalRowCount_Reclamps(t *testing.T) {
	s := New(100)
	s.SetTotalRowCount(1000)
	s.AppendBatch(makeBatch(0, 1000))
	s.SetOffset(850)

	w, changed := s.SetTotalRowCount(500)
	assert.False(t, changed, "loaded rows keep the effective total at 1000")
	assert.Equal(t, 850, w.Offset)

	s2 := New(100)
	s2.SetTotalRowCount(1000)
	s2.AppendBatch(makeBatch(0, 300))
	s2.SetOffset(850)

	w, changed = s2.SetTotalRowCount(300)
	assert.True(t, changed)
	assert.Equal(t, 200, w.Offset)
	assert.Equal(t, ids(s2.Current()), ids(w))
}

func TestTotal_Effective(t *testing.T) {
	s := New(10)
	s.SetTotalRowCount(3)
	s.AppendBatch(makeBatch(0, 8))

	assert.Equal(t, 8, s.Total())
	assert.Equal(t, 8, s.Len())
}

func TestWindow_Cell(t *testing.T) {
	s := New(10)
	s.AppendBatch(table.Batch{
		Columns: table.Schema{"n", "m"},
		Rows: []table.Row{
			{table.ParseValue("1.5", nil), table.Missing("NA")},
		},
	})

	w := s.Current()
	assert.Equal(t, "1.500000", w.Cell(0, 0))
	assert.Empty(t, w.Cell(0, 1))
	assert.Empty(t, w.Cell(0, 5))
	assert.Empty(t, w.Cell(3, 0))
}

func TestRows_SnapshotUnaffectedByLaterAppends(t *testing.T) {
	s := loaded(10, 10)
	snap := s.Rows()

	s.AppendBatch(makeBatch(10, 10))
	assert.Len(t, snap, 10)
	assert.Equal(t, 20, s.Len())
}

func TestStore_ConcurrentReadersSeeWholeBatches(t *testing.T) {
	const batch = 25
	s := New(100)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for from := 0; from < 5000; from += batch {
			s.AppendBatch(makeBatch(from, batch))
		}
	}()

	for range 200 {
		n := len(s.Rows())
		assert.Zero(t, n%batch)
		w := s.ComputeWindow(n)
		assert.LessOrEqual(t, w.Len(), 100)
	}

	wg.Wait()
	assert.Equal(t, 5000, s.Len())
}
