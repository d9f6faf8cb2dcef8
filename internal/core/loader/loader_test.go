package loader

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/colonyops/tabula/internal/core/table"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func numberedCSV(rows int) string {
	var b strings.Builder
	b.WriteString("id,name,score\n")
	for i := range rows {
		fmt.Fprintf(&b, "%d,row-%d,%d.5\n", i, i, i)
	}
	return b.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collect(t *testing.T, l *Loader) []Event {
	t.Helper()

	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-l.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("loader did not finish")
			return nil
		}
	}
}

func batchesOf(events []Event) []BatchEvent {
	var out []BatchEvent
	for _, ev := range events {
		if b, ok := ev.(BatchEvent); ok {
			out = append(out, b)
		}
	}
	return out
}

func progressOf(events []Event) []int {
	var out []int
	for _, ev := range events {
		if p, ok := ev.(ProgressEvent); ok {
			out = append(out, p.Percent)
		}
	}
	return out
}

func start(t *testing.T, path string, opts Options) *Loader {
	t.Helper()
	return Start(t.Context(), path, 1, opts, zerolog.Nop())
}

func TestLoader_StreamsBatchesInOrder(t *testing.T) {
	path := writeFile(t, "rows.csv", numberedCSV(10))

	events := collect(t, start(t, path, Options{BatchSize: 3}))
	require.NotEmpty(t, events)

	total, ok := events[0].(TotalEvent)
	require.True(t, ok, "first event is the pre-scan total")
	assert.Equal(t, 11, total.Lines)
	assert.Equal(t, 10, total.Rows)

	batches := batchesOf(events)
	require.Len(t, batches, 4)

	var ids []string
	for i, b := range batches {
		assert.Equal(t, table.Schema{"id", "name", "score"}, b.Batch.Columns)
		for _, row := range b.Batch.Rows {
			ids = append(ids, row[0].Raw)
		}
		if i < 3 {
			assert.Equal(t, 3, b.Batch.Len())
		}
	}
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}, ids)
	assert.Equal(t, 10, batches[3].Loaded)

	done, ok := events[len(events)-1].(DoneEvent)
	require.True(t, ok)
	assert.False(t, done.Cancelled)
	assert.Equal(t, 10, done.Loaded)

	for _, ev := range events {
		assert.Equal(t, uint64(1), ev.Generation())
	}
}

func TestLoader_ProgressNonDecreasingEndsAt100(t *testing.T) {
	path := writeFile(t, "rows.csv", numberedCSV(57))

	progress := progressOf(collect(t, start(t, path, Options{BatchSize: 5})))
	require.NotEmpty(t, progress)

	assert.Equal(t, 0, progress[0])
	assert.Equal(t, 100, progress[len(progress)-1])
	assert.IsNonDecreasing(t, progress)
	for _, p := range progress {
		assert.LessOrEqual(t, p, 100)
	}
}

func TestLoader_ParsesValues(t *testing.T) {
	path := writeFile(t, "rows.csv", "a,b,c\n1,NA,x\n2.25,,\n3\n")

	batches := batchesOf(collect(t, start(t, path, Options{NullValues: []string{"", "NA"}})))
	require.Len(t, batches, 1)
	rows := batches[0].Batch.Rows
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"1", "", "x"}, rows[0].Formatted())
	assert.Equal(t, []string{"2.250000", "", ""}, rows[1].Formatted())

	// short records are padded with missing values
	assert.Len(t, rows[2], 3)
	assert.True(t, rows[2][1].IsMissing())
	assert.True(t, rows[2][2].IsMissing())
}

func TestLoader_EmptyFieldsMissingByDefault(t *testing.T) {
	path := writeFile(t, "rows.csv", "a,b,c\n1,,NA\n2\n")

	batches := batchesOf(collect(t, start(t, path, Options{})))
	require.Len(t, batches, 1)
	rows := batches[0].Batch.Rows

	assert.True(t, rows[0][1].IsMissing(), "empty field")
	assert.Equal(t, table.KindText, rows[0][2].Kind, "only empty fields by default")
	assert.True(t, rows[1][1].IsMissing(), "padded field")
}

func TestLoader_CancelAfterKBatches(t *testing.T) {
	path := writeFile(t, "rows.csv", numberedCSV(40))
	l := start(t, path, Options{BatchSize: 2})

	const k = 3
	var (
		batches  int
		terminal Event
	)

	for ev := range l.Events() {
		switch ev := ev.(type) {
		case BatchEvent:
			batches++
			if batches == k {
				l.Stop()
			}
		case DoneEvent, FailedEvent:
			terminal = ev
		}
	}

	assert.Equal(t, k, batches)
	done, ok := terminal.(DoneEvent)
	require.True(t, ok, "cancellation is not a failure")
	assert.True(t, done.Cancelled)
	assert.Equal(t, k*2, done.Loaded)
	assert.True(t, l.Stopped())
}

func TestLoader_MalformedBatchAborts(t *testing.T) {
	content := "a,b\n1,x\n2,y\n3,z,extra\n4,w\n5,v\n"
	path := writeFile(t, "rows.csv", content)

	events := collect(t, start(t, path, Options{BatchSize: 2}))

	batches := batchesOf(events)
	require.Len(t, batches, 1, "rows before the failing batch are kept")
	assert.Equal(t, 2, batches[0].Batch.Len())

	failed, ok := events[len(events)-1].(FailedEvent)
	require.True(t, ok)
	assert.True(t, IsParseFailure(failed.Err))
	assert.Contains(t, failed.Err.Error(), "line 4")
	assert.Equal(t, 2, failed.Loaded)

	assert.NotContains(t, progressOf(events), 100)
}

func TestLoader_BareQuoteIsParseFailure(t *testing.T) {
	path := writeFile(t, "rows.csv", "a,b\n1,\"unterminated\n")

	events := collect(t, start(t, path, Options{}))
	failed, ok := events[len(events)-1].(FailedEvent)
	require.True(t, ok)
	assert.True(t, IsParseFailure(failed.Err))
}

func TestLoader_SourceUnreadable(t *testing.T) {
	events := collect(t, start(t, filepath.Join(t.TempDir(), "missing.csv"), Options{}))

	require.Len(t, events, 1)
	failed, ok := events[0].(FailedEvent)
	require.True(t, ok)
	assert.True(t, IsSourceUnreadable(failed.Err))
	assert.False(t, IsParseFailure(failed.Err))
}

func TestLoader_EmptyAndHeaderOnly(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantLines int
	}{
		{name: "empty", content: "", wantLines: 0},
		{name: "header only", content: "a,b\n", wantLines: 1},
		{name: "header without newline", content: "a,b", wantLines: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "rows.csv", tt.content)
			events := collect(t, start(t, path, Options{}))

			total := events[0].(TotalEvent)
			assert.Equal(t, tt.wantLines, total.Lines)
			assert.Equal(t, 0, total.Rows)
			assert.Empty(t, batchesOf(events))
			assert.Equal(t, []int{0, 100}, progressOf(events))

			done := events[len(events)-1].(DoneEvent)
			assert.Equal(t, 0, done.Loaded)
		})
	}
}

func TestLoader_MultilineFieldExceedsEstimate(t *testing.T) {
	path := writeFile(t, "rows.csv", "a,b\n1,\"two\nlines\"\n2,\"more\nlines\"\n")

	events := collect(t, start(t, path, Options{}))

	total := events[0].(TotalEvent)
	assert.Equal(t, 4, total.Rows)

	done := events[len(events)-1].(DoneEvent)
	assert.Equal(t, 2, done.Loaded)
	assert.Equal(t, 100, progressOf(events)[len(progressOf(events))-1])
}

func TestLoader_Delimiter(t *testing.T) {
	path := writeFile(t, "rows.tsv", "a\tb\n1\t x\n")

	batches := batchesOf(collect(t, start(t, path, Options{Delimiter: '\t', TrimSpace: true})))
	require.Len(t, batches, 1)
	assert.Equal(t, "x", batches[0].Batch.Rows[0][1].Raw)
}

func TestLoader_DuplicateHeaders(t *testing.T) {
	path := writeFile(t, "rows.csv", "a,a,\n1,2,3\n")

	batches := batchesOf(collect(t, start(t, path, Options{})))
	require.Len(t, batches, 1)
	assert.Equal(t, table.Schema{"a", "a.1", "Unnamed: 2"}, batches[0].Batch.Columns)
}

func TestLoader_WaitWithoutConsumer(t *testing.T) {
	path := writeFile(t, "rows.csv", numberedCSV(1000))
	l := start(t, path, Options{BatchSize: 10})

	l.Stop()

	joined := make(chan struct{})
	go func() {
		l.Wait()
		close(joined)
	}()

	select {
	case <-joined:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return")
	}
}

func TestLoader_ContextCancelAbandonsSends(t *testing.T) {
	path := writeFile(t, "rows.csv", numberedCSV(100))
	ctx, cancel := context.WithCancel(t.Context())

	l := Start(ctx, path, 1, Options{BatchSize: 1}, zerolog.Nop())
	cancel()

	select {
	case <-l.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit after context cancel")
	}
}

func TestLoader_CompressedSources(t *testing.T) {
	content := numberedCSV(25)

	tests := []struct {
		name  string
		write func(t *testing.T, path string)
	}{
		{
			name: "rows.csv.gz",
			write: func(t *testing.T, path string) {
				f, err := os.Create(path)
				require.NoError(t, err)
				w := gzip.NewWriter(f)
				_, err = w.Write([]byte(content))
				require.NoError(t, err)
				require.NoError(t, w.Close())
				require.NoError(t, f.Close())
			},
		},
		{
			name: "rows.csv.zst",
			write: func(t *testing.T, path string) {
				f, err := os.Create(path)
				require.NoError(t, err)
				w, err := zstd.NewWriter(f)
				require.NoError(t, err)
				_, err = w.Write([]byte(content))
				require.NoError(t, err)
				require.NoError(t, w.Close())
				require.NoError(t, f.Close())
			},
		},
		{
			name: "rows.csv.xz",
			write: func(t *testing.T, path string) {
				f, err := os.Create(path)
				require.NoError(t, err)
				w, err := xz.NewWriter(f)
				require.NoError(t, err)
				_, err = w.Write([]byte(content))
				require.NoError(t, err)
				require.NoError(t, w.Close())
				require.NoError(t, f.Close())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			tt.write(t, path)

			events := collect(t, start(t, path, Options{BatchSize: 10}))

			total := events[0].(TotalEvent)
			assert.Equal(t, 25, total.Rows)

			done, ok := events[len(events)-1].(DoneEvent)
			require.True(t, ok)
			assert.Equal(t, 25, done.Loaded)
		})
	}
}

func TestLoader_CorruptGzipIsUnreadable(t *testing.T) {
	path := writeFile(t, "rows.csv.gz", "not gzip at all")

	events := collect(t, start(t, path, Options{}))
	failed, ok := events[0].(FailedEvent)
	require.True(t, ok)
	assert.True(t, IsSourceUnreadable(failed.Err))
}

func TestProgress_Update(t *testing.T) {
	p := progress{lines: 201}

	assert.Equal(t, 50, p.update(100))
	assert.Equal(t, 50, p.update(99), "never decreases")
	assert.Equal(t, 100, p.update(300), "clamped")

	zero := progress{}
	assert.Equal(t, 0, zero.update(10))
}
