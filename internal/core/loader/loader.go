// Package loader streams a delimited text file into batches of parsed rows on
// a background goroutine.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/colonyops/tabula/internal/core/table"
	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of rows per batch when Options leaves it unset.
const DefaultBatchSize = 100_000

// Options configures a load. The dialect is fixed per load; there is no
// detection.
type Options struct {
	BatchSize  int
	Delimiter  rune
	LazyQuotes bool
	TrimSpace  bool
	NullValues []string // nil means only empty fields are missing
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.NullValues == nil {
		o.NullValues = []string{""}
	}
	return o
}

// Loader reads one source file. It never touches the store; everything it
// produces goes out on the events channel, which is closed when the worker
// exits. The channel is unbuffered so a Stop issued after receiving batch k
// guarantees batch k+1 is never delivered.
type Loader struct {
	path string
	gen  uint64
	opts Options
	log  zerolog.Logger

	events  chan Event
	done    chan struct{}
	stopped atomic.Bool
}

// Start launches a load of path tagged with generation gen. Cancelling ctx
// abandons any undelivered event; Stop is the cooperative alternative.
func Start(ctx context.Context, path string, gen uint64, opts Options, logger zerolog.Logger) *Loader {
	l := &Loader{
		path:   path,
		gen:    gen,
		opts:   opts.withDefaults(),
		log:    logger,
		events: make(chan Event),
		done:   make(chan struct{}),
	}

	go l.run(ctx)
	return l
}

// Events returns the channel of load events. It is closed after the terminal
// DoneEvent or FailedEvent.
func (l *Loader) Events() <-chan Event { return l.events }

// Generation returns the generation this loader tags its events with.
func (l *Loader) Generation() uint64 { return l.gen }

// Path returns the source path.
func (l *Loader) Path() string { return l.path }

// Stop requests cancellation. The loader notices at the next batch boundary,
// discards the batch in progress, and emits DoneEvent with Cancelled set.
func (l *Loader) Stop() { l.stopped.Store(true) }

// Stopped reports whether Stop has been called.
func (l *Loader) Stopped() bool { return l.stopped.Load() }

// Done is closed when the worker goroutine has exited.
func (l *Loader) Done() <-chan struct{} { return l.done }

// Wait joins the worker goroutine, discarding events nobody consumed.
func (l *Loader) Wait() {
	for range l.events {
	}
	<-l.done
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)
	defer close(l.events)

	start := time.Now()

	lines, err := CountFileLines(l.path)
	if err != nil {
		l.log.Error().Err(err).Str("path", l.path).Msg("pre-scan failed")
		l.send(ctx, FailedEvent{Gen: l.gen, Err: fmt.Errorf("%w: %w", ErrSourceUnreadable, err)})
		return
	}

	if !l.send(ctx, TotalEvent{Gen: l.gen, Lines: lines, Rows: max(lines-1, 0)}) {
		return
	}
	if !l.send(ctx, ProgressEvent{Gen: l.gen, Percent: 0}) {
		return
	}

	loaded, cancelled, err := l.parse(ctx, lines)
	switch {
	case err != nil:
		l.log.Error().Err(err).Int("loaded", loaded).Msg("load failed")
		l.send(ctx, FailedEvent{Gen: l.gen, Err: err, Loaded: loaded})
	case cancelled:
		l.log.Info().Int("loaded", loaded).Msg("load cancelled")
		l.send(ctx, DoneEvent{Gen: l.gen, Loaded: loaded, Cancelled: true})
	default:
		l.log.Info().
			Int("loaded", loaded).
			Int("lines", lines).
			Dur("elapsed", time.Since(start)).
			Msg("load complete")
		if l.send(ctx, ProgressEvent{Gen: l.gen, Percent: 100}) {
			l.send(ctx, DoneEvent{Gen: l.gen, Loaded: loaded})
		}
	}
}

// parse reads the header and then every batch. It returns the number of rows
// delivered, whether it stopped because of cancellation, and any failure.
func (l *Loader) parse(ctx context.Context, lines int) (int, bool, error) {
	src, err := OpenSource(l.path)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer func() { _ = src.Close() }()

	r := csv.NewReader(src)
	r.Comma = l.opts.Delimiter
	r.LazyQuotes = l.opts.LazyQuotes
	r.TrimLeadingSpace = l.opts.TrimSpace
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: header: %w", ErrParseFailure, err)
	}

	schema := table.NewSchema(head)
	nulls := table.NewNullSet(l.opts.NullValues)
	tracker := progress{lines: lines}
	loaded := 0

	for {
		if l.stopped.Load() || ctx.Err() != nil {
			return loaded, true, nil
		}

		batch, eof, err := readBatch(r, schema, nulls, l.opts.BatchSize)
		if err != nil {
			return loaded, false, err
		}

		if batch.Len() > 0 {
			if l.stopped.Load() {
				return loaded, true, nil
			}

			loaded += batch.Len()
			l.log.Debug().Int("rows", batch.Len()).Int("loaded", loaded).Msg("batch parsed")

			if !l.send(ctx, BatchEvent{Gen: l.gen, Batch: batch, Loaded: loaded}) {
				return loaded, true, nil
			}
			if !l.send(ctx, ProgressEvent{Gen: l.gen, Percent: tracker.update(loaded)}) {
				return loaded, true, nil
			}
		}

		if eof {
			return loaded, false, nil
		}
	}
}

// readBatch reads up to size records. Short records are padded with missing
// values; records wider than the schema fail the batch.
func readBatch(r *csv.Reader, schema table.Schema, nulls table.NullSet, size int) (table.Batch, bool, error) {
	batch := table.Batch{Columns: schema, Rows: make([]table.Row, 0, size)}

	for batch.Len() < size {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return batch, true, nil
		}
		if err != nil {
			return table.Batch{}, false, fmt.Errorf("%w: %w", ErrParseFailure, err)
		}

		if len(rec) > len(schema) {
			line, _ := r.FieldPos(0)
			return table.Batch{}, false, fmt.Errorf("%w: line %d: expected %d fields, found %d",
				ErrParseFailure, line, len(schema), len(rec))
		}

		row := make(table.Row, len(schema))
		for i := range row {
			if i < len(rec) {
				row[i] = table.ParseValue(rec[i], nulls)
			} else {
				row[i] = table.Missing("")
			}
		}
		batch.Rows = append(batch.Rows, row)
	}

	return batch, false, nil
}

// send delivers ev unless ctx is cancelled first.
func (l *Loader) send(ctx context.Context, ev Event) bool {
	select {
	case l.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// progress converts a cumulative row count into a clamped, non-decreasing
// percentage of the pre-scanned line count.
type progress struct {
	lines int
	last  int
}

func (p *progress) update(loaded int) int {
	if p.lines <= 0 {
		return p.last
	}

	pct := int(math.Round(100 * float64(loaded) / float64(p.lines)))
	pct = min(pct, 100)
	if pct > p.last {
		p.last = pct
	}
	return p.last
}
