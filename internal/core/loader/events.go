package loader

import "github.com/colonyops/tabula/internal/core/table"

// Event is emitted by a Loader on its events channel. Every event carries the
// generation of the load that produced it so consumers can drop events from a
// load that has since been replaced.
type Event interface {
	Generation() uint64
}

// TotalEvent is the pre-scan result, published before any batch. Rows is
// Lines minus the header line.
type TotalEvent struct {
	Gen   uint64
	Lines int
	Rows  int
}

// BatchEvent delivers one parsed batch. Loaded is the cumulative row count
// including this batch.
type BatchEvent struct {
	Gen    uint64
	Batch  table.Batch
	Loaded int
}

// ProgressEvent reports load progress in percent, 0 to 100, non-decreasing
// within a load.
type ProgressEvent struct {
	Gen     uint64
	Percent int
}

// DoneEvent terminates a load that did not fail. Cancelled is set when the
// load stopped because Stop was called.
type DoneEvent struct {
	Gen       uint64
	Loaded    int
	Cancelled bool
}

// FailedEvent terminates a load that failed. Err wraps ErrSourceUnreadable or
// ErrParseFailure. Rows from batches delivered before the failure stay valid.
type FailedEvent struct {
	Gen    uint64
	Err    error
	Loaded int
}

func (e TotalEvent) Generation() uint64    { return e.Gen }
func (e BatchEvent) Generation() uint64    { return e.Gen }
func (e ProgressEvent) Generation() uint64 { return e.Gen }
func (e DoneEvent) Generation() uint64     { return e.Gen }
func (e FailedEvent) Generation() uint64   { return e.Gen }
