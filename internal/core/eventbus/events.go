// Package eventbus provides a typed publish/subscribe event bus carrying load,
// window, search, and status events from the browse session to its
// presentation layer.
package eventbus

import (
	"time"

	"github.com/colonyops/tabula/internal/core/notify"
	"github.com/colonyops/tabula/internal/core/search"
	"github.com/colonyops/tabula/internal/core/store"
	"github.com/colonyops/tabula/internal/core/table"
)

// Event names a kind of event.
type Event string

const (
	EventLoadCompleted   Event = "load.completed"
	EventLoadFailed      Event = "load.failed"
	EventLoadProgress    Event = "load.progress"
	EventLoadStarted     Event = "load.started"
	EventSchemaReady     Event = "schema.ready"
	EventSearchCompleted Event = "search.completed"
	EventStatusChanged   Event = "status.changed"
	EventWindowChanged   Event = "window.changed"
)

// Events maps every event to its payload type.
var Events = map[Event]any{
	// Keep list sorted A-Z
	EventLoadCompleted:   LoadCompletedPayload{},
	EventLoadFailed:      LoadFailedPayload{},
	EventLoadProgress:    LoadProgressPayload{},
	EventLoadStarted:     LoadStartedPayload{},
	EventSchemaReady:     SchemaReadyPayload{},
	EventSearchCompleted: SearchCompletedPayload{},
	EventStatusChanged:   StatusChangedPayload{},
	EventWindowChanged:   WindowChangedPayload{},
}

// LoadStartedPayload is emitted when a new load begins.
type LoadStartedPayload struct {
	Path string
	Gen  uint64
}

// LoadProgressPayload is emitted on every progress step and when the
// pre-scanned total becomes known.
type LoadProgressPayload struct {
	Gen     uint64
	Percent int
	Loaded  int
	Total   int
}

// LoadCompletedPayload is emitted when a load ends without failing.
type LoadCompletedPayload struct {
	Path      string
	Gen       uint64
	Loaded    int
	Cancelled bool
	Elapsed   time.Duration
}

// LoadFailedPayload is emitted when a load fails. Rows loaded before the
// failure remain browsable.
type LoadFailedPayload struct {
	Path   string
	Gen    uint64
	Err    error
	Loaded int
}

// SchemaReadyPayload is emitted once per load when the column schema is known.
type SchemaReadyPayload struct {
	Gen     uint64
	Columns table.Schema
}

// WindowChangedPayload is emitted whenever the visible window changes.
type WindowChangedPayload struct {
	Window store.Window
}

// SearchCompletedPayload is emitted after every non-empty query.
type SearchCompletedPayload struct {
	Result search.Result
}

// StatusChangedPayload carries a user-facing status message.
type StatusChangedPayload struct {
	Notification notify.Notification
}
