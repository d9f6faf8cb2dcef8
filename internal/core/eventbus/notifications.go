package eventbus

import (
	"path/filepath"

	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/notify"
)

// StatusRouter maps load and search events to status.changed events.
type StatusRouter struct {
	bus *EventBus
}

// NewStatusRouter constructs a router for event-to-status mappings.
func NewStatusRouter(bus *EventBus) *StatusRouter {
	return &StatusRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *StatusRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeLoadStarted(func(p LoadStartedPayload) {
		r.publish(notify.Infof("Loading %s...", filepath.Base(p.Path)))
	})

	r.bus.SubscribeLoadCompleted(func(p LoadCompletedPayload) {
		if p.Cancelled {
			r.publish(notify.Warnf("Loading %s cancelled after %d rows", filepath.Base(p.Path), p.Loaded))
			return
		}
		r.publish(notify.Infof("Loaded %s successfully", filepath.Base(p.Path)))
	})

	r.bus.SubscribeLoadFailed(func(p LoadFailedPayload) {
		if loader.IsSourceUnreadable(p.Err) {
			r.publish(notify.Errorf("Could not open file: %v", p.Err))
			return
		}
		r.publish(notify.Errorf("Error loading data: %v", p.Err))
	})

	r.bus.SubscribeSearchCompleted(func(p SearchCompletedPayload) {
		if p.Result.Count() == 0 {
			r.publish(notify.Warnf("%s", p.Result.Status()))
			return
		}
		r.publish(notify.Infof("%s", p.Result.Status()))
	})
}

func (r *StatusRouter) publish(n notify.Notification) {
	r.bus.PublishStatusChanged(StatusChangedPayload{Notification: n})
}
