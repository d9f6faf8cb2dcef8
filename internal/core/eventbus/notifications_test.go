package eventbus_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/colonyops/tabula/internal/core/eventbus"
	"github.com/colonyops/tabula/internal/core/eventbus/testbus"
	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/notify"
	"github.com/colonyops/tabula/internal/core/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastStatus(t *testing.T, tb *testbus.Bus) notify.Notification {
	t.Helper()
	p, ok := testbus.Last[eventbus.StatusChangedPayload](tb)
	require.True(t, ok, "no status published")
	return p.Notification
}

func TestStatusRouter(t *testing.T) {
	tests := []struct {
		name      string
		publish   func(bus *eventbus.EventBus)
		wantLevel notify.Level
		wantMsg   string
	}{
		{
			name: "load started",
			publish: func(bus *eventbus.EventBus) {
				bus.PublishLoadStarted(eventbus.LoadStartedPayload{Path: "/tmp/data/big.csv"})
			},
			wantLevel: notify.LevelInfo,
			wantMsg:   "Loading big.csv...",
		},
		{
			name: "load completed",
			publish: func(bus *eventbus.EventBus) {
				bus.PublishLoadCompleted(eventbus.LoadCompletedPayload{Path: "/tmp/data/big.csv", Loaded: 10})
			},
			wantLevel: notify.LevelInfo,
			wantMsg:   "Loaded big.csv successfully",
		},
		{
			name: "load cancelled",
			publish: func(bus *eventbus.EventBus) {
				bus.PublishLoadCompleted(eventbus.LoadCompletedPayload{Path: "big.csv", Loaded: 10, Cancelled: true})
			},
			wantLevel: notify.LevelWarning,
			wantMsg:   "Loading big.csv cancelled after 10 rows",
		},
		{
			name: "parse failure",
			publish: func(bus *eventbus.EventBus) {
				bus.PublishLoadFailed(eventbus.LoadFailedPayload{
					Err: fmt.Errorf("%w: line 4: expected 2 fields, found 3", loader.ErrParseFailure),
				})
			},
			wantLevel: notify.LevelError,
			wantMsg:   "Error loading data: parse failure: line 4: expected 2 fields, found 3",
		},
		{
			name: "unreadable source",
			publish: func(bus *eventbus.EventBus) {
				bus.PublishLoadFailed(eventbus.LoadFailedPayload{
					Err: fmt.Errorf("%w: %w", loader.ErrSourceUnreadable, errors.New("no such file")),
				})
			},
			wantLevel: notify.LevelError,
			wantMsg:   "Could not open file: source unreadable: no such file",
		},
		{
			name: "search hit",
			publish: func(bus *eventbus.EventBus) {
				bus.PublishSearchCompleted(eventbus.SearchCompletedPayload{
					Result: search.Result{Query: "x", Matches: []int{1, 2}},
				})
			},
			wantLevel: notify.LevelInfo,
			wantMsg:   "Found 2 matches",
		},
		{
			name: "search miss",
			publish: func(bus *eventbus.EventBus) {
				bus.PublishSearchCompleted(eventbus.SearchCompletedPayload{
					Result: search.Result{Query: "x"},
				})
			},
			wantLevel: notify.LevelWarning,
			wantMsg:   "No matches found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := testbus.New(t)
			eventbus.NewStatusRouter(tb.EventBus).Register()

			tt.publish(tb.EventBus)

			n := lastStatus(t, tb)
			assert.Equal(t, tt.wantLevel, n.Level)
			assert.Equal(t, tt.wantMsg, n.Message)
		})
	}
}

func TestStatusRouter_NilSafe(t *testing.T) {
	var r *eventbus.StatusRouter
	assert.NotPanics(t, r.Register)
}
