package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the source path and load generation from an event's
// context onto the event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if src := GetSource(ctx); src != "" {
		e.Str("source", src)
	}

	if gen, ok := GetLoadID(ctx); ok {
		e.Uint64("load_id", gen)
	}
}
