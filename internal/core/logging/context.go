package logging

import "context"

type contextKey string

const (
	sourceKey contextKey = "source"
	loadIDKey contextKey = "load_id"
)

// WithSource adds the path of the file being browsed to the context.
func WithSource(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, sourceKey, path)
}

// WithLoadID adds a load generation to the context.
func WithLoadID(ctx context.Context, gen uint64) context.Context {
	return context.WithValue(ctx, loadIDKey, gen)
}

// GetSource retrieves the source path from the context.
// Returns empty string if not present.
func GetSource(ctx context.Context) string {
	if p, ok := ctx.Value(sourceKey).(string); ok {
		return p
	}
	return ""
}

// GetLoadID retrieves the load generation from the context.
// Returns 0 and false if not present.
func GetLoadID(ctx context.Context) (uint64, bool) {
	gen, ok := ctx.Value(loadIDKey).(uint64)
	return gen, ok
}
