package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a child of the global logger tagged with a component
// name under the "cmp" key.
func Component(name string) zerolog.Logger {
	return Sub(log.Logger, name)
}

// Sub tags an injected logger with a component name. The context hook is
// attached so events logged with a context carry source and load fields.
func Sub(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("cmp", name).Logger().Hook(ContextHook{})
}
