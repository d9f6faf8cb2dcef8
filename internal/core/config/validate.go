package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("loader.batch_size", c.Loader.BatchSize, atLeast(1)),
		criterio.Run("loader.delimiter", c.Loader.Delimiter, validDelimiter),
		criterio.Run("window.rows", c.Window.Rows, atLeast(1)),
		criterio.Run("search.lookback", c.Search.Lookback, atLeast(0)),
		criterio.Run("tui.theme", c.TUI.Theme, knownTheme),
		criterio.Run("tui.max_column_width", c.TUI.MaxColumnWidth, atLeast(3)),
		c.validateDurations(),
		c.validateHiddenColumns(),
	)
}

// ValidateDeep runs Validate and then checks the config file itself.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return validateConfigFile(configPath)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Loader.BatchSize < c.Window.Rows {
		warnings = append(warnings, ValidationWarning{
			Field:   "loader.batch_size",
			Message: fmt.Sprintf("batch size %d is smaller than the window (%d rows); the first screen fills over several batches", c.Loader.BatchSize, c.Window.Rows),
		})
	}

	if c.Loader.NullValues != nil && len(c.Loader.NullValues) == 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "loader.null_values",
			Message: "no null markers configured; empty fields are searched as text",
		})
	}

	return warnings
}

func (c *Config) validateDurations() error {
	var errs criterio.FieldErrorsBuilder
	if c.Scroll.Debounce < 0 {
		errs = errs.Append("scroll.debounce", errors.New("must not be negative"))
	}
	if c.Watch.Debounce < 0 {
		errs = errs.Append("watch.debounce", errors.New("must not be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateHiddenColumns() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.TUI.HiddenColumns {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("tui.hidden_columns[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func atLeast(n int) func(int) error {
	return func(v int) error {
		if v < n {
			return fmt.Errorf("must be at least %d", n)
		}
		return nil
	}
}

func validDelimiter(d string) error {
	if utf8.RuneCountInString(d) != 1 {
		return fmt.Errorf("must be a single character, got %q", d)
	}
	r, _ := utf8.DecodeRuneInString(d)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return fmt.Errorf("%q cannot be used as a delimiter", d)
	}
	return nil
}

func knownTheme(name string) error {
	if !slices.Contains(styles.ThemeNames(), name) {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}
