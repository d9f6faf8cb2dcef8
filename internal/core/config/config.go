// Package config handles configuration loading and validation for tabula.
package config

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DefaultNullValues mirrors the markers most CSV producers use for an absent
// value. A field equal to one of these is treated as missing.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// Config holds the application configuration.
type Config struct {
	Loader LoaderConfig `yaml:"loader"`
	Window WindowConfig `yaml:"window"`
	Scroll ScrollConfig `yaml:"scroll"`
	Search SearchConfig `yaml:"search"`
	TUI    TUIConfig    `yaml:"tui"`
	Watch  WatchConfig  `yaml:"watch"`
}

// LoaderConfig controls how source files are read.
type LoaderConfig struct {
	BatchSize  int      `yaml:"batch_size"`  // rows per batch
	Delimiter  string   `yaml:"delimiter"`   // single character field separator
	LazyQuotes bool     `yaml:"lazy_quotes"` // tolerate bare quotes inside fields
	TrimSpace  bool     `yaml:"trim_space"`  // drop leading whitespace in fields
	NullValues []string `yaml:"null_values"` // markers treated as missing
}

// WindowConfig controls the visible slice of rows.
type WindowConfig struct {
	Rows int `yaml:"rows"`
}

// ScrollConfig controls scroll debouncing.
type ScrollConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// SearchConfig controls search repositioning.
type SearchConfig struct {
	Lookback int `yaml:"lookback"` // rows kept above the first match
}

// TUIConfig holds presentation settings.
type TUIConfig struct {
	Theme          string   `yaml:"theme"`
	MaxColumnWidth int      `yaml:"max_column_width"`
	HiddenColumns  []string `yaml:"hidden_columns"` // glob patterns over column names
}

// WatchConfig controls reloading the source when it changes on disk.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Loader: LoaderConfig{
			BatchSize:  100_000,
			Delimiter:  ",",
			NullValues: append([]string(nil), DefaultNullValues...),
		},
		Window: WindowConfig{Rows: 100},
		Scroll: ScrollConfig{Debounce: 50 * time.Millisecond},
		Search: SearchConfig{Lookback: 5},
		TUI: TUIConfig{
			Theme:          "tokyo-night",
			MaxColumnWidth: 24,
		},
		Watch: WatchConfig{Debounce: 250 * time.Millisecond},
	}
}

// Load reads configuration from the given path and validates it. If
// configPath is empty or doesn't exist, defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read parses the config file and fills in defaults without validating the
// result.
func Read(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Loader.BatchSize == 0 {
		c.Loader.BatchSize = defaults.Loader.BatchSize
	}
	if c.Loader.Delimiter == "" {
		c.Loader.Delimiter = defaults.Loader.Delimiter
	}
	if c.Loader.NullValues == nil {
		c.Loader.NullValues = defaults.Loader.NullValues
	}
	if c.Window.Rows == 0 {
		c.Window.Rows = defaults.Window.Rows
	}
	if c.Scroll.Debounce == 0 {
		c.Scroll.Debounce = defaults.Scroll.Debounce
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.MaxColumnWidth == 0 {
		c.TUI.MaxColumnWidth = defaults.TUI.MaxColumnWidth
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
}

// DelimiterRune returns the configured delimiter as a rune. Callers must
// validate the config first.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Loader.Delimiter)
	return r
}
