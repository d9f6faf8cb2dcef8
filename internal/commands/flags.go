package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/config"
)

type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	ProfilerPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tabula", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/tabula/tabula.log
// On Linux: $XDG_STATE_HOME/tabula/tabula.log (defaults to ~/.local/state/tabula/tabula.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "tabula", "tabula.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "tabula", "tabula.log")
	}

	return filepath.Join(home, ".local", "state", "tabula", "tabula.log")
}

// loaderFlags are the reader overrides shared by every command that loads a
// source. Unset flags leave the config value alone.
type loaderFlags struct {
	batchSize int
	delimiter string
	window    int
}

func (lf *loaderFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "batch-size",
			Usage:       "rows per loader batch (overrides loader.batch_size)",
			Sources:     cli.EnvVars("TABULA_BATCH_SIZE"),
			Destination: &lf.batchSize,
		},
		&cli.StringFlag{
			Name:        "delimiter",
			Aliases:     []string{"d"},
			Usage:       "field delimiter (overrides loader.delimiter)",
			Destination: &lf.delimiter,
		},
		&cli.IntFlag{
			Name:        "window",
			Usage:       "rows held in the visible window (overrides window.rows)",
			Sources:     cli.EnvVars("TABULA_WINDOW"),
			Destination: &lf.window,
		},
	}
}

// apply returns a copy of cfg with the flag overrides applied and validated.
func (lf *loaderFlags) apply(cfg *config.Config) (*config.Config, error) {
	out := config.DefaultConfig()
	if cfg != nil {
		out = *cfg
	}

	if lf.batchSize != 0 {
		out.Loader.BatchSize = lf.batchSize
	}
	if lf.delimiter != "" {
		out.Loader.Delimiter = unescapeDelimiter(lf.delimiter)
	}
	if lf.window != 0 {
		out.Window.Rows = lf.window
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return &out, nil
}

// unescapeDelimiter lets users type a tab delimiter without shell quoting.
func unescapeDelimiter(d string) string {
	if d == `\t` || d == "tab" {
		return "\t"
	}
	return d
}

// sourceArg returns the first positional argument or a usage error.
func sourceArg(c *cli.Command) (string, error) {
	path := c.Args().First()
	if path == "" {
		return "", fmt.Errorf("missing <file> argument (usage: %s)", c.UsageText)
	}
	return path, nil
}
