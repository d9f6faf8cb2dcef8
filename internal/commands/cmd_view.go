package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tabula/internal/browse"
	"github.com/colonyops/tabula/internal/core/eventbus"
	"github.com/colonyops/tabula/internal/core/logging"
	"github.com/colonyops/tabula/internal/tui"
	"github.com/colonyops/tabula/pkg/profiler"
)

var ErrNotTerminal = errors.New("tabula needs an interactive terminal; use 'tabula search' or 'tabula stat' for headless use")

type ViewCmd struct {
	flags  *Flags
	loader loaderFlags
	watch  bool
}

// NewViewCmd creates a new view command
func NewViewCmd(flags *Flags) *ViewCmd {
	return &ViewCmd{flags: flags}
}

// Flags returns the view flags for registration on the root command
func (cmd *ViewCmd) Flags() []cli.Flag {
	return append(cmd.loader.Flags(),
		&cli.BoolFlag{
			Name:        "watch",
			Aliases:     []string{"w"},
			Usage:       "reload the file when it changes on disk",
			Sources:     cli.EnvVars("TABULA_WATCH"),
			Destination: &cmd.watch,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("TABULA_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	)
}

// Register adds the view command to the application
func (cmd *ViewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "view",
		Usage:     "Browse a delimited file interactively",
		UsageText: "tabula view [options] <file>",
		Description: `Opens the file in the table browser. Rows appear as soon as the first batch
is parsed; the rest of the file keeps loading in the background.

Compressed sources (.gz, .bz2, .zst, .xz) are decompressed on the fly.
Running 'tabula <file>' is the same as 'tabula view <file>'.`,
		Flags:         cmd.Flags(),
		Action:        cmd.run,
		ShellComplete: SourceFileCompleter(),
	})

	return app
}

// Run executes the browser. Exported for use as default command.
func (cmd *ViewCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ViewCmd) run(ctx context.Context, c *cli.Command) error {
	path, err := sourceArg(c)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	cfg, err := cmd.loader.apply(cmd.flags.Config)
	if err != nil {
		return err
	}

	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort, logging.Component("profiler"))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
	eventbus.NewStatusRouter(bus).Register()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := browse.New(ctx, browse.OptionsFromConfig(cfg), bus, log.Logger)
	defer session.Close()

	var watcher *browse.SourceWatcher
	if cmd.watch || cfg.Watch.Enabled {
		watcher = browse.NewSourceWatcher(path, cfg.Watch.Debounce, log.Logger)
		if watcher != nil {
			defer func() { _ = watcher.Close() }()
		}
	}

	m := tui.New(tui.Options{
		Path:    path,
		Config:  cfg,
		Session: session,
		Bus:     bus,
		Watcher: watcher,
		Logger:  log.Logger,
	})

	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
