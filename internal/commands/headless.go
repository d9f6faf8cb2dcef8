package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/colonyops/tabula/internal/browse"
	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/eventbus"
	"github.com/colonyops/tabula/internal/core/logging"
	"github.com/colonyops/tabula/internal/core/table"
)

// loadHeadless reads the whole of path through a session without a UI. The
// caller must Close the returned session.
func loadHeadless(ctx context.Context, cfg *config.Config, path string, logger zerolog.Logger) (*browse.Session, error) {
	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, logging.Sub(logger, "eventbus"))

	session := browse.New(ctx, browse.OptionsFromConfig(cfg), bus, logger)
	if err := session.Load(path); err != nil {
		session.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return session, nil
}

// writeRows prints rows as an aligned table with a leading row number column.
func writeRows(w io.Writer, schema table.Schema, numbers []int, cells [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := append([]string{"ROW"}, schema...)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, row := range cells {
		fields := append([]string{strconv.Itoa(numbers[i])}, row...)
		_, _ = fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}

	return tw.Flush()
}

// paint renders s with style only when w is a terminal, so piped output stays
// free of escape sequences.
func paint(w io.Writer, style lipgloss.Style, s string) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return style.Render(s)
	}
	return s
}
