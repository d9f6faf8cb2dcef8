package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/search"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/internal/core/table"
	"github.com/colonyops/tabula/pkg/iojson"
)

type SearchCmd struct {
	flags  *Flags
	loader loaderFlags

	// flags
	column string
	format string
	limit  int
}

// NewSearchCmd creates a new search command
func NewSearchCmd(flags *Flags) *SearchCmd {
	return &SearchCmd{flags: flags}
}

// Register adds the search command to the application
func (cmd *SearchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "search",
		Usage:     "Search a file without opening the browser",
		UsageText: "tabula search [options] <file> <query>",
		Description: `Loads the whole file and prints every row containing the query
(case-insensitive substring match on the field as written).

Use --column to restrict the match to one column and --format json for
machine-readable output, which also reports the window offset the browser
would jump to.`,
		Flags: append(cmd.loader.Flags(),
			&cli.StringFlag{
				Name:        "column",
				Usage:       "only match this column (default: all columns)",
				Destination: &cmd.column,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "print at most this many matching rows (0 for all)",
				Destination: &cmd.limit,
			},
		),
		Action:        cmd.run,
		ShellComplete: SourceFileCompleter(),
	})

	return app
}

// searchOutput is the JSON output format for tabula search.
type searchOutput struct {
	Query   string       `json:"query"`
	Column  string       `json:"column"`
	Columns []string     `json:"columns"`
	Matches int          `json:"matches"`
	Scanned int          `json:"scanned"`
	Offset  int          `json:"offset"`
	Rows    []matchedRow `json:"rows"`
}

type matchedRow struct {
	Row    int      `json:"row"`
	Values []string `json:"values"`
}

func (cmd *SearchCmd) run(ctx context.Context, c *cli.Command) error {
	path, err := sourceArg(c)
	if err != nil {
		return err
	}
	query := c.Args().Get(1)
	if query == "" {
		return fmt.Errorf("missing <query> argument (usage: %s)", c.UsageText)
	}

	cfg, err := cmd.loader.apply(cmd.flags.Config)
	if err != nil {
		return err
	}

	session, err := loadHeadless(ctx, cfg, path, log.Logger)
	if err != nil {
		return err
	}
	defer session.Close()

	column, ok := session.ColumnIndex(cmd.column)
	if !ok {
		return fmt.Errorf("unknown column %q (available: %v)", cmd.column, session.Schema())
	}

	res := session.Search(query, column)

	rows := session.Store().Rows()
	shown := res.Matches
	if cmd.limit > 0 && len(shown) > cmd.limit {
		shown = shown[:cmd.limit]
	}

	out := searchOutput{
		Query:   query,
		Column:  columnLabel(session.Schema(), column),
		Columns: session.Schema(),
		Matches: res.Count(),
		Scanned: res.Scanned,
		Offset:  session.Window().Offset,
		Rows:    make([]matchedRow, 0, len(shown)),
	}
	for _, idx := range shown {
		out.Rows = append(out.Rows, matchedRow{Row: idx + 1, Values: rows[idx].Formatted()})
	}

	w := c.Root().Writer
	if cmd.format == "json" {
		return iojson.WriteWith(w, c.Root().ErrWriter, out)
	}

	return cmd.outputText(w, session.Schema(), res, out)
}

func (cmd *SearchCmd) outputText(w io.Writer, schema table.Schema, res search.Result, out searchOutput) error {
	if res.Count() == 0 {
		_, _ = fmt.Fprintln(w, paint(w, styles.MutedTextStyle, res.Status()))
		return nil
	}

	numbers := make([]int, len(out.Rows))
	cells := make([][]string, len(out.Rows))
	for i, r := range out.Rows {
		numbers[i] = r.Row
		cells[i] = r.Values
	}
	if err := writeRows(w, schema, numbers, cells); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)
	summary := fmt.Sprintf("%s in %s (%s rows scanned)", res.Status(), out.Column, humanize.Comma(int64(res.Scanned)))
	if len(out.Rows) < res.Count() {
		summary += fmt.Sprintf(", showing first %d", len(out.Rows))
	}
	_, _ = fmt.Fprintln(w, paint(w, styles.SuccessTextStyle, summary))
	return nil
}

func columnLabel(schema table.Schema, column int) string {
	if column == search.AllColumns || column < 0 || column >= schema.Len() {
		return "All Columns"
	}
	return schema[column]
}
