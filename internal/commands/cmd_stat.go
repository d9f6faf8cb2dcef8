package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/internal/core/table"
	"github.com/colonyops/tabula/pkg/iojson"
)

type StatCmd struct {
	flags  *Flags
	loader loaderFlags

	// flags
	format string
}

// NewStatCmd creates a new stat command
func NewStatCmd(flags *Flags) *StatCmd {
	return &StatCmd{flags: flags}
}

// Register adds the stat command to the application
func (cmd *StatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stat",
		Usage:     "Summarize a file's columns and rows",
		UsageText: "tabula stat [options] <file>",
		Description: `Loads the whole file and prints the column schema with the inferred kind
of each column, the number of rows, and how long the load took.`,
		Flags: append(cmd.loader.Flags(),
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		),
		Action:        cmd.run,
		ShellComplete: SourceFileCompleter(),
	})

	return app
}

// statOutput is the JSON output format for tabula stat.
type statOutput struct {
	Path        string        `json:"path"`
	Size        int64         `json:"size"`
	Compression string        `json:"compression,omitempty"`
	Rows        int           `json:"rows"`
	Total       int           `json:"total"`
	ElapsedMS   int64         `json:"elapsed_ms"`
	Columns     []columnStats `json:"columns"`

	elapsed time.Duration
}

type columnStats struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Numbers int    `json:"numbers"`
	Text    int    `json:"text"`
	Missing int    `json:"missing"`
}

func (cmd *StatCmd) run(ctx context.Context, c *cli.Command) error {
	path, err := sourceArg(c)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
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

	_, loaded, total := session.Progress()
	elapsed := session.Elapsed()

	out := statOutput{
		Path:        path,
		Size:        info.Size(),
		Compression: string(loader.CompressionFor(path)),
		Rows:        loaded,
		Total:       total,
		ElapsedMS:   elapsed.Milliseconds(),
		Columns:     summarizeColumns(session.Schema(), session.Store().Rows()),
		elapsed:     elapsed,
	}

	w := c.Root().Writer
	if cmd.format == "json" {
		return iojson.WriteWith(w, c.Root().ErrWriter, out)
	}

	return cmd.outputText(w, out)
}

// summarizeColumns counts value kinds per column. A column is numeric when
// every present value is a number.
func summarizeColumns(schema table.Schema, rows []table.Row) []columnStats {
	stats := make([]columnStats, schema.Len())
	for i, name := range schema {
		stats[i].Name = name
	}

	for _, row := range rows {
		for i, v := range row {
			if i >= len(stats) {
				break
			}
			switch v.Kind {
			case table.KindNumber:
				stats[i].Numbers++
			case table.KindText:
				stats[i].Text++
			default:
				stats[i].Missing++
			}
		}
	}

	for i := range stats {
		switch {
		case stats[i].Numbers == 0 && stats[i].Text == 0:
			stats[i].Kind = "empty"
		case stats[i].Text == 0:
			stats[i].Kind = table.KindNumber.String()
		default:
			stats[i].Kind = table.KindText.String()
		}
	}

	return stats
}

func (cmd *StatCmd) outputText(w io.Writer, out statOutput) error {
	size := humanize.Bytes(uint64(max(out.Size, 0)))
	if out.Compression != "" {
		size += " (" + out.Compression + ")"
	}

	_, _ = fmt.Fprintln(w, paint(w, styles.CommandHeaderStyle, out.Path))
	_, _ = fmt.Fprintf(w, "size:    %s\n", size)
	_, _ = fmt.Fprintf(w, "rows:    %s\n", humanize.Comma(int64(out.Rows)))
	_, _ = fmt.Fprintf(w, "columns: %d\n", len(out.Columns))
	_, _ = fmt.Fprintf(w, "loaded:  %s\n", out.elapsed.Round(time.Millisecond))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "COLUMN\tKIND\tNUMBERS\tTEXT\tMISSING")
	for _, col := range out.Columns {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			col.Name,
			col.Kind,
			humanize.Comma(int64(col.Numbers)),
			humanize.Comma(int64(col.Text)),
			humanize.Comma(int64(col.Missing)),
		)
	}
	return tw.Flush()
}
