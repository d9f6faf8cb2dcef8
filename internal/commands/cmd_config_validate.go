package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tabula config validate [options]",
				Description: "Validates the configuration file, checking value ranges, the delimiter, the theme, and hidden column patterns.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationOutput struct {
	Path     string                     `json:"path"`
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	out := validationOutput{
		Path:     cmd.flags.ConfigPath,
		Errors:   fieldErrors(cfg.ValidateDeep(cmd.flags.ConfigPath)),
		Warnings: cfg.Warnings(),
	}
	out.Valid = len(out.Errors) == 0

	w := c.Root().Writer
	if cmd.format == "json" {
		if err := iojson.WriteWith(w, c.Root().ErrWriter, out); err != nil {
			return err
		}
	} else {
		cmd.outputText(w, out)
	}

	if !out.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

// fieldErrors flattens a criterio error into one entry per field.
func fieldErrors(err error) []validationError {
	if err == nil {
		return nil
	}

	var fe criterio.FieldErrors
	if !errors.As(err, &fe) {
		return []validationError{{Message: err.Error()}}
	}

	out := make([]validationError, 0, len(fe))
	for _, e := range fe {
		out = append(out, validationError{Field: e.Field, Message: e.Err.Error()})
	}
	slices.SortStableFunc(out, func(a, b validationError) int { return strings.Compare(a.Field, b.Field) })
	return out
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, out validationOutput) {
	for _, warn := range out.Warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", paint(w, styles.MutedTextStyle, styles.IconWarning), warn.Field, warn.Message)
	}

	for _, e := range out.Errors {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", paint(w, styles.ErrorTextStyle, styles.IconError), e.Field, e.Message)
	}

	_, _ = fmt.Fprintln(w)
	if out.Valid {
		_, _ = fmt.Fprintln(w, paint(w, styles.SuccessTextStyle, styles.IconCheck+" Configuration is valid"))
		return
	}
	_, _ = fmt.Fprintln(w, paint(w, styles.ErrorTextStyle, fmt.Sprintf("%d error(s) found", len(out.Errors))))
}
