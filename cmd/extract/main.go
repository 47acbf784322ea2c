// Command extract runs the text extractor and the invoice normalizer on a local PDF.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"facturas/internal/app"
	"facturas/internal/config"
	"facturas/internal/domain"
	"facturas/internal/logger"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "extract",
		Usage:     "extract text and invoice data from a PDF",
		Writer:    stdout,
		ErrWriter: stderr,
		// main owns printing and the exit code
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log to stderr"},
		},
		Commands: []*cli.Command{
			{
				Name:      "text",
				Usage:     "print the plain text of a PDF",
				ArgsUsage: "<file.pdf>",
				Action: func(c *cli.Context) error {
					components, data, err := load(c, stderr)
					if err != nil {
						return err
					}
					extracted, err := components.Invoices.ExtractText(c.Context, data)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, extracted.Text)
					return err
				},
			},
			{
				Name:      "invoice",
				Usage:     "print the normalized invoice of a PDF as JSON",
				ArgsUsage: "<file.pdf>",
				Action: func(c *cli.Context) error {
					components, data, err := load(c, stderr)
					if err != nil {
						return err
					}
					result, err := components.Invoices.ProcessPDF(c.Context, data)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(result.Invoice)
				},
			},
		},
	}
}

func load(c *cli.Context, stderr io.Writer) (*app.Components, []byte, error) {
	if c.NArg() != 1 {
		return nil, nil, cli.Exit("expected exactly one PDF path", 2)
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", c.Args().First(), err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := zerolog.Nop()
	if c.Bool("verbose") {
		log = logger.NewWithWriter(zerolog.ConsoleWriter{Out: stderr}, cfg.Log.Level)
	}
	components, err := app.Build(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return components, data, nil
}

// exitCode maps classified failures to distinct process exit codes.
func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	switch {
	case errors.Is(err, domain.ErrEmptyInput), errors.Is(err, domain.ErrInvalidPDF), errors.Is(err, domain.ErrNoTextExtracted):
		return 3
	case errors.Is(err, domain.ErrMalformedModelOutput):
		return 4
	case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrServiceUnavailable):
		return 5
	default:
		return 1
	}
}
