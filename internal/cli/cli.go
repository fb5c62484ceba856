package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vogtb/go-spreadsheet/internal/app"
	"github.com/vogtb/go-spreadsheet/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Values from the settings file apply to every flag not given explicitly.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("ursheet", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
ursheet - evaluate a pipe-delimited text spreadsheet in a single pass.

Usage:
  ursheet [options] -s SHEET
  ursheet [options] SHEET

Arguments:
  SHEET
    Path to the sheet file. Rows end with a newline, cells end with '|'.

Options:
`)
		flagSet.PrintDefaults()
	}

	sheetFlag := flagSet.String("s", "", "Path to the sheet file.")
	dpFlag := flagSet.Int("d", 1, "Number of decimal places numbers are printed with.")
	configFlag := flagSet.String("config", "", "Path to an HCL settings file.")
	formatFlag := flagSet.String("format", app.FormatTable, "Output format. Options: 'table' or 'yaml'.")
	encodingFlag := flagSet.String("encoding", app.EncodingUTF8, "Encoding of the sheet file. Options: 'utf-8', 'latin1', 'windows-1252'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *sheetFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		slog.Debug("No sheet path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "no sheet provided: use -s SHEET or pass it as an argument"}
	}

	cfg := app.Config{
		SheetPath:     path,
		DecimalPlaces: *dpFlag,
		Format:        *formatFlag,
		Encoding:      *encodingFlag,
		LogFormat:     *logFormatFlag,
		LogLevel:      *logLevelFlag,
	}

	if *configFlag != "" {
		settings, err := config.Load(context.Background(), *configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		explicit := make(map[string]bool)
		flagSet.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		applySettings(&cfg, settings, explicit)
		slog.Debug("Settings file merged.", "path", *configFlag)
	}

	cfg.Format = strings.ToLower(cfg.Format)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", appConfig)
	return appConfig, false, nil
}

// applySettings copies every value the settings file sets onto cfg unless
// the matching flag was given on the command line
func applySettings(cfg *app.Config, settings *config.Settings, explicit map[string]bool) {
	if settings.DecimalPlaces != nil && !explicit["d"] {
		cfg.DecimalPlaces = *settings.DecimalPlaces
	}
	if settings.Format != nil && !explicit["format"] {
		cfg.Format = *settings.Format
	}
	if settings.Encoding != nil && !explicit["encoding"] {
		cfg.Encoding = *settings.Encoding
	}
	if settings.LogFormat != nil && !explicit["log-format"] {
		cfg.LogFormat = *settings.LogFormat
	}
	if settings.LogLevel != nil && !explicit["log-level"] {
		cfg.LogLevel = *settings.LogLevel
	}
}
