package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/vogtb/go-spreadsheet/internal/ctxlog"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Results go to outW,
// logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
}

// Run loads the sheet file, evaluates every cell once and writes the
// rendered grid.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "sheet", a.config.SheetPath)

	src, err := a.readSheet(ctx)
	if err != nil {
		return err
	}

	sheet := spreadsheet.New(spreadsheet.WithLogger(a.logger.With("sheet", a.config.SheetPath)))
	if err := sheet.Load(src); err != nil {
		return fmt.Errorf("failed to load sheet %s: %w", a.config.SheetPath, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sheet.Calculate(); err != nil {
		return fmt.Errorf("failed to calculate sheet %s: %w", a.config.SheetPath, err)
	}

	stats := sheet.Stats()
	codes := make([]spreadsheet.ErrorCode, 0, len(stats.ByCode))
	for code := range stats.ByCode {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		a.logger.Warn("Cells failed to resolve.", "code", code.String(), "count", stats.ByCode[code])
	}

	if err := a.render(sheet.Grid()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) readSheet(ctx context.Context) (string, error) {
	logger := ctxlog.FromContext(ctx)

	raw, err := os.ReadFile(a.config.SheetPath)
	if err != nil {
		return "", fmt.Errorf("failed to read sheet: %w", err)
	}
	src, err := decode(raw, a.config.Encoding)
	if err != nil {
		return "", err
	}
	logger.Debug("Sheet file read.", "bytes", len(raw), "encoding", a.config.Encoding)
	return src, nil
}

func (a *App) render(grid *spreadsheet.Grid) error {
	switch a.config.Format {
	case FormatYAML:
		return spreadsheet.RenderYAML(a.outW, grid, a.config.DecimalPlaces)
	default:
		return spreadsheet.RenderTable(a.outW, grid, a.config.DecimalPlaces)
	}
}
