// Package spreadsheet evaluates pipe-delimited text grids whose cells hold
// numbers, strings, references and infix arithmetic. cells are resolved in
// a single row-major pass, so a cell may only depend on cells before it.
package spreadsheet

import (
	"fmt"
	"io"
	"log/slog"
)

// AppErrorCode represents gRPC-style error codes for application-level errors.
// note that we are skipping error codes that don't make sense for our use-case,
// like unauthenticated, or permission denied.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// InvalidArgument indicates client specified an invalid argument, such
	// as an address that does not name a cell.
	InvalidArgument AppErrorCode = 3

	// FailedPrecondition indicates operation was rejected because the
	// system is not in a state required for the operation's execution.
	FailedPrecondition AppErrorCode = 9

	// OutOfRange means operation was attempted past the valid range.
	OutOfRange AppErrorCode = 11
)

// AppError represents errors at the application level (not cell errors,
// which are values stored in the grid)
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Option configures a Sheet
type Option func(*Sheet)

// WithLogger sets the logger used for per-cell diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sheet) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStackCapacity sets the capacity of each expression work area
func WithStackCapacity(n int) Option {
	return func(s *Sheet) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// Sheet combines lexing, resolution and lookup of one grid into a single
// API. the lifecycle of a grid is bounded to one evaluation run.
type Sheet struct {
	source     string
	loaded     bool
	calculated bool
	grid       *Grid
	capacity   int
	logger     *slog.Logger
}

// New creates an empty sheet
func New(opts ...Option) *Sheet {
	s := &Sheet{
		capacity: DefaultStackCapacity,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SheetInterface is the public surface of Sheet
type SheetInterface interface {
	Load(src string) error
	Calculate() error
	Get(address string) (Value, error)
	Grid() *Grid
	Stats() Stats
}

var _ SheetInterface = (*Sheet)(nil)

// Load tokenizes src into a fresh grid
func (s *Sheet) Load(src string) error {
	grid, err := Lex(src)
	if err != nil {
		return err
	}
	s.source = src
	s.grid = grid
	s.loaded = true
	s.calculated = false
	s.logger.Debug("sheet loaded", "rows", grid.Rows(), "cols", grid.Cols())
	return nil
}

// Calculate resolves every cell once in row-major order. calculating again
// starts over from the loaded source so results are always identical.
func (s *Sheet) Calculate() error {
	if !s.loaded {
		return NewApplicationError(FailedPrecondition, "no sheet loaded")
	}
	if s.calculated {
		if err := s.Load(s.source); err != nil {
			return err
		}
	}

	NewResolver(s.grid, s.capacity, s.logger).ResolveAll()
	s.calculated = true

	stats := s.Stats()
	s.logger.Info("sheet calculated",
		"rows", s.grid.Rows(),
		"cols", s.grid.Cols(),
		"numbers", stats.Numbers,
		"texts", stats.Texts,
		"errors", stats.Errors)
	return nil
}

// Get returns the value of the cell named by address, e.g. "b2"
func (s *Sheet) Get(address string) (Value, error) {
	if !s.loaded {
		return Value{}, NewApplicationError(FailedPrecondition, "no sheet loaded")
	}
	row, col, err := ParseAddress(address)
	if err != nil {
		return Value{}, err
	}
	cell := s.grid.Cell(row, col)
	if cell == nil {
		return Value{}, NewApplicationError(OutOfRange,
			fmt.Sprintf("%s is outside the %dx%d grid", address, s.grid.Rows(), s.grid.Cols()))
	}
	return cell.Value, nil
}

// Grid returns the loaded grid, nil before Load
func (s *Sheet) Grid() *Grid {
	return s.grid
}

// Stats counts cells per resolved kind
type Stats struct {
	Empty   int
	Numbers int
	Texts   int
	Errors  int
	ByCode  map[ErrorCode]int
}

// Stats summarizes the grid
func (s *Sheet) Stats() Stats {
	stats := Stats{ByCode: make(map[ErrorCode]int)}
	if s.grid == nil {
		return stats
	}
	for idx := 0; idx < s.grid.Len(); idx++ {
		v := s.grid.At(idx).Value
		switch v.Kind {
		case CellKindNumber:
			stats.Numbers++
		case CellKindText:
			stats.Texts++
		case CellKindError:
			stats.Errors++
			stats.ByCode[v.Code()]++
		default:
			stats.Empty++
		}
	}
	return stats
}
