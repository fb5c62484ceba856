package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Resolver turns the token family of each cell into a value. cells must be
// resolved in increasing row-major order: a reference may only target a
// cell with a smaller index, so every legal target is already final when
// it is read.
type Resolver struct {
	grid     *Grid
	capacity int
	logger   *slog.Logger
}

// NewResolver creates a resolver over grid. capacity sizes the expression
// builder work areas.
func NewResolver(grid *Grid, capacity int, logger *slog.Logger) *Resolver {
	if capacity <= 0 {
		capacity = DefaultStackCapacity
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		grid:     grid,
		capacity: capacity,
		logger:   logger,
	}
}

// ResolveAll walks the grid once in row-major order. cells that were never
// populated stay empty and cells that failed while lexing keep their
// error.
func (r *Resolver) ResolveAll() {
	for idx := 0; idx < r.grid.Len(); idx++ {
		cell := r.grid.At(idx)
		if cell.Family.Len() == 0 || cell.Value.Kind == CellKindError {
			continue
		}
		r.Resolve(idx)
	}
}

// Resolve dispatches the cell at idx on its leading token. a failure is
// attached to the cell and never affects other cells.
func (r *Resolver) Resolve(idx int) {
	cell := r.grid.At(idx)

	var err error
	if cell.Family.Len() == 0 {
		err = NewCellError(ErrorCodeMalformed, "empty token family")
	} else {
		switch lead := cell.Family.At(0); lead.Kind {
		case TokenNumber, TokenString:
			err = r.resolveLiteral(cell)
		case TokenReference:
			err = r.resolveCopy(idx, cell)
		case TokenExpression:
			err = r.resolveExpression(idx, cell)
		case TokenClone:
			err = r.resolveClone(idx, cell)
		default:
			err = NewCellError(ErrorCodeMalformed, fmt.Sprintf("cell cannot start with %s", lead))
		}
	}

	if err == nil {
		return
	}
	var cellErr *CellError
	if !errors.As(err, &cellErr) {
		cellErr = NewCellError(ErrorCodeMalformed, err.Error())
	}
	cell.Value = ErrorValue(cellErr)
	r.logger.Debug("cell failed to resolve",
		"address", r.grid.Address(idx),
		"code", cellErr.ErrorCode.String(),
		"reason", cellErr.Message)
}

func (r *Resolver) resolveLiteral(cell *Cell) error {
	if cell.Family.Len() != 1 {
		return NewCellError(ErrorCodeMalformed, "literal followed by more tokens")
	}
	lead := cell.Family.At(0)
	if lead.Kind == TokenNumber {
		cell.Value = NumberValue(lead.Number)
	} else {
		cell.Value = TextValue(lead.Text)
	}
	return nil
}

// resolveCopy duplicates the whole target cell, error state included
func (r *Resolver) resolveCopy(idx int, cell *Cell) error {
	if cell.Family.Len() != 1 {
		return NewCellError(ErrorCodeMalformed, "reference followed by more tokens")
	}
	target := cell.Family.At(0).Ref
	if target >= idx {
		return NewCellError(ErrorCodePremature,
			fmt.Sprintf("%s is not resolved before %s", r.grid.Address(target), r.grid.Address(idx)))
	}
	*cell = r.grid.At(target).Copy()
	return nil
}

func (r *Resolver) resolveExpression(idx int, cell *Cell) error {
	infix := cell.Family.Tokens()[1:]
	expr, err := CompileExpression(infix, r.capacity, r.checkReference(idx))
	if err != nil {
		return expressionFailure(err)
	}

	n, err := Evaluate(expr.Postfix, r.capacity, r.lookup(idx))
	if err != nil {
		return expressionFailure(err)
	}

	cell.Family = expr.Postfix
	cell.Clonable = expr.RefsUsed
	cell.Value = NumberValue(n)
	return nil
}

// resolveClone duplicates the cell directly above. when that cell used
// references they are moved one row down and the expression is evaluated
// again.
func (r *Resolver) resolveClone(idx int, cell *Cell) error {
	if cell.Family.Len() != 1 {
		return NewCellError(ErrorCodeMalformed, "clone marker must be the only token")
	}
	row, _ := r.grid.Coords(idx)
	if row == 0 {
		return NewCellError(ErrorCodePremature, "no cell above to clone")
	}

	src := r.grid.At(idx - r.grid.Cols())
	dup := src.Copy()
	if !src.Clonable {
		*cell = dup
		return nil
	}

	dup.Family.Rebase(r.grid.Cols())
	n, err := Evaluate(dup.Family, r.capacity, r.lookup(idx))
	if err != nil {
		return NewCellError(ErrorCodeMalformed, fmt.Sprintf("clone re-evaluation failed: %v", err))
	}
	dup.Value = NumberValue(n)
	*cell = dup
	return nil
}

// checkReference enforces that references used in an expression target
// earlier cells holding numbers
func (r *Resolver) checkReference(idx int) ReferenceCheck {
	return func(ref int) error {
		if ref >= idx {
			return NewCellError(ErrorCodePremature,
				fmt.Sprintf("%s is not resolved before %s", r.grid.Address(ref), r.grid.Address(idx)))
		}
		if kind := r.grid.At(ref).Value.Kind; kind != CellKindNumber {
			return NewCellError(ErrorCodeMalformed,
				fmt.Sprintf("%s holds %s, not a number", r.grid.Address(ref), kind))
		}
		return nil
	}
}

func (r *Resolver) lookup(idx int) ReferenceLookup {
	check := r.checkReference(idx)
	return func(ref int) (float64, error) {
		if ref < 0 || ref >= r.grid.Len() {
			return 0, NewCellError(ErrorCodeBounds, fmt.Sprintf("reference %d is outside the grid", ref))
		}
		if err := check(ref); err != nil {
			return 0, err
		}
		return r.grid.At(ref).Value.Number, nil
	}
}

// expressionFailure collapses builder, validator and evaluator failures to
// Malformed. the one exception is a reference to the cell itself or to a
// later cell: it keeps Premature so `=@a1+1` in a1 reports the same code
// as the bare reference `@a1` does.
func expressionFailure(err error) error {
	var cellErr *CellError
	if errors.As(err, &cellErr) && cellErr.ErrorCode == ErrorCodePremature {
		return cellErr
	}
	return NewCellError(ErrorCodeMalformed, err.Error())
}
