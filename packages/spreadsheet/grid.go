package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxColumns is the exclusive upper bound on the column count, the
	// largest column two letters can name plus one
	MaxColumns = 26*26 + 25
	// MaxRows is the exclusive upper bound on the row count
	MaxRows = 1024
)

// Grid is the owned row-major container of cells for one evaluation run
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// NewGrid creates an empty grid with fixed dimensions
func NewGrid(rows, cols int) (*Grid, error) {
	if rows < 0 || cols < 0 {
		return nil, NewApplicationError(InvalidArgument,
			fmt.Sprintf("invalid grid dimensions %dx%d", rows, cols))
	}
	if cols >= MaxColumns {
		return nil, NewApplicationError(OutOfRange,
			fmt.Sprintf("maximum number of columns reached which is %d", MaxColumns))
	}
	if rows >= MaxRows {
		return nil, NewApplicationError(OutOfRange,
			fmt.Sprintf("maximum number of rows reached which is %d", MaxRows))
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}, nil
}

func (g *Grid) Rows() int { return g.rows }

func (g *Grid) Cols() int { return g.cols }

func (g *Grid) Len() int { return len(g.cells) }

// Index converts a coordinate pair to its row-major index
func (g *Grid) Index(row, col int) int {
	return row*g.cols + col
}

// Coords converts a row-major index back to its coordinate pair
func (g *Grid) Coords(idx int) (row, col int) {
	if g.cols == 0 {
		return 0, 0
	}
	return idx / g.cols, idx % g.cols
}

// Contains reports whether the coordinates are inside the grid
func (g *Grid) Contains(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.rows && col < g.cols
}

// At returns the cell at a row-major index
func (g *Grid) At(idx int) *Cell {
	return &g.cells[idx]
}

// Cell returns the cell at the given coordinates or nil if they are
// outside the grid
func (g *Grid) Cell(row, col int) *Cell {
	if !g.Contains(row, col) {
		return nil
	}
	return &g.cells[g.Index(row, col)]
}

// Address returns the spreadsheet-style name of a cell index, e.g. "b2"
func (g *Grid) Address(idx int) string {
	row, col := g.Coords(idx)
	return FormatAddress(row, col)
}

// Copy returns a deep copy of the grid
func (g *Grid) Copy() *Grid {
	dup := &Grid{rows: g.rows, cols: g.cols, cells: make([]Cell, len(g.cells))}
	for i := range g.cells {
		dup.cells[i] = g.cells[i].Copy()
	}
	return dup
}

// ColumnName returns the letters naming a zero-based column: a..z then
// aa..zz
func ColumnName(col int) string {
	if col < 26 {
		return string(rune('a' + col))
	}
	return string([]rune{rune('a' + col/26 - 1), rune('a' + col%26)})
}

// FormatAddress returns the name of a cell. rows are shown one-based.
func FormatAddress(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row+1)
}

// scanReference reads column letters and an optional row number starting
// at pos. it returns the zero-based column, the row as written (-1 when
// absent) and the position after the reference.
func scanReference(input string, pos int) (col int, row int, next int, ok bool) {
	row = -1
	if pos >= len(input) || !isLetter(input[pos]) {
		return 0, row, pos, false
	}
	col = int(toLower(input[pos]) - 'a')
	pos++
	if pos < len(input) && isLetter(input[pos]) {
		col = (col+1)*26 + int(toLower(input[pos])-'a')
		pos++
	}

	start := pos
	for pos < len(input) && isDigit(input[pos]) {
		pos++
	}
	if pos > start {
		n, err := strconv.Atoi(input[start:pos])
		if err != nil {
			// too many digits to be a row of any grid
			n = MaxRows + 1
		}
		row = n
	}
	return col, row, pos, true
}

// rowIndex maps a written row number to a zero-based row. an absent row
// number means the first row, an explicit 0 maps to -1 which no grid
// contains.
func rowIndex(written int) int {
	if written < 0 {
		return 0
	}
	return written - 1
}

// ParseAddress parses a cell name such as "b2" or "aa10" into zero-based
// coordinates
func ParseAddress(address string) (row, col int, err error) {
	address = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(address), "@"))
	col, written, next, ok := scanReference(address, 0)
	if !ok || next != len(address) {
		return 0, 0, NewApplicationError(InvalidArgument, fmt.Sprintf("invalid address: %q", address))
	}
	return rowIndex(written), col, nil
}
