package spreadsheet

import (
	"math"
	"strconv"
)

// ErrorCode represents the cell error taxonomy. the zero value means the
// cell carries no error.
type ErrorCode uint8

const (
	ErrorCodeNone      ErrorCode = 0
	ErrorCodeOverflow  ErrorCode = 1 // !overflow - token family or work area capacity exceeded
	ErrorCodeUnknown   ErrorCode = 2 // !unknown - unrecognized character in the cell source
	ErrorCodeMalformed ErrorCode = 3 // !malformed - arity, parenthesis or leading token problems
	ErrorCodeBounds    ErrorCode = 4 // !bounds - reference outside the grid
	ErrorCodePremature ErrorCode = 5 // !premature - reference to a cell not yet resolved
)

// ErrorMapper maps error codes to the short strings rendered in place of
// the cell value
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeOverflow:  "!overflow",
	ErrorCodeUnknown:   "!unknown",
	ErrorCodeMalformed: "!malformed",
	ErrorCodeBounds:    "!bounds",
	ErrorCodePremature: "!premature",
}

func (c ErrorCode) String() string {
	if s, ok := ErrorMapper[c]; ok {
		return s
	}
	return ""
}

// CellError is a failure attached to a single cell. it never aborts the
// rest of the grid.
type CellError struct {
	ErrorCode ErrorCode
	Message   string
}

func (e *CellError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrorMapper[e.ErrorCode]
}

func NewCellError(code ErrorCode, message string) *CellError {
	if message == "" {
		message = ErrorMapper[code]
	}
	return &CellError{
		ErrorCode: code,
		Message:   message,
	}
}

// CellKind tags the resolved value of a cell
type CellKind uint8

const (
	CellKindEmpty  CellKind = 0
	CellKindError  CellKind = 1
	CellKindNumber CellKind = 2
	CellKindText   CellKind = 3
)

func (k CellKind) String() string {
	switch k {
	case CellKindError:
		return "error"
	case CellKindNumber:
		return "number"
	case CellKindText:
		return "text"
	default:
		return "empty"
	}
}

// Value is the resolved value of a cell. only the field matching Kind is
// meaningful.
type Value struct {
	Kind   CellKind
	Number float64
	Text   string
	Error  *CellError
}

func NumberValue(n float64) Value {
	return Value{Kind: CellKindNumber, Number: n}
}

func TextValue(s string) Value {
	return Value{Kind: CellKindText, Text: s}
}

func ErrorValue(err *CellError) Value {
	return Value{Kind: CellKindError, Error: err}
}

// Code returns the error code of an error value, ErrorCodeNone otherwise
func (v Value) Code() ErrorCode {
	if v.Kind != CellKindError || v.Error == nil {
		return ErrorCodeNone
	}
	return v.Error.ErrorCode
}

// Format returns the display string of the value using dp decimal places
// for numbers
func (v Value) Format(dp int) string {
	switch v.Kind {
	case CellKindNumber:
		if math.IsInf(v.Number, 0) || math.IsNaN(v.Number) {
			return strconv.FormatFloat(v.Number, 'f', -1, 64)
		}
		return strconv.FormatFloat(v.Number, 'f', dp, 64)
	case CellKindText:
		return v.Text
	case CellKindError:
		return v.Code().String()
	default:
		return ""
	}
}

// Cell holds the token family of one grid position together with its
// resolved value
type Cell struct {
	Family   Family // source tokens, replaced by the postfix form once an expression validates
	Value    Value
	Clonable bool // set when the validated expression used at least one reference
}

// fail attaches an error to the cell. the first error wins.
func (c *Cell) fail(err *CellError) {
	if c.Value.Kind == CellKindError {
		return
	}
	c.Value = ErrorValue(err)
}

// Copy returns a duplicate of the cell that shares no token storage with
// the original
func (c *Cell) Copy() Cell {
	dup := *c
	dup.Family = c.Family.Clone()
	if c.Value.Error != nil {
		e := *c.Value.Error
		dup.Value.Error = &e
	}
	return dup
}
