package spreadsheet

import (
	"errors"
	"fmt"
	"strconv"
)

// character classification constants. slightly easier to read.
const (
	charTab      = '\t'
	charNewline  = '\n'
	charReturn   = '\r'
	charSpace    = ' '
	charQuote    = '"'
	charAt       = '@'
	charPipe     = '|'
	charLParen   = '('
	charRParen   = ')'
	charAsterisk = '*'
	charPlus     = '+'
	charMinus    = '-'
	charPeriod   = '.'
	charSlash    = '/'
	charEqual    = '='
	charCaret    = '^'
)

// markers maps single characters to the marker token they produce
var markers = map[byte]TokenKind{
	charPlus:     TokenAdd,
	charMinus:    TokenSubtract,
	charAsterisk: TokenMultiply,
	charSlash:    TokenDivide,
	charLParen:   TokenLeftParen,
	charRParen:   TokenRightParen,
	charEqual:    TokenExpression,
	charCaret:    TokenClone,
}

// Dimensions measures the grid described by src. rows are newline
// terminated, a trailing unterminated line counts when it holds anything.
// columns are the largest number of cell terminators on a line.
func Dimensions(src string) (rows, cols int) {
	line := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case charPipe:
			line++
		case charNewline:
			rows++
			cols = max(cols, line)
			line = 0
		}
	}
	cols = max(cols, line)
	if len(src) > 0 && src[len(src)-1] != charNewline {
		rows++
	}
	return rows, cols
}

// Lexer tokenizes sheet source into the token families of a grid. a cell is
// only committed to the grid when its terminator is reached.
type Lexer struct {
	input   string
	pos     int
	grid    *Grid
	row     int
	col     int
	current Cell
}

// NewLexer creates a lexer writing into grid
func NewLexer(input string, grid *Grid) *Lexer {
	return &Lexer{
		input: input,
		grid:  grid,
	}
}

// Lex measures src, allocates a grid of matching size and fills the token
// families of its cells
func Lex(src string) (*Grid, error) {
	rows, cols := Dimensions(src)
	grid, err := NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	NewLexer(src, grid).Tokenize()
	return grid, nil
}

// Tokenize consumes the whole input
func (l *Lexer) Tokenize() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		switch {
		case ch == charSpace || ch == charTab || ch == charReturn:
			l.pos++

		case ch == charPipe:
			l.commit()
			l.pos++

		case ch == charNewline:
			// content after the last terminator of a line never forms a cell
			l.current = Cell{}
			l.row++
			l.col = 0
			l.pos++

		case ch == charQuote:
			l.lexString()

		case ch == charAt:
			l.lexReference()

		case ch == charMinus && l.startsNegativeNumber():
			l.lexNumber()

		case isDigit(ch):
			l.lexNumber()

		default:
			if kind, ok := markers[ch]; ok {
				l.push(Token{Kind: kind, Pos: l.pos})
			} else {
				l.current.fail(NewCellError(ErrorCodeUnknown, fmt.Sprintf("unknown character %q at %d", ch, l.pos)))
			}
			l.pos++
		}
	}
}

func (l *Lexer) commit() {
	if cell := l.grid.Cell(l.row, l.col); cell != nil {
		*cell = l.current
	}
	l.current = Cell{}
	l.col++
}

func (l *Lexer) push(t Token) {
	if err := l.current.Family.Push(t); err != nil {
		var cellErr *CellError
		if errors.As(err, &cellErr) {
			l.current.fail(cellErr)
		}
	}
}

// startsNegativeNumber reports whether the minus at the current position
// is the sign of a literal rather than the subtraction operator
func (l *Lexer) startsNegativeNumber() bool {
	if l.pos+1 >= len(l.input) || !isDigit(l.input[l.pos+1]) {
		return false
	}
	last, ok := l.current.Family.Last()
	if !ok {
		return true
	}
	switch last.Kind {
	case TokenNumber, TokenReference, TokenString, TokenRightParen:
		return false
	}
	return true
}

func (l *Lexer) lexNumber() {
	start := l.pos
	if l.input[l.pos] == charMinus {
		l.pos++
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == charPeriod {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	// out of range literals saturate to ±Inf, which ParseFloat returns
	// together with ErrRange
	n, _ := strconv.ParseFloat(l.input[start:l.pos], 64)
	l.push(Token{Kind: TokenNumber, Number: n, Pos: start})
}

func (l *Lexer) lexString() {
	start := l.pos
	for end := start + 1; end < len(l.input) && l.input[end] != charNewline; end++ {
		if l.input[end] == charQuote {
			l.push(Token{Kind: TokenString, Text: l.input[start+1 : end], Pos: start})
			l.pos = end + 1
			return
		}
	}
	l.current.fail(NewCellError(ErrorCodeUnknown, fmt.Sprintf("unterminated string at %d", start)))
	l.pos++
}

func (l *Lexer) lexReference() {
	start := l.pos
	col, written, next, ok := scanReference(l.input, l.pos+1)
	l.pos = next
	if !ok {
		l.current.fail(NewCellError(ErrorCodeUnknown, fmt.Sprintf("reference without column at %d", start)))
		l.pos = start + 1
		return
	}

	row := rowIndex(written)
	if !l.grid.Contains(row, col) {
		l.current.fail(NewCellError(ErrorCodeBounds,
			fmt.Sprintf("reference %s is outside the %dx%d grid", l.input[start:next], l.grid.Rows(), l.grid.Cols())))
		return
	}
	l.push(Token{Kind: TokenReference, Ref: l.grid.Index(row, col), Pos: start})
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func toLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
