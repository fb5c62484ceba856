package spreadsheet

import (
	"fmt"
	"strings"
)

// FamilySize is the maximum number of tokens a single cell may hold
const FamilySize = 64

// TokenKind represents the different kinds of tokens found in a cell
type TokenKind uint8

const (
	TokenInvalid TokenKind = iota
	TokenNumber
	TokenString
	TokenReference
	TokenAdd
	TokenSubtract
	TokenMultiply
	TokenDivide
	TokenLeftParen
	TokenRightParen
	TokenExpression
	TokenClone
)

// Token is a tagged value. Number is set for TokenNumber, Text for
// TokenString and Ref (row-major index of the target cell) for
// TokenReference.
type Token struct {
	Kind   TokenKind
	Number float64
	Text   string
	Ref    int
	Pos    int // byte position in the source
}

func NumberToken(n float64) Token {
	return Token{Kind: TokenNumber, Number: n}
}

func StringToken(s string) Token {
	return Token{Kind: TokenString, Text: s}
}

func ReferenceToken(ref int) Token {
	return Token{Kind: TokenReference, Ref: ref}
}

func MarkerToken(kind TokenKind) Token {
	return Token{Kind: kind}
}

// IsOperand reports whether the token pushes a value during evaluation
func (t Token) IsOperand() bool {
	return t.Kind == TokenNumber || t.Kind == TokenReference
}

// IsOperator reports whether the token is one of the four binary operators
func (t Token) IsOperator() bool {
	switch t.Kind {
	case TokenAdd, TokenSubtract, TokenMultiply, TokenDivide:
		return true
	}
	return false
}

// precedence returns the binding tier of an operator. parentheses sit
// below every operator so they are never popped by one.
func (t Token) precedence() int {
	switch t.Kind {
	case TokenAdd, TokenSubtract:
		return 1
	case TokenMultiply, TokenDivide:
		return 2
	}
	return 0
}

func (t Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return fmt.Sprintf("%g", t.Number)
	case TokenString:
		return fmt.Sprintf("%q", t.Text)
	case TokenReference:
		return fmt.Sprintf("REF(%d)", t.Ref)
	case TokenAdd:
		return "+"
	case TokenSubtract:
		return "-"
	case TokenMultiply:
		return "*"
	case TokenDivide:
		return "/"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	case TokenExpression:
		return "="
	case TokenClone:
		return "^"
	}
	return "?"
}

// Family is the ordered, bounded sequence of tokens belonging to one cell
type Family struct {
	tokens []Token
}

// NewFamily builds a family from the given tokens, failing with Overflow
// when there are more than FamilySize of them
func NewFamily(tokens ...Token) (Family, error) {
	var f Family
	for _, t := range tokens {
		if err := f.Push(t); err != nil {
			return Family{}, err
		}
	}
	return f, nil
}

// Push appends a token to the family
func (f *Family) Push(t Token) error {
	if len(f.tokens) == FamilySize {
		return NewCellError(ErrorCodeOverflow, fmt.Sprintf("cell holds more than %d tokens", FamilySize))
	}
	f.tokens = append(f.tokens, t)
	return nil
}

func (f Family) Len() int {
	return len(f.tokens)
}

func (f Family) At(i int) Token {
	return f.tokens[i]
}

// Last returns the most recently pushed token
func (f Family) Last() (Token, bool) {
	if len(f.tokens) == 0 {
		return Token{}, false
	}
	return f.tokens[len(f.tokens)-1], true
}

// Tokens returns a copy of the family's tokens
func (f Family) Tokens() []Token {
	out := make([]Token, len(f.tokens))
	copy(out, f.tokens)
	return out
}

// Clone returns a family with its own token storage
func (f Family) Clone() Family {
	if f.tokens == nil {
		return Family{}
	}
	return Family{tokens: f.Tokens()}
}

// Rebase shifts every reference token by delta cells
func (f *Family) Rebase(delta int) {
	for i := range f.tokens {
		if f.tokens[i].Kind == TokenReference {
			f.tokens[i].Ref += delta
		}
	}
}

// HasReferences reports whether any token of the family is a reference
func (f Family) HasReferences() bool {
	for _, t := range f.tokens {
		if t.Kind == TokenReference {
			return true
		}
	}
	return false
}

func (f Family) String() string {
	parts := make([]string, len(f.tokens))
	for i, t := range f.tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
