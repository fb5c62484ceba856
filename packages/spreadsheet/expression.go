package spreadsheet

import (
	"fmt"
)

// DefaultStackCapacity is the number of entries each work area of the
// expression builder can hold
const DefaultStackCapacity = FamilySize / 2

// tokenStack is a bounded LIFO of tokens
type tokenStack struct {
	items []Token
	limit int
	name  string
}

func newTokenStack(name string, limit int) *tokenStack {
	return &tokenStack{
		items: make([]Token, 0, limit),
		limit: limit,
		name:  name,
	}
}

func (s *tokenStack) push(t Token) error {
	if len(s.items) == s.limit {
		return NewCellError(ErrorCodeOverflow, fmt.Sprintf("%s area exceeds %d entries", s.name, s.limit))
	}
	s.items = append(s.items, t)
	return nil
}

func (s *tokenStack) pop() (Token, bool) {
	if len(s.items) == 0 {
		return Token{}, false
	}
	t := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return t, true
}

func (s *tokenStack) peek() (Token, bool) {
	if len(s.items) == 0 {
		return Token{}, false
	}
	return s.items[len(s.items)-1], true
}

func (s *tokenStack) len() int {
	return len(s.items)
}

// ReferenceCheck decides whether a reference token may be used inside an
// expression. a nil check accepts every reference.
type ReferenceCheck func(ref int) error

// ExpressionBuilder converts an infix token sequence into postfix form. the
// operand area collects the output, the pending area holds operators and
// left parentheses waiting for their right operand.
type ExpressionBuilder struct {
	operands *tokenStack
	pending  *tokenStack
	check    ReferenceCheck
	opds     int
	opts     int
	refsUsed bool
}

// NewExpressionBuilder creates a builder whose two work areas hold at most
// capacity entries each
func NewExpressionBuilder(capacity int, check ReferenceCheck) *ExpressionBuilder {
	if capacity <= 0 {
		capacity = DefaultStackCapacity
	}
	return &ExpressionBuilder{
		operands: newTokenStack("operand", capacity),
		pending:  newTokenStack("operator", capacity),
		check:    check,
	}
}

// Push feeds one infix token to the builder
func (b *ExpressionBuilder) Push(t Token) error {
	switch t.Kind {
	case TokenLeftParen:
		return b.pending.push(t)

	case TokenRightParen:
		return b.closeParen()

	case TokenAdd, TokenSubtract, TokenMultiply, TokenDivide:
		for {
			top, ok := b.pending.peek()
			if !ok || !mustExchange(top, t) {
				break
			}
			b.pending.pop()
			if err := b.emit(top); err != nil {
				return err
			}
		}
		return b.pending.push(t)

	case TokenReference:
		if b.check != nil {
			if err := b.check(t.Ref); err != nil {
				return err
			}
		}
		b.refsUsed = true
		return b.emit(t)

	case TokenNumber:
		return b.emit(t)

	default:
		return NewCellError(ErrorCodeMalformed, fmt.Sprintf("unexpected token %s in expression", t))
	}
}

// mustExchange reports whether the pending operator top has to move to the
// operand area before incoming is pushed. equal tiers are exchanged to keep
// left associativity, a pending * or / always leaves before + or -.
func mustExchange(top, incoming Token) bool {
	if !top.IsOperator() {
		return false
	}
	return top.precedence() >= incoming.precedence()
}

// closeParen moves pending operators to the operand area until the
// matching left parenthesis, which is discarded
func (b *ExpressionBuilder) closeParen() error {
	for {
		top, ok := b.pending.pop()
		if !ok {
			return NewCellError(ErrorCodeMalformed, "unmatched right parenthesis")
		}
		if top.Kind == TokenLeftParen {
			return nil
		}
		if err := b.emit(top); err != nil {
			return err
		}
	}
}

func (b *ExpressionBuilder) emit(t Token) error {
	if err := b.operands.push(t); err != nil {
		return err
	}
	if t.IsOperand() {
		b.opds++
	} else {
		b.opts++
	}
	return nil
}

// Validate drains the pending operators and checks the resulting postfix
// sequence. it returns the postfix family on success.
func (b *ExpressionBuilder) Validate() (Family, error) {
	for {
		top, ok := b.pending.pop()
		if !ok {
			break
		}
		if top.Kind == TokenLeftParen {
			return Family{}, NewCellError(ErrorCodeMalformed, "unmatched left parenthesis")
		}
		if err := b.emit(top); err != nil {
			return Family{}, err
		}
	}

	if b.operands.len() == 0 {
		return Family{}, NewCellError(ErrorCodeMalformed, "empty expression")
	}
	if b.opds-b.opts != 1 {
		return Family{}, NewCellError(ErrorCodeMalformed,
			fmt.Sprintf("%d operands for %d operators", b.opds, b.opts))
	}

	// the arity balance alone accepts sequences such as "3 + 4 5 +", so
	// the running depth is checked as well
	depth := 0
	for _, t := range b.operands.items {
		if t.IsOperand() {
			depth++
			continue
		}
		if depth < 2 {
			return Family{}, NewCellError(ErrorCodeMalformed,
				fmt.Sprintf("operator %s lacks an operand", t))
		}
		depth--
	}

	postfix, err := NewFamily(b.operands.items...)
	if err != nil {
		return Family{}, err
	}
	return postfix, nil
}

// RefsUsed reports whether a reference token went through the builder
func (b *ExpressionBuilder) RefsUsed() bool {
	return b.refsUsed
}

// Expression is a validated postfix family
type Expression struct {
	Postfix  Family
	RefsUsed bool
}

// CompileExpression runs the builder and validator over an infix sequence
func CompileExpression(infix []Token, capacity int, check ReferenceCheck) (Expression, error) {
	b := NewExpressionBuilder(capacity, check)
	for _, t := range infix {
		if err := b.Push(t); err != nil {
			return Expression{}, err
		}
	}
	postfix, err := b.Validate()
	if err != nil {
		return Expression{}, err
	}
	return Expression{Postfix: postfix, RefsUsed: b.RefsUsed()}, nil
}
