package spreadsheet

import (
	"errors"
	"math"
	"testing"
)

func mustFamily(t *testing.T, tokens ...Token) Family {
	t.Helper()
	f, err := NewFamily(tokens...)
	if err != nil {
		t.Fatalf("NewFamily failed: %v", err)
	}
	return f
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		formula  string
		expected float64
	}{
		{"=3+4*2", 11},
		{"=(3+4)*2", 14},
		{"=3-4-5", -6},
		{"=1.5*4", 6},
		{"=7/2", 3.5},
		{"=-2*-2", 4},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			expr, err := CompileExpression(infix(t, tt.formula), 0, nil)
			if err != nil {
				t.Fatalf("CompileExpression failed: %v", err)
			}
			got, err := Evaluate(expr.Postfix, 0, nil)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Evaluate = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	got, err := Evaluate(mustFamily(t, NumberToken(1), NumberToken(0), MarkerToken(TokenDivide)), 0, nil)
	if err != nil || !math.IsInf(got, 1) {
		t.Errorf("1/0 = %v, %v, expected +Inf", got, err)
	}
	got, err = Evaluate(mustFamily(t, NumberToken(0), NumberToken(0), MarkerToken(TokenDivide)), 0, nil)
	if err != nil || !math.IsNaN(got) {
		t.Errorf("0/0 = %v, %v, expected NaN", got, err)
	}
}

func TestEvaluateReferences(t *testing.T) {
	values := map[int]float64{0: 5, 1: 3}
	lookup := func(ref int) (float64, error) {
		n, ok := values[ref]
		if !ok {
			return 0, NewCellError(ErrorCodeBounds, "")
		}
		return n, nil
	}

	postfix := mustFamily(t, ReferenceToken(0), ReferenceToken(1), MarkerToken(TokenSubtract))
	got, err := Evaluate(postfix, 0, lookup)
	if err != nil || got != 2 {
		t.Errorf("REF(0) - REF(1) = %v, %v, expected 2", got, err)
	}

	postfix.Rebase(5)
	_, err = Evaluate(postfix, 0, lookup)
	if code := errorCode(err); code != ErrorCodeBounds {
		t.Errorf("code = %s, expected %s", code, ErrorCodeBounds)
	}

	_, err = Evaluate(mustFamily(t, ReferenceToken(0)), 0, nil)
	if code := errorCode(err); code != ErrorCodeMalformed {
		t.Errorf("missing lookup: code = %s, expected %s", code, ErrorCodeMalformed)
	}
}

func TestEvaluateRejectsBrokenPostfix(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		code   ErrorCode
	}{
		{"underflow", []Token{NumberToken(1), MarkerToken(TokenAdd)}, ErrorCodeMalformed},
		{"leftover values", []Token{NumberToken(1), NumberToken(2)}, ErrorCodeMalformed},
		{"empty", nil, ErrorCodeMalformed},
		{"parenthesis", []Token{NumberToken(1), MarkerToken(TokenLeftParen)}, ErrorCodeMalformed},
		{"value stack", []Token{NumberToken(1), NumberToken(2), NumberToken(3), NumberToken(4)}, ErrorCodeOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(mustFamily(t, tt.tokens...), 2, nil)
			var cellErr *CellError
			if !errors.As(err, &cellErr) || cellErr.ErrorCode != tt.code {
				t.Errorf("err = %v, expected %s", err, tt.code)
			}
		})
	}
}
