package spreadsheet

import (
	"errors"
	"strings"
	"testing"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		src  string
		rows int
		cols int
	}{
		{"", 0, 0},
		{"1|2|\n", 1, 2},
		{"1|\n2|3|4|\n", 2, 3},
		{"1|2|", 1, 2},
		{"1|\n\n", 2, 1},
		{"1|\n2", 2, 1},
		{"\n", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			rows, cols := Dimensions(tt.src)
			if rows != tt.rows || cols != tt.cols {
				t.Errorf("Dimensions(%q) = %dx%d, expected %dx%d", tt.src, rows, cols, tt.rows, tt.cols)
			}
		})
	}
}

func lexCell(t *testing.T, src string, idx int) Cell {
	t.Helper()
	grid, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	return *grid.At(idx)
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"=3-4-5|", "= 3 - 4 - 5"},
		{"=-4*2|", "= -4 * 2"},
		{"=2*-3|", "= 2 * -3"},
		{"=10-(-2)|", "= 10 - ( -2 )"},
		{"=(1)-2|", "= ( 1 ) - 2"},
		{"=@a1-1|5|", "= REF(0) - 1"},
		{"-|", "-"},
		{"-7.25|", "-7.25"},
		{"\"hi there\" |", "\"hi there\""},
		{"@B1|1|", "REF(1)"},
		{"^|", "^"},
		{"  42\t\r|", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			cell := lexCell(t, tt.src, 0)
			if cell.Value.Kind == CellKindError {
				t.Fatalf("unexpected lex error: %v", cell.Value.Error)
			}
			if got := cell.Family.String(); got != tt.expected {
				t.Errorf("tokens = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestLexerReferences(t *testing.T) {
	if got := lexCell(t, "1|\n@a2|\n", 1).Family.String(); got != "REF(1)" {
		t.Errorf("@a2 = %q, expected REF(1)", got)
	}

	wide := strings.Repeat("1|", 27) + "@ab1|"
	if got := lexCell(t, wide, 27).Family.String(); got != "REF(27)" {
		t.Errorf("@ab1 = %q, expected REF(27)", got)
	}

	if got := lexCell(t, "1|2|\n@B|\n", 2).Family.String(); got != "REF(1)" {
		t.Errorf("@B = %q, expected REF(1)", got)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code ErrorCode
	}{
		{"row zero", "@a0|", ErrorCodeBounds},
		{"column outside grid", "@c1|1|", ErrorCodeBounds},
		{"row outside grid", "@a2|", ErrorCodeBounds},
		{"huge row", "@a99999999999999999999|", ErrorCodeBounds},
		{"reference without column", "@9|", ErrorCodeUnknown},
		{"unterminated string", "\"abc|", ErrorCodeUnknown},
		{"unknown character", "%|", ErrorCodeUnknown},
		{"first error sticks", "?@a0|", ErrorCodeUnknown},
		{"too many tokens", strings.Repeat("1 ", FamilySize+1) + "|", ErrorCodeOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := lexCell(t, tt.src, 0)
			if got := cell.Value.Code(); got != tt.code {
				t.Errorf("code = %s, expected %s", got, tt.code)
			}
		})
	}
}

func TestLexerFamilyLimit(t *testing.T) {
	cell := lexCell(t, strings.Repeat("1 ", FamilySize)+"|", 0)
	if cell.Value.Kind == CellKindError {
		t.Fatalf("unexpected error: %v", cell.Value.Error)
	}
	if cell.Family.Len() != FamilySize {
		t.Errorf("family holds %d tokens, expected %d", cell.Family.Len(), FamilySize)
	}
}

func TestLexerDropsUnterminatedContent(t *testing.T) {
	grid, err := Lex("1|2\n3|\n")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if grid.Rows() != 2 || grid.Cols() != 1 {
		t.Fatalf("grid is %dx%d, expected 2x1", grid.Rows(), grid.Cols())
	}
	if got := grid.At(0).Family.String(); got != "1" {
		t.Errorf("a1 = %q, expected 1", got)
	}
	if got := grid.At(1).Family.String(); got != "3" {
		t.Errorf("a2 = %q, expected 3", got)
	}

	grid, err = Lex("1|2")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if grid.Len() != 1 || grid.At(0).Family.String() != "1" {
		t.Errorf("trailing content leaked into the grid: %q", grid.At(0).Family.String())
	}
}

func TestLexerShortRowsStayEmpty(t *testing.T) {
	grid, err := Lex("1|2|3|\n4|\n")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	for _, idx := range []int{4, 5} {
		if grid.At(idx).Family.Len() != 0 {
			t.Errorf("%s should be empty, got %q", grid.Address(idx), grid.At(idx).Family.String())
		}
	}
}

func TestLexTooManyRows(t *testing.T) {
	_, err := Lex(strings.Repeat("|\n", MaxRows))
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != OutOfRange {
		t.Errorf("expected OutOfRange, got %v", err)
	}
}
