package spreadsheet

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/width"
	"gopkg.in/yaml.v3"
)

// TextWidth measures the terminal width of s. east asian wide and
// fullwidth runes take two columns.
func TextWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// DisplayWidth is the natural width of a value rendered with dp decimal
// places
func DisplayWidth(v Value, dp int) int {
	return TextWidth(v.Format(dp))
}

// ColumnWidths returns, per column, the largest natural width of its cells
func ColumnWidths(g *Grid, dp int) []int {
	widths := make([]int, g.Cols())
	for idx := 0; idx < g.Len(); idx++ {
		_, col := g.Coords(idx)
		widths[col] = max(widths[col], DisplayWidth(g.At(idx).Value, dp))
	}
	return widths
}

// RenderTable writes the grid as aligned columns surrounded by blank lines
func RenderTable(w io.Writer, g *Grid, dp int) error {
	widths := ColumnWidths(g, dp)
	bw := bufio.NewWriter(w)

	bw.WriteByte('\n')
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			text := g.Cell(row, col).Value.Format(dp)
			bw.WriteByte(' ')
			bw.WriteString(text)
			bw.WriteString(strings.Repeat(" ", widths[col]-TextWidth(text)))
			bw.WriteByte(' ')
		}
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

type yamlSheet struct {
	Rows          int        `yaml:"rows"`
	Cols          int        `yaml:"cols"`
	DecimalPlaces int        `yaml:"decimal_places"`
	Cells         []yamlCell `yaml:"cells"`
}

type yamlCell struct {
	Address string `yaml:"address"`
	Kind    string `yaml:"kind"`
	Value   any    `yaml:"value"`
}

// RenderYAML writes every non-empty cell as a YAML document
func RenderYAML(w io.Writer, g *Grid, dp int) error {
	doc := yamlSheet{
		Rows:          g.Rows(),
		Cols:          g.Cols(),
		DecimalPlaces: dp,
		Cells:         []yamlCell{},
	}
	for idx := 0; idx < g.Len(); idx++ {
		v := g.At(idx).Value
		if v.Kind == CellKindEmpty {
			continue
		}
		cell := yamlCell{Address: g.Address(idx), Kind: v.Kind.String()}
		switch v.Kind {
		case CellKindNumber:
			cell.Value = v.Number
		default:
			cell.Value = v.Format(dp)
		}
		doc.Cells = append(doc.Cells, cell)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
