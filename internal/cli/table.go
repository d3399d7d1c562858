package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// plainStyle renders kubectl-style tables: no borders, no separators and
// three spaces between columns.
var plainStyle = func() table.Style {
	style := table.StyleDefault
	style.Name = "plain"
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "   "
	style.Options = table.Options{}
	style.Format.Header = text.FormatUpper
	return style
}()

// Table is a plain table with upper-case headers.
type Table struct {
	w table.Writer
}

// NewTable creates a table writing to out.
func NewTable(out io.Writer, noHeaders bool, headers ...string) *Table {
	w := table.NewWriter()
	w.SetOutputMirror(out)
	w.SetStyle(plainStyle)
	if !noHeaders {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			row[i] = h
		}
		w.AppendHeader(row)
	}
	return &Table{w: w}
}

// AppendRow adds a row to the table.
func (t *Table) AppendRow(cells ...interface{}) {
	t.w.AppendRow(table.Row(cells))
}

// Len is the number of rows appended so far.
func (t *Table) Len() int {
	return t.w.Length()
}

// Render writes the table to its output.
func (t *Table) Render() {
	t.w.Render()
}
