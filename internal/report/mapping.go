package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// mappingHeaders is the column mapping document layout.
var mappingHeaders = []string{
	"Layer",
	"Domain",
	"Model",
	"Column Name",
	"Logical Column Name",
	"Column Description",
	"R3/R3+",
	"Transformation Logic",
	"Enums/Accepted Values",
	"Upstream Sources",
	"Data Type",
	"Source Team",
}

// MappingRows flattens an inventory into mapping document rows, models
// in key order, columns in projection order.
func MappingRows(inv *catalog.Inventory, teams TeamMapping) [][]string {
	var rows [][]string
	for _, key := range inv.Keys() {
		m, _ := inv.Get(key)
		owner := teams.Owner(m.Domain())
		upstream := strings.Join(m.Upstream, ", ")
		for _, c := range m.Columns {
			rows = append(rows, []string{
				m.Layer(),
				m.Domain(),
				m.Name(),
				c.Name,
				logicalName(c.Name),
				c.Description,
				ruleLabel(c),
				displayLogic(c.Expression),
				enumDisplay(c.EnumValues),
				upstream,
				c.Type,
				owner,
			})
		}
	}
	return rows
}

// WriteMappingCSV writes the column mapping document as CSV.
func WriteMappingCSV(w io.Writer, inv *catalog.Inventory, teams TeamMapping) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mappingHeaders); err != nil {
		return fmt.Errorf("write mapping header: %w", err)
	}
	for _, row := range MappingRows(inv, teams) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write mapping row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMappingMarkdown writes the column mapping document as a
// markdown table.
func WriteMappingMarkdown(w io.Writer, inv *catalog.Inventory, teams TeamMapping) error {
	_, _ = fmt.Fprintf(w, "## Column mapping: %s\n\n", inv.Label())
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(mappingHeaders, " | "))

	seps := make([]string, len(mappingHeaders))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range MappingRows(inv, teams) {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = mdCell(cell)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

// mdCell escapes table-breaking characters in a markdown cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// WriteMappingTable renders the column mapping document as a text
// table for console use.
func WriteMappingTable(w io.Writer, inv *catalog.Inventory, teams TeamMapping) error {
	_, _ = fmt.Fprintf(w, "Column mapping: %s\n", inv.Label())
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(mappingHeaders))
	for i, h := range mappingHeaders {
		header[i] = h
	}
	t.AppendHeader(header)

	rows := MappingRows(inv, teams)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "(%d columns)\n", len(rows))
	return nil
}
