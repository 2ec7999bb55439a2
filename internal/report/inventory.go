package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// WriteInventoryTable renders an inventory as a text table.
func WriteInventoryTable(w io.Writer, inv *catalog.Inventory) error {
	_, _ = fmt.Fprintf(w, "Inventory: %s\n", inv.Label())
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Columns", "Upstream", "Flags"})

	for _, key := range inv.Keys() {
		m, _ := inv.Get(key)
		t.AppendRow(table.Row{key, len(m.Columns), strings.Join(m.Upstream, ", "), modelFlags(m)})
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "(%d models, %d degraded)\n", inv.Len(), inv.DegradedCount())
	return nil
}

// WriteInventoryMarkdown renders an inventory as a markdown table.
func WriteInventoryMarkdown(w io.Writer, inv *catalog.Inventory) error {
	_, _ = fmt.Fprintf(w, "## Inventory: %s\n\n", inv.Label())
	_, _ = fmt.Fprintln(w, "| Model | Columns | Upstream | Flags |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- | --- |")

	for _, key := range inv.Keys() {
		m, _ := inv.Get(key)
		_, _ = fmt.Fprintf(w, "| %s | %d | %s | %s |\n",
			key, len(m.Columns), strings.Join(m.Upstream, ", "), modelFlags(m))
	}

	_, _ = fmt.Fprintf(w, "\n%d models, %d degraded\n", inv.Len(), inv.DegradedCount())
	return nil
}

// WriteInventoryJSON renders an inventory in the snapshot format, so
// the output doubles as a comparison input.
func WriteInventoryJSON(w io.Writer, inv *catalog.Inventory) error {
	return inv.WriteSnapshot(w)
}
