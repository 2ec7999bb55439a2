package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/modelparity/modelparity/pkg/diff"
)

var categoryOrder = []diff.Category{diff.Identical, diff.Similar, diff.Divergent}

var categoryTitles = map[diff.Category]string{
	diff.Identical: "Identical",
	diff.Similar:   "Similar",
	diff.Divergent: "Divergent",
}

// groupByCategory buckets matched results, each bucket ordered by
// common column count descending then key.
func groupByCategory(results []diff.Result) map[diff.Category][]diff.Result {
	out := make(map[diff.Category][]diff.Result, len(categoryOrder))
	for _, r := range results {
		out[r.Category] = append(out[r.Category], r)
	}
	for _, rs := range out {
		sort.SliceStable(rs, func(i, j int) bool {
			if rs[i].CommonCount != rs[j].CommonCount {
				return rs[i].CommonCount > rs[j].CommonCount
			}
			return rs[i].Key < rs[j].Key
		})
	}
	return out
}

// resultDetail summarizes what separates a matched pair.
func resultDetail(r diff.Result, strategy string) string {
	if strategy == "schema" {
		detail := fmt.Sprintf("%.2f%% overlap", r.OverlapPct)
		if n := len(r.LogicDiffs); n > 0 {
			detail += fmt.Sprintf(", %d type mismatches", n)
		}
		return detail
	}
	if !r.Columns.Equal() {
		return fmt.Sprintf("column sets differ (+%d/-%d)",
			len(r.Columns.LeftOnly), len(r.Columns.RightOnly))
	}
	if n := len(r.LogicDiffs); n > 0 {
		return fmt.Sprintf("%d logic diffs", n)
	}
	return ""
}

// WriteComparisonTable renders a comparison report as text tables.
func WriteComparisonTable(w io.Writer, rep *diff.Report) error {
	_, _ = fmt.Fprintf(w, "Comparison: %s vs %s | strategy: %s\n",
		rep.LeftLabel, rep.RightLabel, rep.Strategy)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	s := rep.Summary
	_, _ = fmt.Fprintln(w, "Matched models:")
	_, _ = fmt.Fprintf(w, "  Identical: %d\n", s.IdenticalCount)
	_, _ = fmt.Fprintf(w, "  Similar:   %d\n", s.SimilarCount)
	_, _ = fmt.Fprintf(w, "  Divergent: %d\n", s.DivergentCount)
	if s.LeftDegraded > 0 || s.RightDegraded > 0 {
		_, _ = fmt.Fprintf(w, "  Degraded inputs: %d left, %d right\n",
			s.LeftDegraded, s.RightDegraded)
	}
	_, _ = fmt.Fprintln(w)

	grouped := groupByCategory(rep.Matched)
	for _, cat := range categoryOrder {
		results := grouped[cat]
		if len(results) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s models (%d):\n", categoryTitles[cat], len(results))

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Model", "Common Cols", "Details"})
		for _, r := range results {
			t.AppendRow(table.Row{r.Key, r.CommonCount, resultDetail(r, rep.Strategy)})
		}
		t.Render()
		_, _ = fmt.Fprintln(w)
	}

	writeDifferences(w, rep)
	writeExclusivesText(w, rep.LeftLabel, rep.LeftOnly)
	writeExclusivesText(w, rep.RightLabel, rep.RightOnly)
	return nil
}

// writeDifferences lists per-column diffs across all matched pairs.
func writeDifferences(w io.Writer, rep *diff.Report) {
	var rows []table.Row
	for _, r := range rep.Matched {
		for _, d := range r.LogicDiffs {
			rows = append(rows, table.Row{
				r.Key, d.Column, displayLogic(d.Left), displayLogic(d.Right),
			})
		}
	}
	if len(rows) == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "Column differences (%d):\n", len(rows))
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Column", rep.LeftLabel, rep.RightLabel})
	t.AppendRows(rows)
	t.Render()
	_, _ = fmt.Fprintln(w)
}

func writeExclusivesText(w io.Writer, label string, groups []diff.LayerGroup) {
	total := 0
	for _, g := range groups {
		total += len(g.Models)
	}
	if total == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "Only in %s: %d models\n", label, total)
	for _, g := range groups {
		cols := 0
		for _, m := range g.Models {
			cols += m.ColumnCount
		}
		_, _ = fmt.Fprintf(w, "  %s: %d models, %d columns\n", g.Layer, len(g.Models), cols)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Columns"})
	for _, g := range groups {
		for _, m := range g.Models {
			t.AppendRow(table.Row{m.Key, m.ColumnCount})
		}
	}
	t.Render()
	_, _ = fmt.Fprintln(w)
}

// WriteComparisonMarkdown renders a comparison report as markdown.
func WriteComparisonMarkdown(w io.Writer, rep *diff.Report) error {
	_, _ = fmt.Fprintf(w, "## Comparison: %s vs %s (%s)\n\n",
		rep.LeftLabel, rep.RightLabel, rep.Strategy)

	s := rep.Summary
	_, _ = fmt.Fprintf(w, "Matched %d models: %d identical, %d similar, %d divergent.\n",
		s.MatchedCount, s.IdenticalCount, s.SimilarCount, s.DivergentCount)
	_, _ = fmt.Fprintf(w, "Exclusive: %d only in %s, %d only in %s.\n\n",
		s.LeftOnlyCount, rep.LeftLabel, s.RightOnlyCount, rep.RightLabel)

	grouped := groupByCategory(rep.Matched)
	for _, cat := range categoryOrder {
		results := grouped[cat]
		if len(results) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "### %s (%d)\n\n", categoryTitles[cat], len(results))
		_, _ = fmt.Fprintln(w, "| Model | Common Cols | Details |")
		_, _ = fmt.Fprintln(w, "| --- | --- | --- |")
		for _, r := range results {
			_, _ = fmt.Fprintf(w, "| %s | %d | %s |\n",
				r.Key, r.CommonCount, resultDetail(r, rep.Strategy))
		}
		_, _ = fmt.Fprintln(w)
	}

	writeExclusivesMarkdown(w, rep.LeftLabel, rep.LeftOnly)
	writeExclusivesMarkdown(w, rep.RightLabel, rep.RightOnly)
	return nil
}

func writeExclusivesMarkdown(w io.Writer, label string, groups []diff.LayerGroup) {
	total := 0
	for _, g := range groups {
		total += len(g.Models)
	}
	if total == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "### Only in %s (%d)\n\n", label, total)
	_, _ = fmt.Fprintln(w, "| Layer | Model | Columns |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- |")
	for _, g := range groups {
		for _, m := range g.Models {
			_, _ = fmt.Fprintf(w, "| %s | %s | %d |\n", g.Layer, m.Key, m.ColumnCount)
		}
	}
	_, _ = fmt.Fprintln(w)
}

// WriteComparisonJSON renders the full report structure as JSON.
func WriteComparisonJSON(w io.Writer, rep *diff.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// comparisonCSVHeaders is the flat export layout, one row per model.
var comparisonCSVHeaders = []string{
	"model",
	"status",
	"common_columns",
	"left_only_columns",
	"right_only_columns",
	"logic_diffs",
	"overlap_pct",
}

// WriteComparisonCSV flattens the report into one row per model:
// matched pairs keep their category as status, exclusive models get
// left_only or right_only with their column count on the owning side.
func WriteComparisonCSV(w io.Writer, rep *diff.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(comparisonCSVHeaders); err != nil {
		return fmt.Errorf("write comparison header: %w", err)
	}

	write := func(row []string) error {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write comparison row: %w", err)
		}
		return nil
	}

	for _, r := range rep.Matched {
		overlap := ""
		if rep.Strategy == "schema" {
			overlap = fmt.Sprintf("%.2f", r.OverlapPct)
		}
		row := []string{
			r.Key,
			string(r.Category),
			strconv.Itoa(r.CommonCount),
			strconv.Itoa(len(r.Columns.LeftOnly)),
			strconv.Itoa(len(r.Columns.RightOnly)),
			strconv.Itoa(len(r.LogicDiffs)),
			overlap,
		}
		if err := write(row); err != nil {
			return err
		}
	}

	for _, g := range rep.LeftOnly {
		for _, m := range g.Models {
			if err := write([]string{m.Key, "left_only", "0", strconv.Itoa(m.ColumnCount), "0", "0", ""}); err != nil {
				return err
			}
		}
	}
	for _, g := range rep.RightOnly {
		for _, m := range g.Models {
			if err := write([]string{m.Key, "right_only", "0", "0", strconv.Itoa(m.ColumnCount), "0", ""}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
