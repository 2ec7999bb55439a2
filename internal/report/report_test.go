package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/diff"
)

func TestTeamMapping_Owner(t *testing.T) {
	teams := TeamMapping{"finance": "Finance Team", "risk": "Risk Team"}

	assert.Equal(t, "Finance Team", teams.Owner("finance"))
	assert.Equal(t, "Finance Team", teams.Owner("FINANCE"), "lookup is case-insensitive")
	assert.Equal(t, DefaultTeam, teams.Owner("marketing"), "unmapped domains get the default owner")
	assert.Equal(t, DefaultTeam, TeamMapping(nil).Owner("finance"), "nil mapping falls back")
}

func TestLogicalName(t *testing.T) {
	assert.Equal(t, "Account Id", logicalName("account_id"))
	assert.Equal(t, "Total", logicalName("total"))
	assert.Equal(t, "Created  On", logicalName("created__on"))
}

func TestDisplayLogic(t *testing.T) {
	short := "CASE WHEN status = 1 THEN 'OPEN' | ELSE 'CLOSED' END"
	assert.Equal(t, short, displayLogic(short), "short conditions pass through")

	assert.Equal(t, "amount * 100", displayLogic("amount * 100"),
		"plain expressions pass through")

	long := strings.Repeat("x", 60)
	in := "CASE WHEN " + long + " THEN 'A' | ELSE 'B' END"
	out := displayLogic(in)
	want := "CASE WHEN " + long[:47] + "..." + " THEN 'A' | ELSE 'B' END"
	assert.Equal(t, want, out, "long conditions shorten to 50 display chars")
	assert.Equal(t, in, "CASE WHEN "+long+" THEN 'A' | ELSE 'B' END",
		"input expression is untouched")
}

func TestEnumDisplay(t *testing.T) {
	assert.Equal(t, "", enumDisplay(nil))
	assert.Equal(t, "A, B, C", enumDisplay([]string{"A", "B", "C"}))

	many := []string{"V1", "V2", "V3", "V4", "V5", "V6", "V7", "V8", "V9", "V10", "V11", "V12"}
	assert.Equal(t, "V1, V2, V3, V4, V5, V6, V7, V8, V9, V10 ... (12 total)",
		enumDisplay(many), "display caps at 10 values")
}

func mappingInventory() *catalog.Inventory {
	return catalog.NewInventory("primary", []catalog.Model{
		{
			Key:  "silver.finance.accounts",
			Repo: "primary",
			Columns: []catalog.Column{
				{Name: "account_id", Expression: "account_id"},
				{Name: "status", Expression: "CASE WHEN status_code = 1 THEN 'ACTIVE' | ELSE 'CLOSED' END",
					Transformed: true, EnumValues: []string{"ACTIVE", "CLOSED"},
					Description: "Lifecycle status."},
			},
			Upstream: []string{"raw_accounts", "raw_status"},
		},
		{
			Key:     "gold.sales.orders",
			Repo:    "primary",
			Columns: []catalog.Column{{Name: "order_id", Expression: "order_id"}},
		},
	})
}

func TestMappingRows(t *testing.T) {
	teams := TeamMapping{"finance": "Finance Team"}
	rows := MappingRows(mappingInventory(), teams)

	require.Len(t, rows, 3, "one row per column")

	// Key order puts gold.sales.orders first.
	assert.Equal(t, []string{
		"gold", "sales", "orders", "order_id", "Order Id", "", "R3",
		"order_id", "", "", "", DefaultTeam,
	}, rows[0])

	status := rows[2]
	assert.Equal(t, "silver", status[0])
	assert.Equal(t, "finance", status[1])
	assert.Equal(t, "accounts", status[2])
	assert.Equal(t, "status", status[3])
	assert.Equal(t, "Lifecycle status.", status[5])
	assert.Equal(t, "R3+", status[6], "transformed columns are R3+")
	assert.Equal(t, "ACTIVE, CLOSED", status[8])
	assert.Equal(t, "raw_accounts, raw_status", status[9])
	assert.Equal(t, "Finance Team", status[11], "domain mapping resolves the owner")
}

func TestWriteMappingCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMappingCSV(&buf, mappingInventory(), nil)
	require.NoError(t, err, "unexpected CSV error")

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err, "output must parse as CSV")
	require.Len(t, records, 4, "header plus three rows")
	assert.Equal(t, mappingHeaders, records[0])
	assert.Equal(t, "ACTIVE, CLOSED", records[3][8], "comma cells survive quoting")
}

func TestWriteMappingMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMappingMarkdown(&buf, mappingInventory(), nil)
	require.NoError(t, err, "unexpected markdown error")

	out := buf.String()
	assert.Contains(t, out, "## Column mapping: primary")
	assert.Contains(t, out, `CASE WHEN status_code = 1 THEN 'ACTIVE' \| ELSE 'CLOSED' END`,
		"pipes inside expressions are escaped")
	assert.Equal(t, 5, strings.Count(out, "\n|"), "header, separator and three data rows")
}

func sampleComparison() *diff.Report {
	return &diff.Report{
		LeftLabel:  "primary",
		RightLabel: "secondary",
		Strategy:   "logic",
		Matched: []diff.Result{
			{Key: "silver.finance.accounts", Category: diff.Similar, CommonCount: 3,
				Columns: diff.ColumnNameDiff{Common: []string{"a", "b", "c"}},
				LogicDiffs: []diff.LogicDiff{
					{Column: "b", Left: "b", Right: "upper(b)"},
				}},
			{Key: "silver.finance.invoices", Category: diff.Similar, CommonCount: 7,
				Columns: diff.ColumnNameDiff{Common: []string{"a", "b", "c", "d", "e", "f", "g"}},
				LogicDiffs: []diff.LogicDiff{
					{Column: "a", Left: "a", Right: "trim(a)"},
				}},
			{Key: "gold.sales.orders", Category: diff.Identical, CommonCount: 2,
				Columns: diff.ColumnNameDiff{Common: []string{"x", "y"}}},
		},
		LeftOnly: []diff.LayerGroup{
			{Layer: "silver", Models: []diff.ExclusiveModel{
				{Key: "silver.risk.scores", ColumnCount: 5},
			}},
		},
		Summary: diff.Summary{
			MatchedCount: 3, IdenticalCount: 1, SimilarCount: 2,
			LeftOnlyCount: 1,
		},
	}
}

func TestGroupByCategory_Ordering(t *testing.T) {
	grouped := groupByCategory(sampleComparison().Matched)

	similar := grouped[diff.Similar]
	require.Len(t, similar, 2)
	assert.Equal(t, "silver.finance.invoices", similar[0].Key,
		"higher common count sorts first")
	assert.Equal(t, "silver.finance.accounts", similar[1].Key)
}

func TestResultDetail(t *testing.T) {
	divergentCols := diff.Result{
		Category: diff.Divergent,
		Columns:  diff.ColumnNameDiff{LeftOnly: []string{"a", "b"}, RightOnly: []string{"c"}},
	}
	assert.Equal(t, "column sets differ (+2/-1)", resultDetail(divergentCols, "logic"))

	logic := diff.Result{
		Category:   diff.Similar,
		LogicDiffs: []diff.LogicDiff{{Column: "a"}, {Column: "b"}},
	}
	assert.Equal(t, "2 logic diffs", resultDetail(logic, "logic"))

	schema := diff.Result{Category: diff.Similar, OverlapPct: 66.67,
		LogicDiffs: []diff.LogicDiff{{Column: "a"}}}
	assert.Equal(t, "66.67% overlap, 1 type mismatches", resultDetail(schema, "schema"))

	identical := diff.Result{Category: diff.Identical}
	assert.Equal(t, "", resultDetail(identical, "logic"))
}

func TestWriteComparisonTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteComparisonTable(&buf, sampleComparison())
	require.NoError(t, err, "unexpected render error")

	out := buf.String()
	assert.Contains(t, out, "Comparison: primary vs secondary | strategy: logic")
	assert.Contains(t, out, "Identical: 1")
	assert.Contains(t, out, "Similar:   2")
	assert.Contains(t, out, "Similar models (2):")
	assert.Contains(t, out, "Column differences (2):")
	assert.Contains(t, out, "Only in primary: 1 models")
	assert.Contains(t, out, "silver: 1 models, 5 columns")
	assert.NotContains(t, out, "Only in secondary", "empty exclusive side is omitted")

	invoicesAt := strings.Index(out, "silver.finance.invoices")
	accountsAt := strings.Index(out, "silver.finance.accounts")
	require.True(t, invoicesAt >= 0 && accountsAt >= 0)
	assert.Less(t, invoicesAt, accountsAt, "similar bucket lists higher common count first")
}

func TestWriteComparisonMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := WriteComparisonMarkdown(&buf, sampleComparison())
	require.NoError(t, err, "unexpected render error")

	out := buf.String()
	assert.Contains(t, out, "## Comparison: primary vs secondary (logic)")
	assert.Contains(t, out, "Matched 3 models: 1 identical, 2 similar, 0 divergent.")
	assert.Contains(t, out, "### Similar (2)")
	assert.Contains(t, out, "### Only in primary (1)")
	assert.Contains(t, out, "| silver | silver.risk.scores | 5 |")
}

func TestWriteComparisonJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteComparisonJSON(&buf, sampleComparison())
	require.NoError(t, err, "unexpected encode error")

	var decoded diff.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded), "output must parse")
	assert.Equal(t, "primary", decoded.LeftLabel)
	assert.Len(t, decoded.Matched, 3)
	assert.Equal(t, 1, decoded.Summary.IdenticalCount)
}

func TestWriteComparisonCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteComparisonCSV(&buf, sampleComparison())
	require.NoError(t, err, "unexpected render error")

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err, "output must parse as CSV")
	require.Len(t, records, 5, "header, three matched, one exclusive")

	assert.Equal(t, comparisonCSVHeaders, records[0])
	assert.Equal(t,
		[]string{"silver.finance.accounts", "similar", "3", "0", "0", "1", ""},
		records[1])
	assert.Equal(t,
		[]string{"silver.risk.scores", "left_only", "0", "5", "0", "0", ""},
		records[4])
}

func TestWriteComparisonCSV_SchemaOverlap(t *testing.T) {
	rep := &diff.Report{
		LeftLabel:  "warehouse",
		RightLabel: "models",
		Strategy:   "schema",
		Matched: []diff.Result{
			{Key: "silver.finance.accounts", Category: diff.Similar,
				CommonCount: 3, OverlapPct: 75.0},
		},
		Summary: diff.Summary{MatchedCount: 1, SimilarCount: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparisonCSV(&buf, rep))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "75.00", records[1][6], "schema strategy fills overlap_pct")
}

func TestWriteInventoryTable(t *testing.T) {
	var buf bytes.Buffer
	inv := catalog.NewInventory("primary", []catalog.Model{
		{Key: "silver.finance.accounts", Columns: []catalog.Column{{Name: "a"}},
			Upstream: []string{"raw_accounts"}},
		{Key: "silver.ops.broken", Degraded: true},
	})

	err := WriteInventoryTable(&buf, inv)
	require.NoError(t, err, "unexpected render error")

	out := buf.String()
	assert.Contains(t, out, "Inventory: primary")
	assert.Contains(t, out, "silver.finance.accounts")
	assert.Contains(t, out, "raw_accounts")
	assert.Contains(t, out, "degraded")
	assert.Contains(t, out, "(2 models, 1 degraded)")
}

func TestWriteInventoryJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	inv := catalog.NewInventory("primary", []catalog.Model{
		{Key: "silver.finance.accounts", Columns: []catalog.Column{{Name: "a"}}},
	})

	require.NoError(t, WriteInventoryJSON(&buf, inv), "unexpected encode error")

	loaded, err := catalog.LoadSnapshot(&buf)
	require.NoError(t, err, "snapshot output must load back")
	assert.Equal(t, inv.Keys(), loaded.Keys(), "keys survive the round trip")
}
