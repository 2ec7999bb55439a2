package diff

import (
	"sort"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// Category classifies one matched model pair.
type Category string

// Comparison categories.
const (
	Identical Category = "identical"
	Similar   Category = "similar"
	Divergent Category = "divergent"
)

// ColumnNameDiff partitions the column names of a matched pair.
// Each set is sorted.
type ColumnNameDiff struct {
	Common    []string `json:"common,omitempty"`
	LeftOnly  []string `json:"left_only,omitempty"`
	RightOnly []string `json:"right_only,omitempty"`
}

// Equal reports whether both sides carry exactly the same column names.
func (d ColumnNameDiff) Equal() bool {
	return len(d.LeftOnly) == 0 && len(d.RightOnly) == 0
}

// LogicDiff records one per-column mismatch: normalized expressions
// under the logic strategy, declared types under the schema strategy.
type LogicDiff struct {
	Column string `json:"column"`
	Left   string `json:"left"`
	Right  string `json:"right"`
}

// Result is the comparison outcome for one matched key.
// Category is a pure function of the other fields.
type Result struct {
	Key      string   `json:"key"`
	Category Category `json:"category"`

	// Columns is the column-name partition. Zero when the fingerprint
	// fast path decided the category.
	Columns ColumnNameDiff `json:"columns"`

	// LogicDiffs lists per-column mismatches in projection order.
	LogicDiffs []LogicDiff `json:"logic_diffs,omitempty"`

	// CommonCount is the number of columns shared by both sides, used
	// for report ordering.
	CommonCount int `json:"common_count"`

	// OverlapPct is the name-and-type overlap percentage. Only the
	// schema strategy sets it.
	OverlapPct float64 `json:"overlap_pct,omitempty"`
}

// diffNames partitions the column names of two models into sorted
// common and exclusive sets.
func diffNames(left, right catalog.Model) ColumnNameDiff {
	inRight := make(map[string]bool, len(right.Columns))
	for _, c := range right.Columns {
		inRight[c.Name] = true
	}

	var d ColumnNameDiff
	inLeft := make(map[string]bool, len(left.Columns))
	for _, c := range left.Columns {
		inLeft[c.Name] = true
		if inRight[c.Name] {
			d.Common = append(d.Common, c.Name)
		} else {
			d.LeftOnly = append(d.LeftOnly, c.Name)
		}
	}
	for _, c := range right.Columns {
		if !inLeft[c.Name] {
			d.RightOnly = append(d.RightOnly, c.Name)
		}
	}

	sort.Strings(d.Common)
	sort.Strings(d.LeftOnly)
	sort.Strings(d.RightOnly)
	return d
}
