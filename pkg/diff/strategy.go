package diff

import (
	"math"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// Strategy classifies one matched model pair. The two implementations
// embody different notions of similarity and are selected explicitly by
// the caller, never auto-detected.
type Strategy interface {
	Name() string
	Compare(left, right catalog.Model) Result
}

// Default thresholds.
const (
	DefaultSimilarThreshold = 2
	DefaultSimilarPercent   = 70.0
)

// LogicDiffStrategy compares normalized expression text per column.
// It requires inventories built from model SQL.
//
// Decision order: equal fingerprints are identical outright; any
// column-name mismatch is divergent outright; otherwise the number of
// per-column expression mismatches decides, with a fixed count (not a
// percentage) separating similar from divergent.
type LogicDiffStrategy struct {
	// SimilarThreshold is the largest diff count still categorized
	// similar. Zero means DefaultSimilarThreshold.
	SimilarThreshold int
}

// Name returns the strategy selector value.
func (s *LogicDiffStrategy) Name() string { return "logic" }

func (s *LogicDiffStrategy) threshold() int {
	if s.SimilarThreshold > 0 {
		return s.SimilarThreshold
	}
	return DefaultSimilarThreshold
}

// Compare classifies one matched pair. An empty fingerprint never
// matches the fast path.
func (s *LogicDiffStrategy) Compare(left, right catalog.Model) Result {
	res := Result{Key: left.Key}

	if left.Fingerprint != "" && left.Fingerprint == right.Fingerprint {
		res.Category = Identical
		res.CommonCount = len(left.Columns)
		return res
	}

	res.Columns = diffNames(left, right)
	res.CommonCount = len(res.Columns.Common)
	if !res.Columns.Equal() {
		res.Category = Divergent
		return res
	}

	for _, lc := range left.Columns {
		rc, ok := right.Column(lc.Name)
		if !ok {
			continue
		}
		if lc.Expression != rc.Expression {
			res.LogicDiffs = append(res.LogicDiffs, LogicDiff{
				Column: lc.Name,
				Left:   lc.Expression,
				Right:  rc.Expression,
			})
		}
	}

	switch n := len(res.LogicDiffs); {
	case n == 0:
		res.Category = Identical
	case n <= s.threshold():
		res.Category = Similar
	default:
		res.Category = Divergent
	}
	return res
}

// SchemaOverlapStrategy compares column names and declared types only.
// It serves inventories pulled from a live information_schema, where no
// SQL text exists.
//
// The overlap percentage is the count of columns matching on both name
// and type over the union of column names. 100 percent is identical, at
// or above SimilarPercent is similar, below is divergent. Name-only
// differences degrade the percentage instead of short-circuiting.
type SchemaOverlapStrategy struct {
	// SimilarPercent is the lowest overlap still categorized similar.
	// Zero means DefaultSimilarPercent.
	SimilarPercent float64
}

// Name returns the strategy selector value.
func (s *SchemaOverlapStrategy) Name() string { return "schema" }

func (s *SchemaOverlapStrategy) percent() float64 {
	if s.SimilarPercent > 0 {
		return s.SimilarPercent
	}
	return DefaultSimilarPercent
}

// Compare classifies one matched pair by column overlap. Two models
// with no columns at all have zero overlap and come out divergent.
func (s *SchemaOverlapStrategy) Compare(left, right catalog.Model) Result {
	res := Result{Key: left.Key}
	res.Columns = diffNames(left, right)
	res.CommonCount = len(res.Columns.Common)

	matching := 0
	for _, name := range res.Columns.Common {
		lc, _ := left.Column(name)
		rc, _ := right.Column(name)
		if lc.Type == rc.Type {
			matching++
		} else {
			res.LogicDiffs = append(res.LogicDiffs, LogicDiff{
				Column: name,
				Left:   lc.Type,
				Right:  rc.Type,
			})
		}
	}

	union := len(res.Columns.Common) + len(res.Columns.LeftOnly) + len(res.Columns.RightOnly)
	if union > 0 {
		res.OverlapPct = math.Round(float64(matching)/float64(union)*10000) / 100
	}

	switch {
	case res.OverlapPct == 100:
		res.Category = Identical
	case res.OverlapPct >= s.percent():
		res.Category = Similar
	default:
		res.Category = Divergent
	}
	return res
}
