// Package diff compares two model inventories and classifies every
// matched key as identical, similar or divergent.
//
// Two comparison strategies exist: LogicDiffStrategy diffs normalized
// expression text per column, SchemaOverlapStrategy scores name-and-type
// overlap for inventories that carry no SQL. They encode different
// similarity philosophies and are never merged or auto-selected; the
// caller picks one.
package diff

import (
	"log/slog"
	"sort"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// Options configures a Comparator.
type Options struct {
	// Strategy classifies matched pairs. Nil means a default
	// LogicDiffStrategy.
	Strategy Strategy

	// LayerPriority orders layer buckets in the report. Nil means
	// catalog.DefaultLayerPriority.
	LayerPriority []string

	// Logger receives progress and summary events. Nil discards.
	Logger *slog.Logger
}

// Comparator compares two inventories. Both inventories are read-only
// during comparison, so one Comparator may be reused across runs.
type Comparator struct {
	strategy Strategy
	layers   []string
	log      *slog.Logger
}

// NewComparator builds a Comparator from explicit options.
func NewComparator(opts Options) *Comparator {
	c := &Comparator{
		strategy: opts.Strategy,
		layers:   opts.LayerPriority,
		log:      opts.Logger,
	}
	if c.strategy == nil {
		c.strategy = &LogicDiffStrategy{}
	}
	if len(c.layers) == 0 {
		c.layers = catalog.DefaultLayerPriority
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// Report is the complete outcome of comparing two inventories.
type Report struct {
	LeftLabel  string       `json:"left_label"`
	RightLabel string       `json:"right_label"`
	Strategy   string       `json:"strategy"`
	Matched    []Result     `json:"matched"`
	LeftOnly   []LayerGroup `json:"left_only,omitempty"`
	RightOnly  []LayerGroup `json:"right_only,omitempty"`
	Summary    Summary      `json:"summary"`
}

// LayerGroup holds one layer's exclusive models, sorted by column count
// descending then key.
type LayerGroup struct {
	Layer  string           `json:"layer"`
	Models []ExclusiveModel `json:"models"`
}

// ExclusiveModel is a model present on only one side.
type ExclusiveModel struct {
	Key         string   `json:"key"`
	ColumnCount int      `json:"column_count"`
	Columns     []string `json:"columns,omitempty"`
}

// Summary carries the headline counts of one comparison.
type Summary struct {
	MatchedCount   int `json:"matched_count"`
	IdenticalCount int `json:"identical_count"`
	SimilarCount   int `json:"similar_count"`
	DivergentCount int `json:"divergent_count"`
	LeftOnlyCount  int `json:"left_only_count"`
	RightOnlyCount int `json:"right_only_count"`
	LeftDegraded   int `json:"left_degraded,omitempty"`
	RightDegraded  int `json:"right_degraded,omitempty"`
}

// Compare matches the two inventories by key and produces the full
// report. Matched results are in key order; exclusive models are
// bucketed by layer in priority order. An empty inventory on either
// side is not an error: every key becomes exclusive to the other side.
func (c *Comparator) Compare(left, right *catalog.Inventory) *Report {
	rep := &Report{
		LeftLabel:  left.Label(),
		RightLabel: right.Label(),
		Strategy:   c.strategy.Name(),
	}

	for _, key := range left.Keys() {
		lm, _ := left.Get(key)
		rm, ok := right.Get(key)
		if !ok {
			continue
		}
		res := c.strategy.Compare(lm, rm)
		res.Key = key
		rep.Matched = append(rep.Matched, res)

		switch res.Category {
		case Identical:
			rep.Summary.IdenticalCount++
		case Similar:
			rep.Summary.SimilarCount++
		case Divergent:
			rep.Summary.DivergentCount++
		}
	}

	rep.LeftOnly = c.exclusives(left, right)
	rep.RightOnly = c.exclusives(right, left)

	rep.Summary.MatchedCount = len(rep.Matched)
	rep.Summary.LeftOnlyCount = countExclusives(rep.LeftOnly)
	rep.Summary.RightOnlyCount = countExclusives(rep.RightOnly)
	rep.Summary.LeftDegraded = left.DegradedCount()
	rep.Summary.RightDegraded = right.DegradedCount()

	c.log.Info("comparison complete",
		"strategy", rep.Strategy,
		"matched", rep.Summary.MatchedCount,
		"identical", rep.Summary.IdenticalCount,
		"similar", rep.Summary.SimilarCount,
		"divergent", rep.Summary.DivergentCount,
		"left_only", rep.Summary.LeftOnlyCount,
		"right_only", rep.Summary.RightOnlyCount,
	)
	return rep
}

// exclusives buckets keys present in one inventory but not the other.
// Priority layers come first; any remaining layer follows
// alphabetically.
func (c *Comparator) exclusives(in, other *catalog.Inventory) []LayerGroup {
	byLayer := make(map[string][]ExclusiveModel)
	for _, key := range in.Keys() {
		if _, ok := other.Get(key); ok {
			continue
		}
		m, _ := in.Get(key)
		byLayer[m.Layer()] = append(byLayer[m.Layer()], ExclusiveModel{
			Key:         key,
			ColumnCount: len(m.Columns),
			Columns:     m.ColumnNames(),
		})
	}

	var groups []LayerGroup
	emit := func(layer string) {
		models := byLayer[layer]
		if len(models) == 0 {
			return
		}
		sort.Slice(models, func(i, j int) bool {
			if models[i].ColumnCount != models[j].ColumnCount {
				return models[i].ColumnCount > models[j].ColumnCount
			}
			return models[i].Key < models[j].Key
		})
		groups = append(groups, LayerGroup{Layer: layer, Models: models})
		delete(byLayer, layer)
	}

	for _, layer := range c.layers {
		emit(layer)
	}
	rest := make([]string, 0, len(byLayer))
	for layer := range byLayer {
		rest = append(rest, layer)
	}
	sort.Strings(rest)
	for _, layer := range rest {
		emit(layer)
	}
	return groups
}

func countExclusives(groups []LayerGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Models)
	}
	return n
}
