package catalog

import "strings"

// DefaultLayerPriority lists the model layers in reporting priority
// order. Grouped output (exclusive models, mapping reports) enumerates
// layers in this order wherever they appear.
var DefaultLayerPriority = []string{"silver", "gold", "bronze"}

// Column represents one output column of a model.
type Column struct {
	// Name is the lowercased column name, unique within one model.
	Name string `json:"name"`
	// Expression is the normalized transformation text producing the
	// column. For a bare pass-through this equals the name.
	Expression string `json:"expression"`
	// Transformed is true unless the expression is a bare column reference.
	Transformed bool `json:"transformed"`
	// EnumValues are the literal states of a conditional expression whose
	// branches all return literals. Nil for everything else.
	EnumValues []string `json:"enum_values,omitempty"`
	// Type is the declared data type when the column came from a live
	// schema pull instead of model text.
	Type string `json:"type,omitempty"`
	// Description is human text contributed by schema-file enrichment.
	Description string `json:"description,omitempty"`
}

// Model represents one model record within an inventory.
// Built once from one file, never mutated afterward. Two
// independently built records (one per repository) are compared but
// never merged.
type Model struct {
	// Key is the composite identity layer.domain.name,
	// e.g. "silver.core.accounts".
	Key string `json:"key"`
	// Repo labels which side the model came from.
	Repo string `json:"repo"`
	// Path is the file path relative to the repository root.
	Path string `json:"path,omitempty"`
	// Columns in projection order.
	Columns []Column `json:"columns"`
	// Upstream lists referenced models and source tables in first-seen
	// order, deduplicated.
	Upstream []string `json:"upstream,omitempty"`
	// Fingerprint is the content hash of the raw file text, used as a
	// fast equality short-circuit before any column comparison.
	Fingerprint string `json:"fingerprint"`
	// Degraded is true when no projection could be extracted from the
	// file text.
	Degraded bool `json:"degraded,omitempty"`
	// BestEffort is true when extraction had to truncate a malformed
	// conditional block.
	BestEffort bool `json:"best_effort,omitempty"`
}

// Column returns the column with the given name.
func (m *Model) Column(name string) (Column, bool) {
	for _, c := range m.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in projection order.
func (m *Model) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// Layer returns the layer component of the model key.
func (m *Model) Layer() string {
	layer, _, _ := SplitKey(m.Key)
	return layer
}

// Domain returns the domain component of the model key.
func (m *Model) Domain() string {
	_, domain, _ := SplitKey(m.Key)
	return domain
}

// Name returns the name component of the model key.
func (m *Model) Name() string {
	_, _, name := SplitKey(m.Key)
	return name
}

// MakeKey builds the composite model identity.
func MakeKey(layer, domain, name string) string {
	return layer + "." + domain + "." + name
}

// SplitKey splits a composite key into its components. The name
// component keeps any further dots, so "silver.core.fct.daily" has
// name "fct.daily".
func SplitKey(key string) (layer, domain, name string) {
	parts := strings.SplitN(key, ".", 3)
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], "", ""
	}
}
