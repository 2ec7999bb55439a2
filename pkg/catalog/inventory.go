package catalog

import "sort"

// Inventory maps keys to model records for one repository snapshot.
// Built once per comparison run and read-only afterward, so it is safe
// to share across goroutines without locking.
type Inventory struct {
	label    string
	models   map[string]Model
	keys     []string
	degraded int
}

// NewInventory builds an inventory from a slice of models. A repeated
// key is not expected but tolerated: the later model wins. Callers that
// care about collisions detect them before construction.
func NewInventory(label string, models []Model) *Inventory {
	inv := &Inventory{
		label:  label,
		models: make(map[string]Model, len(models)),
	}
	for _, m := range models {
		if _, exists := inv.models[m.Key]; !exists {
			inv.keys = append(inv.keys, m.Key)
		}
		inv.models[m.Key] = m
	}
	sort.Strings(inv.keys)
	for _, m := range inv.models {
		if m.Degraded {
			inv.degraded++
		}
	}
	return inv
}

// Label returns the repository label the inventory was built for.
func (inv *Inventory) Label() string {
	return inv.label
}

// Get returns the model record for a key.
func (inv *Inventory) Get(key string) (Model, bool) {
	m, ok := inv.models[key]
	return m, ok
}

// Len returns the number of models.
func (inv *Inventory) Len() int {
	return len(inv.models)
}

// Keys returns all keys in sorted order. The returned slice is a copy.
func (inv *Inventory) Keys() []string {
	out := make([]string, len(inv.keys))
	copy(out, inv.keys)
	return out
}

// LayerKeys returns the sorted keys belonging to one layer.
func (inv *Inventory) LayerKeys(layer string) []string {
	var out []string
	for _, key := range inv.keys {
		if m := inv.models[key]; m.Layer() == layer {
			out = append(out, key)
		}
	}
	return out
}

// DegradedCount returns how many models carry the degraded flag.
func (inv *Inventory) DegradedCount() int {
	return inv.degraded
}
