package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// snapshot is the JSON file layout for a saved inventory.
type snapshot struct {
	Label       string    `json:"label"`
	GeneratedAt time.Time `json:"generated_at"`
	Models      []Model   `json:"models"`
}

// WriteSnapshot encodes the inventory as indented JSON with models in
// key order, so consecutive snapshots of the same tree diff cleanly.
func (inv *Inventory) WriteSnapshot(w io.Writer) error {
	snap := snapshot{
		Label:       inv.label,
		GeneratedAt: time.Now().UTC(),
		Models:      make([]Model, 0, len(inv.keys)),
	}
	for _, key := range inv.keys {
		snap.Models = append(snap.Models, inv.models[key])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode inventory snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot decodes a saved inventory.
func LoadSnapshot(r io.Reader) (*Inventory, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode inventory snapshot: %w", err)
	}
	return NewInventory(snap.Label, snap.Models), nil
}
