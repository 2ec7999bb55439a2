package discovery

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// schemaFile is the subset of a dbt-style schema.yml the builder reads.
type schemaFile struct {
	Version int           `yaml:"version"`
	Models  []schemaModel `yaml:"models"`
}

type schemaModel struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Columns     []schemaColumn `yaml:"columns"`
}

type schemaColumn struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Tests entries are either plain strings ("not_null") or maps
	// ({accepted_values: {values: [...]}}).
	Tests []any `yaml:"tests"`
}

func (sf *schemaFile) model(name string) *schemaModel {
	for i := range sf.Models {
		if sf.Models[i].Name == name {
			return &sf.Models[i]
		}
	}
	return nil
}

// acceptedValues extracts the accepted_values test literals, if any.
func (sc *schemaColumn) acceptedValues() []string {
	for _, t := range sc.Tests {
		entry, ok := t.(map[string]any)
		if !ok {
			continue
		}
		raw, ok := entry["accepted_values"]
		if !ok {
			continue
		}
		cfg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		vals, ok := cfg["values"].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}
	return nil
}

// schemaFor loads and caches the schema file of one directory. The
// returned warning is non-nil only on the load that discovered a broken
// file.
func (b *Builder) schemaFor(dir string) (*schemaFile, *Warning) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sf, ok := b.schemas[dir]; ok {
		return sf, nil
	}
	sf, err := loadSchemaFile(dir)
	b.schemas[dir] = sf
	if err != nil {
		rel, rerr := filepath.Rel(b.root, dir)
		if rerr != nil {
			rel = dir
		}
		return nil, &Warning{Path: rel, Type: "schema", Message: err.Error()}
	}
	return sf, nil
}

// loadSchemaFile reads schema.yml (or schema.yaml) from a directory.
// Absence is not an error.
func loadSchemaFile(dir string) (*schemaFile, error) {
	for _, base := range []string{"schema.yml", "schema.yaml"} {
		path := filepath.Join(dir, base)
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", base, err)
		}
		var sf schemaFile
		if err := yaml.Unmarshal(content, &sf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		return &sf, nil
	}
	return nil, nil
}

// enrich merges schema-file metadata into a freshly extracted record:
// column descriptions, and accepted_values literals unioned into
// EnumValues in first-seen order.
func (b *Builder) enrich(m *catalog.Model, dir, name string) *Warning {
	sf, warn := b.schemaFor(dir)
	if sf == nil {
		return warn
	}
	sm := sf.model(name)
	if sm == nil {
		return warn
	}

	for _, sc := range sm.Columns {
		for i := range m.Columns {
			if m.Columns[i].Name != sc.Name {
				continue
			}
			if m.Columns[i].Description == "" {
				m.Columns[i].Description = sc.Description
			}
			m.Columns[i].EnumValues = unionValues(m.Columns[i].EnumValues, sc.acceptedValues())
			break
		}
	}
	return warn
}

func unionValues(existing, extra []string) []string {
	if len(extra) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	out := existing
	for _, v := range extra {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
