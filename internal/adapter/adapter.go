// Package adapter pulls schema inventories out of live warehouse
// information_schema tables.
//
// Concrete drivers register themselves with the package registry in
// their init functions; callers go through NewAdapter.
package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// Config carries the connection settings for one warehouse.
type Config struct {
	// Driver selects the registered adapter ("postgres", "duckdb").
	Driver string

	// DSN is the full connection string. When set it wins over the
	// discrete fields below.
	DSN string

	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Path is the database file for embedded engines.
	// Use ":memory:" for an in-memory database.
	Path string

	// Options contains additional driver-specific options such as sslmode.
	Options map[string]string
}

// TableColumn is one information_schema.columns row.
type TableColumn struct {
	Schema   string
	Table    string
	Name     string
	Type     string
	Nullable bool
	Position int
}

// Adapter is the contract every warehouse driver satisfies.
type Adapter interface {
	// Connect establishes a connection to the warehouse.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Name returns the registered driver name.
	Name() string

	// Columns lists every user-table column, ordered by schema, table
	// and ordinal position. A non-empty database restricts the listing
	// to that catalog.
	Columns(ctx context.Context, database string) ([]TableColumn, error)
}

// PullOptions scope an inventory pull.
type PullOptions struct {
	// Label names the resulting inventory. Defaults to the database,
	// then to the driver name.
	Label string

	// Database restricts the pull to one catalog. Optional.
	Database string
}

// PullInventory reads the warehouse column listing and shapes it into
// an inventory. Tables become models keyed layer.domain.table with
// name-and-type columns and no SQL analysis, ready for the schema
// overlap strategy.
func PullInventory(ctx context.Context, a Adapter, opts PullOptions) (*catalog.Inventory, error) {
	cols, err := a.Columns(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("pull inventory: %w", err)
	}

	label := opts.Label
	if label == "" {
		label = opts.Database
	}
	if label == "" {
		label = a.Name()
	}

	var models []catalog.Model
	index := make(map[string]int)
	for _, c := range cols {
		layer, domain := splitSchema(c.Schema)
		key := catalog.MakeKey(layer, domain, strings.ToLower(c.Table))

		i, ok := index[key]
		if !ok {
			i = len(models)
			index[key] = i
			models = append(models, catalog.Model{
				Key:  key,
				Repo: label,
				Path: c.Schema + "." + c.Table,
			})
		}
		models[i].Columns = append(models[i].Columns, catalog.Column{
			Name: strings.ToLower(c.Name),
			Type: strings.ToLower(c.Type),
		})
	}

	return catalog.NewInventory(label, models), nil
}

// splitSchema maps a warehouse schema onto layer and domain. Schemas
// follow the <layer>_<domain> convention; one without an underscore
// keeps the whole name as layer with domain "default".
func splitSchema(schema string) (layer, domain string) {
	s := strings.ToLower(schema)
	if i := strings.Index(s, "_"); i > 0 && i < len(s)-1 {
		return s[:i], s[i+1:]
	}
	return s, "default"
}
