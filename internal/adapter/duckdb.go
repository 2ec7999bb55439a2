package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Adapter { return NewDuckDB(logger) })
}

// DuckDBAdapter lists columns from a DuckDB information_schema.
type DuckDBAdapter struct {
	BaseSQLAdapter
}

// NewDuckDB creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func NewDuckDB(logger *slog.Logger) *DuckDBAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDBAdapter{
		BaseSQLAdapter: BaseSQLAdapter{Logger: logger},
	}
}

// Name returns the registered driver name.
func (a *DuckDBAdapter) Name() string {
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.DSN
	}
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Columns lists every user-table column in the connected database.
func (a *DuckDBAdapter) Columns(ctx context.Context, database string) ([]TableColumn, error) {
	query := `
		SELECT table_schema, table_name, column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY table_schema, table_name, ordinal_position
	`
	if database != "" {
		query = `
		SELECT table_schema, table_name, column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_catalog = ? AND table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY table_schema, table_name, ordinal_position
	`
		return a.selectColumns(ctx, query, database)
	}
	return a.selectColumns(ctx, query)
}

// Ensure DuckDBAdapter implements the Adapter interface
var _ Adapter = (*DuckDBAdapter)(nil)
