package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// BaseSQLAdapter provides common database/sql functionality for
// adapters. Embed it in concrete implementations to get standard
// Close and column-listing plumbing.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// selectColumns runs a driver-specific information_schema query and
// scans the standard six-column row shape.
func (b *BaseSQLAdapter) selectColumns(ctx context.Context, query string, args ...any) ([]TableColumn, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query column listing: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []TableColumn
	for rows.Next() {
		var c TableColumn
		var nullable string
		if err := rows.Scan(&c.Schema, &c.Table, &c.Name, &c.Type, &nullable, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column listing: %w", err)
		}
		c.Nullable = nullable == "YES"
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column listing: %w", err)
	}

	return cols, nil
}
