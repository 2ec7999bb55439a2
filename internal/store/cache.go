package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// GetModel retrieves the cached record for key when its fingerprint
// still matches. A stale or missing entry is a miss, not an error.
func (s *SQLiteStore) GetModel(key, fingerprint string) (catalog.Model, bool, error) {
	if s.db == nil {
		return catalog.Model{}, false, fmt.Errorf("database not opened")
	}

	var record string
	err := s.db.QueryRow(
		`SELECT record FROM model_cache WHERE key = ? AND fingerprint = ?`,
		key, fingerprint,
	).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Model{}, false, nil
	}
	if err != nil {
		return catalog.Model{}, false, fmt.Errorf("failed to read cached model: %w", err)
	}

	var m catalog.Model
	if err := json.Unmarshal([]byte(record), &m); err != nil {
		return catalog.Model{}, false, fmt.Errorf("failed to decode cached model: %w", err)
	}
	return m, true, nil
}

// PutModel stores a record under its key, replacing any prior fingerprint.
func (s *SQLiteStore) PutModel(m catalog.Model) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	record, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO model_cache (key, fingerprint, record, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		     fingerprint = excluded.fingerprint,
		     record = excluded.record,
		     updated_at = excluded.updated_at`,
		m.Key, m.Fingerprint, string(record), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store model: %w", err)
	}
	return nil
}

// CacheSize returns the number of cached records.
func (s *SQLiteStore) CacheSize() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM model_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached models: %w", err)
	}
	return n, nil
}
