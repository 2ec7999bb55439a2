package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelparity/modelparity/pkg/diff"
)

// Run is one persisted comparison.
type Run struct {
	ID         string        `json:"id"`
	LeftLabel  string        `json:"left_label"`
	RightLabel string        `json:"right_label"`
	Strategy   string        `json:"strategy"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`

	// Summary counters, duplicated out of the report so listings never
	// decode the full payload.
	Matched   int `json:"matched"`
	Identical int `json:"identical"`
	Similar   int `json:"similar"`
	Divergent int `json:"divergent"`
	LeftOnly  int `json:"left_only"`
	RightOnly int `json:"right_only"`

	// Report is populated by GetRun only.
	Report *diff.Report `json:"report,omitempty"`
}

// SaveRun persists a comparison report and returns the stored run.
func (s *SQLiteStore) SaveRun(report *diff.Report, startedAt time.Time, duration time.Duration) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	run := &Run{
		ID:         generateID(),
		LeftLabel:  report.LeftLabel,
		RightLabel: report.RightLabel,
		Strategy:   report.Strategy,
		StartedAt:  startedAt.UTC(),
		Duration:   duration,
		Matched:    report.Summary.MatchedCount,
		Identical:  report.Summary.IdenticalCount,
		Similar:    report.Summary.SimilarCount,
		Divergent:  report.Summary.DivergentCount,
		LeftOnly:   report.Summary.LeftOnlyCount,
		RightOnly:  report.Summary.RightOnlyCount,
	}

	_, err = s.db.Exec(
		`INSERT INTO comparison_runs
		     (id, left_label, right_label, strategy, started_at, duration_ms,
		      matched, identical, similar, divergent, left_only, right_only, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.LeftLabel, run.RightLabel, run.Strategy,
		run.StartedAt, run.Duration.Milliseconds(),
		run.Matched, run.Identical, run.Similar, run.Divergent,
		run.LeftOnly, run.RightOnly, string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	return run, nil
}

// GetRun retrieves a run by ID, report included.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	var durationMS int64
	var payload string

	err := s.db.QueryRow(
		`SELECT id, left_label, right_label, strategy, started_at, duration_ms,
		        matched, identical, similar, divergent, left_only, right_only, report
		 FROM comparison_runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.LeftLabel, &run.RightLabel, &run.Strategy,
		&run.StartedAt, &durationMS,
		&run.Matched, &run.Identical, &run.Similar, &run.Divergent,
		&run.LeftOnly, &run.RightOnly, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Report = &diff.Report{}
	if err := json.Unmarshal([]byte(payload), run.Report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	return run, nil
}

// ListRuns retrieves recent runs, newest first, without report payloads.
// A limit below 1 defaults to 20.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, left_label, right_label, strategy, started_at, duration_ms,
		        matched, identical, similar, divergent, left_only, right_only
		 FROM comparison_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.LeftLabel, &run.RightLabel, &run.Strategy,
			&run.StartedAt, &durationMS,
			&run.Matched, &run.Identical, &run.Similar, &run.Divergent,
			&run.LeftOnly, &run.RightOnly); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
