package storage

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Runs returns every recorded run, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := sq.Select("run_id", "command", "started_at").
		From("runs").
		OrderBy("rowid").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Command, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start time of run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// CountEntries returns the number of entries written under runID.
func (s *Store) CountEntries(runID string) (int, error) {
	return s.count("entries", sq.Eq{"run_id": runID})
}

// ValidStepCount returns the number of valid steps written under runID.
func (s *Store) ValidStepCount(runID string) (int, error) {
	return s.count("steps", sq.Eq{"run_id": runID, "is_valid": 1})
}

// PremiseCount returns the number of premises of the given scope
// ("current_file" or "outside_file") written under runID.
func (s *Store) PremiseCount(runID, scope string) (int, error) {
	return s.count("premises", sq.Eq{"run_id": runID, "scope": scope})
}

// KindCounts returns the number of entries per kind written under runID.
func (s *Store) KindCounts(runID string) (map[string]int, error) {
	rows, err := sq.Select("kind", "COUNT(*)").
		From("entries").
		Where(sq.Eq{"run_id": runID}).
		GroupBy("kind").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query kinds: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan kind count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// ReferencedBy returns the units whose steps reference name in refUnit
// under runID, sorted.
func (s *Store) ReferencedBy(runID, refUnit, refName string) ([]string, error) {
	rows, err := sq.Select("unit").
		Distinct().
		From("premises").
		Where(sq.Eq{"run_id": runID, "ref_unit": refUnit, "ref_name": refName}).
		OrderBy("unit").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query references: %w", err)
	}
	defer rows.Close()

	var units []string
	for rows.Next() {
		var unit string
		if err := rows.Scan(&unit); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (s *Store) count(table string, where sq.Eq) (int, error) {
	var n int
	err := sq.Select("COUNT(*)").
		From(table).
		Where(where).
		RunWith(s.db).
		QueryRow().
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
