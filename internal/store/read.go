package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// ReadRuns returns recorded runs ordered by seq. A non-empty scenario
// restricts the result to runs of that scenario.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ReadRuns(ctx context.Context, scenario string) ([]Run, error) {
	query := `
		SELECT id, seq, scenario, schema_hash, salt, pass, tool_version, ir_version
		FROM runs
	`
	var args []any
	if scenario != "" {
		query += " WHERE scenario = ?"
		args = append(args, scenario)
	}
	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, scenario, schema_hash, salt, pass, tool_version, ir_version
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ReadVerdicts returns the verdicts of a run ordered by index.
//
// Returns an empty slice (not nil) if the run has no verdicts.
func (s *Store) ReadVerdicts(ctx context.Context, runID string) ([]Verdict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, idx, check_type, operands, expected, got, pass, hash_a, hash_b, detail
		FROM verdicts
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := []Verdict{}
	for rows.Next() {
		var (
			v                   Verdict
			operands            string
			expected, got, pass int
		)
		if err := rows.Scan(&v.RunID, &v.Index, &v.Check, &operands, &expected, &got, &pass, &v.HashA, &v.HashB, &v.Detail); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		if v.Operands, err = unmarshalOperands(operands); err != nil {
			return nil, err
		}
		v.Expected, v.Got, v.Pass = expected == 1, got == 1, pass == 1
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return verdicts, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run  Run
		pass int
	)
	err := row.Scan(&run.ID, &run.Seq, &run.Scenario, &run.SchemaHash, &run.Salt, &pass, &run.ToolVersion, &run.IRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Pass = pass == 1
	return run, nil
}
