package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// WriteRun inserts a run and its verdicts in one transaction and returns the
// run with its ID and Seq filled in. An empty run.ID gets a random UUID. Seq
// is one past the highest recorded seq.
//
// The verdicts' RunID fields are ignored; they belong to the returned run.
func (s *Store) WriteRun(ctx context.Context, run Run, verdicts []Verdict) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, scenario, schema_hash, salt, pass, tool_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Scenario,
		run.SchemaHash,
		run.Salt,
		boolInt(run.Pass),
		run.ToolVersion,
		run.IRVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	for _, v := range verdicts {
		operands, err := marshalOperands(v.Operands)
		if err != nil {
			return Run{}, fmt.Errorf("write verdict %d: %w", v.Index, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO verdicts
			(run_id, idx, check_type, operands, expected, got, pass, hash_a, hash_b, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			v.Index,
			v.Check,
			operands,
			boolInt(v.Expected),
			boolInt(v.Got),
			boolInt(v.Pass),
			v.HashA,
			v.HashB,
			v.Detail,
		)
		if err != nil {
			return Run{}, fmt.Errorf("write verdict %d: %w", v.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}
