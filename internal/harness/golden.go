package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/valsem/internal/engine"
	"github.com/roach88/valsem/internal/ir"
)

// Snapshot is the salt-independent part of a result: verdicts without hash
// values or details, which change with the engine salt.
type Snapshot struct {
	Scenario string
	Pass     bool
	Verdicts []Verdict
}

// Value returns the canonical value of the snapshot.
func (s *Snapshot) Value() ir.Value {
	verdicts := make(ir.Array, len(s.Verdicts))
	for i, v := range s.Verdicts {
		operands := make(ir.Array, len(v.Operands))
		for j, op := range v.Operands {
			operands[j] = ir.String(op)
		}
		verdicts[i] = ir.Object{
			"check":    ir.String(v.Check),
			"operands": operands,
			"expected": ir.Bool(v.Expected),
			"got":      ir.Bool(v.Got),
			"pass":     ir.Bool(v.Pass),
		}
	}
	return ir.Object{
		"scenario": ir.String(s.Scenario),
		"pass":     ir.Bool(s.Pass),
		"verdicts": verdicts,
	}
}

// SnapshotOf takes the snapshot of result.
func SnapshotOf(result *Result) *Snapshot {
	return &Snapshot{
		Scenario: result.Scenario,
		Pass:     result.Pass,
		Verdicts: result.Verdicts,
	}
}

// RunWithGolden runs a scenario against e and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not be run. A snapshot mismatch
// fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario, e *engine.Engine) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, e)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the snapshot of an existing result with the golden
// file named name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(SnapshotOf(result).Value())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
