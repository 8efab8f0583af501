package store

import (
	"github.com/roach88/valsem/internal/harness"
	"github.com/roach88/valsem/internal/ir"
)

// Run is one recorded scenario run.
type Run struct {
	ID          string
	Seq         int64
	Scenario    string
	SchemaHash  string
	Salt        int32
	Pass        bool
	ToolVersion string
	IRVersion   string
}

// Verdict is one recorded check of a run.
type Verdict struct {
	RunID    string
	Index    int
	Check    string
	Operands []string
	Expected bool
	Got      bool
	Pass     bool
	HashA    int32
	HashB    int32
	Detail   string
}

// NewRun converts a harness result into journal records. ID and Seq are
// assigned by WriteRun.
func NewRun(result *harness.Result) (Run, []Verdict) {
	run := Run{
		Scenario:    result.Scenario,
		SchemaHash:  result.SchemaHash,
		Salt:        result.Salt,
		Pass:        result.Pass,
		ToolVersion: ir.ToolVersion,
		IRVersion:   ir.IRVersion,
	}
	verdicts := make([]Verdict, len(result.Verdicts))
	for i, v := range result.Verdicts {
		verdicts[i] = Verdict{
			Index:    v.Index,
			Check:    v.Check,
			Operands: v.Operands,
			Expected: v.Expected,
			Got:      v.Got,
			Pass:     v.Pass,
			HashA:    v.HashA,
			HashB:    v.HashB,
			Detail:   v.Detail,
		}
	}
	return run, verdicts
}
