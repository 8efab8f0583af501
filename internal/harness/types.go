package harness

import (
	"fmt"
	"strings"
)

// Verdict is the outcome of one check.
type Verdict struct {
	Index    int      `json:"index"`
	Check    string   `json:"check"`
	Operands []string `json:"operands"`
	Expected bool     `json:"expected"`
	Got      bool     `json:"got"`
	Pass     bool     `json:"pass"`

	// HashA and HashB are the operands' hashes. For stable_hash they are
	// the first and the repeated hash of the single operand. They depend on
	// the engine salt.
	HashA int32 `json:"hash_a"`
	HashB int32 `json:"hash_b"`

	// Detail explains a failed verdict.
	Detail string `json:"detail,omitempty"`
}

// String formats v for reports, e.g. "substitutable(p, q) = true, want true".
func (v Verdict) String() string {
	s := fmt.Sprintf("%s(%s) = %t, want %t", v.Check, strings.Join(v.Operands, ", "), v.Got, v.Expected)
	if v.Detail != "" {
		s += ": " + v.Detail
	}
	return s
}

// Result is the outcome of a scenario run.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass is true when every verdict passed.
	Pass bool `json:"pass"`

	// SchemaHash identifies the compiled schema.
	SchemaHash string `json:"schema_hash"`

	// Salt is the salt of the engine the scenario ran against.
	Salt int32 `json:"salt"`

	// Verdicts holds one entry per check, in order.
	Verdicts []Verdict `json:"verdicts"`

	// Errors describes the failed verdicts. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Verdicts: []Verdict{},
		Errors:   []string{},
	}
}

// AddVerdict records v and fails the result if v failed.
func (r *Result) AddVerdict(v Verdict) {
	r.Verdicts = append(r.Verdicts, v)
	if !v.Pass {
		r.AddError(fmt.Sprintf("checks[%d]: %s", v.Index, v))
	}
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
