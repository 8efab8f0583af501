package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(scenario string, pass bool) Run {
	return Run{
		Scenario:    scenario,
		SchemaHash:  "schema-hash",
		Salt:        -7,
		Pass:        pass,
		ToolVersion: "0.1.0",
		IRVersion:   "1",
	}
}

// createTestVerdict creates a passing substitutable verdict.
func createTestVerdict(index int, a, b string) Verdict {
	return Verdict{
		Index:    index,
		Check:    "substitutable",
		Operands: []string{a, b},
		Expected: true,
		Got:      true,
		Pass:     true,
		HashA:    -42,
		HashB:    -42,
	}
}
