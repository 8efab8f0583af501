package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWriteRun_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.WriteRun(ctx, createTestRun("points", true), []Verdict{
		createTestVerdict(0, "a", "b"),
		createTestVerdict(1, "b", "c"),
	})
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", run.ID, err)
	}
	if run.Seq != 1 {
		t.Errorf("seq = %d, want 1", run.Seq)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM verdicts WHERE run_id = ?", run.ID).Scan(&count); err != nil {
		t.Fatalf("count verdicts: %v", err)
	}
	if count != 2 {
		t.Errorf("verdicts = %d, want 2", count)
	}

	var operands string
	if err := s.db.QueryRow("SELECT operands FROM verdicts WHERE run_id = ? AND idx = 1", run.ID).Scan(&operands); err != nil {
		t.Fatalf("query operands: %v", err)
	}
	if operands != `["b","c"]` {
		t.Errorf("operands = %s, want canonical JSON array", operands)
	}
}

func TestWriteRun_KeepsExplicitID(t *testing.T) {
	s := createTestStore(t)

	in := createTestRun("points", true)
	in.ID = "run-fixed"
	run, err := s.WriteRun(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	if run.ID != "run-fixed" {
		t.Errorf("id = %q, want run-fixed", run.ID)
	}
}

func TestWriteRun_SeqIsMonotonic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		run, err := s.WriteRun(ctx, createTestRun("points", true), nil)
		if err != nil {
			t.Fatalf("WriteRun() failed: %v", err)
		}
		if run.Seq != want {
			t.Errorf("seq = %d, want %d", run.Seq, want)
		}
	}
}

func TestWriteRun_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := createTestRun("points", true)
	in.ID = "dup"
	if _, err := s.WriteRun(ctx, in, []Verdict{createTestVerdict(0, "a", "b")}); err != nil {
		t.Fatalf("first WriteRun() failed: %v", err)
	}
	if _, err := s.WriteRun(ctx, in, []Verdict{createTestVerdict(5, "x", "y")}); err == nil {
		t.Fatal("second WriteRun() with duplicate ID should fail")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM verdicts").Scan(&count); err != nil {
		t.Fatalf("count verdicts: %v", err)
	}
	if count != 1 {
		t.Errorf("verdicts = %d, want 1 (failed write rolled back)", count)
	}
}

func TestWriteRun_DuplicateVerdictIndex(t *testing.T) {
	s := createTestStore(t)

	_, err := s.WriteRun(context.Background(), createTestRun("points", true), []Verdict{
		createTestVerdict(0, "a", "b"),
		createTestVerdict(0, "a", "c"),
	})
	if err == nil {
		t.Fatal("WriteRun() with duplicate verdict index should fail")
	}

	runs, err := s.ReadRuns(context.Background(), "")
	if err != nil {
		t.Fatalf("ReadRuns() failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %d, want 0 after rollback", len(runs))
	}
}
