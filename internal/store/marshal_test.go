package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalOperands(t *testing.T) {
	tests := []struct {
		name     string
		operands []string
		want     string
	}{
		{"empty", []string{}, "[]"},
		{"pair", []string{"a", "b"}, `["a","b"]`},
		{"quote", []string{`x"y`}, `["x\"y"]`},
		{"nfc", []string{"é"}, `["é"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalOperands(tt.operands)
			if err != nil {
				t.Fatalf("marshalOperands() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalOperands() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalOperands(t *testing.T) {
	got, err := unmarshalOperands(`["a","b"]`)
	if err != nil {
		t.Fatalf("unmarshalOperands() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	empty, err := unmarshalOperands("")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("unmarshalOperands(\"\") = %#v, %v; want empty slice", empty, err)
	}

	if _, err := unmarshalOperands("{"); err == nil {
		t.Error("unmarshalOperands() with invalid JSON should fail")
	}
}
