package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/valsem/internal/engine"
	"github.com/roach88/valsem/internal/harness"
	"github.com/roach88/valsem/internal/shape"
)

func runHashCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHashCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// wantHash hashes a scenario instance on a fresh engine with the given salt.
func wantHash(t *testing.T, file, instance string, salt int32) int32 {
	t.Helper()
	scenario, err := harness.LoadScenario(file)
	require.NoError(t, err)
	e := engine.New(
		engine.WithSalt(salt),
		engine.WithIntrospector(shape.NewReflect(shape.NewRegistry())),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	h, err := harness.Build(scenario, e)
	require.NoError(t, err)
	hash, err := h.Hash(instance)
	require.NoError(t, err)
	return hash
}

func TestHash_Text(t *testing.T) {
	file := filepath.Join(scenariosDir, "point_equality.yaml")

	output, err := runHashCommand(t, "text", file, "p1", "--salt", "17")
	require.NoError(t, err)

	want := wantHash(t, file, "p1", 17)
	assert.Equal(t, fmt.Sprintf("point_equality.p1: %d (salt 17)\n", want), output)
}

func TestHash_EqualInstancesAgree(t *testing.T) {
	file := filepath.Join(scenariosDir, "point_equality.yaml")

	p1, err := runHashCommand(t, "json", file, "p1", "--salt", "-3")
	require.NoError(t, err)
	p2, err := runHashCommand(t, "json", file, "p2", "--salt", "-3")
	require.NoError(t, err)

	var r1, r2 struct {
		Status string     `json:"status"`
		Data   HashResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(p1), &r1))
	require.NoError(t, json.Unmarshal([]byte(p2), &r2))
	assert.Equal(t, "ok", r1.Status)
	assert.Equal(t, r1.Data.Hash, r2.Data.Hash)
	assert.Equal(t, int32(-3), r1.Data.Salt)
	assert.Equal(t, "p2", r2.Data.Instance)
	assert.Len(t, r1.Data.SchemaHash, 64)
}

func TestHash_Errors(t *testing.T) {
	file := filepath.Join(scenariosDir, "point_equality.yaml")
	tests := []struct {
		name string
		args []string
		code string
		want string
	}{
		{"unknown instance", []string{file, "nobody", "--salt", "1"}, ErrCodeScenario, `unknown instance "nobody"`},
		{"missing scenario", []string{filepath.Join(t.TempDir(), "x.yaml"), "p1", "--salt", "1"}, ErrCodeScenario, "failed to read scenario file"},
		{"invalid salt", []string{file, "p1", "--salt", "0xZZ"}, ErrCodeSalt, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runHashCommand(t, "text", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)
			assert.Contains(t, output, "Error ["+tt.code+"]")
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}
