package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/valsem/internal/compiler"
	"github.com/roach88/valsem/internal/ir"
)

var geometryDir = filepath.Join("..", "..", "testdata", "specs", "geometry")

func writeSpec(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.cue"), []byte(src), 0644))
	return dir
}

func TestCompileValidSpecs(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{geometryDir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled 5 type(s) from 2 file(s)")
	assert.Contains(t, output, "Point3 (value) extends Point: 3 field(s)")
	assert.Contains(t, output, "Buffer (reference): 1 field(s)")
	assert.Contains(t, output, "Schema hash: ")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{geometryDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.FileCount)
	assert.Len(t, resp.Data.Types, 5)
	assert.Len(t, resp.Data.SchemaHash, 64)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "schema.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{geometryDir, "--output", outputFile})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wrote canonical IR to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	loaded, err := compiler.LoadDir(geometryDir)
	require.NoError(t, err)
	want, err := ir.MarshalCanonical(loaded.Schema.Value())
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))

	hash, err := ir.SchemaHash(loaded.Schema)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Schema hash: "+hash)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), compiler.ErrCodeNotFound)
	assert.Contains(t, buf.String(), "not found")
}

func TestCompileEmptyDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), compiler.ErrCodeNoFiles)
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestCompileInvalidSpec(t *testing.T) {
	dir := writeSpec(t, `
package bad

types: {
	Handle: {
		kind: "reference"
		fields: [{name: "id", type: "int"}]
	}
	Holder: fields: [{name: "h", type: "Handle"}]
	Shape: fields: [{name: "next", type: "Nowhere"}]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed with 2 error(s)")
	assert.Contains(t, buf.String(), "✗ Compilation failed")
	assert.Contains(t, buf.String(), compiler.ErrReferenceByValue)
	assert.Contains(t, buf.String(), compiler.ErrUnknownType)
}

func TestCompileCircularSpecJSON(t *testing.T) {
	dir := writeSpec(t, `
package bad

types: {
	A: fields: [{name: "b", type: "B"}]
	B: fields: [{name: "a", type: "[1]A"}]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrCircularComposite, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "CIRCULAR_COMPOSITION")
}

func TestCompileVerboseOutput(t *testing.T) {
	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf)
	cmd.SetArgs([]string{geometryDir})

	err := cmd.Execute()
	require.NoError(t, err)

	verboseOutput := stderrBuf.String()
	assert.Contains(t, verboseOutput, "Found 2 CUE file(s)")
	assert.Contains(t, verboseOutput, "Compiling type: Segment")
	assert.NotContains(t, stdoutBuf.String(), "Compiling type")
}
