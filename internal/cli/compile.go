package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/valsem/internal/compiler"
	"github.com/roach88/valsem/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled schema and its identity.
type CompilationResult struct {
	SchemaHash string        `json:"schema_hash"`
	FileCount  int           `json:"file_count"`
	Types      []TypeSummary `json:"types"`
}

// TypeSummary describes one compiled declaration.
type TypeSummary struct {
	Name    string      `json:"name"`
	Kind    ir.DeclKind `json:"kind"`
	Extends string      `json:"extends,omitempty"`
	Fields  int         `json:"fields"` // including inherited fields
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE type declarations to canonical IR",
		Long: `Compile CUE composite type declarations to canonical IR.

The compiler loads the CUE package in the directory, checks every
declaration (names, field types, kinds, extends) and rejects types that
nest themselves by value. With --output, the canonical JSON IR is written
to a file; its SHA-256 is the schema hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := compiler.LoadDir(specsDir)
	if err != nil {
		code, message := parseCompileError(err)
		return outputCommandError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)
	for _, decl := range loaded.Schema.Types {
		formatter.VerboseLog("Compiling type: %s", decl.Name)
	}

	if errs := compiler.Check(loaded.Schema); len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	canonical, err := ir.MarshalCanonical(loaded.Schema.Value())
	if err != nil {
		return outputCommandError(formatter, compiler.ErrCodeGeneric, fmt.Sprintf("canonical IR: %v", err), nil)
	}
	schemaHash, err := ir.SchemaHash(loaded.Schema)
	if err != nil {
		return outputCommandError(formatter, compiler.ErrCodeGeneric, fmt.Sprintf("schema hash: %v", err), nil)
	}

	result := &CompilationResult{
		SchemaHash: schemaHash,
		FileCount:  loaded.FileCount,
		Types:      summarize(loaded.Schema),
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, canonical, 0644); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// summarize lists the declarations in declaration order.
func summarize(s *ir.Schema) []TypeSummary {
	types := make([]TypeSummary, len(s.Types))
	for i, decl := range s.Types {
		types[i] = TypeSummary{
			Name:    decl.Name,
			Kind:    decl.Kind,
			Extends: decl.Extends,
			Fields:  len(s.AllFields(decl.Name)),
		}
	}
	return types
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d type(s) from %d file(s)\n\n", len(result.Types), result.FileCount)

	if len(result.Types) > 0 {
		fmt.Fprintln(formatter.Writer, "Types:")
		for _, t := range result.Types {
			extends := ""
			if t.Extends != "" {
				extends = " extends " + t.Extends
			}
			fmt.Fprintf(formatter.Writer, "  %s (%s)%s: %d field(s)\n", t.Name, t.Kind, extends, t.Fields)
		}
		fmt.Fprintln(formatter.Writer)
	}

	fmt.Fprintf(formatter.Writer, "Schema hash: %s\n", result.SchemaHash)
	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical IR to %s\n", outputFile)
	}

	return nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", code, message)
	}
	fmt.Fprintln(formatter.Writer)

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var validationErr compiler.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message)
	}
	var cycleErr *compiler.CycleError
	if errors.As(err, &cycleErr) {
		return cycleErr.Code, cycleErr.Message
	}
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}
