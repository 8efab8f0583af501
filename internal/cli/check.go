package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/valsem/internal/engine"
	"github.com/roach88/valsem/internal/harness"
	"github.com/roach88/valsem/internal/shape"
	"github.com/roach88/valsem/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Parallel int    // scenarios run at once
	DB       string // run journal path (optional)
	Salt     string // salt override (optional)
}

// ScenarioResult holds the result of a single scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Checks int      `json:"checks"`
	RunID  string   `json:"run_id,omitempty"`
	Errors []string `json:"errors,omitempty"`

	result *harness.Result
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
	Salt      int32            `json:"salt"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>...",
		Short: "Run conformance scenarios",
		Long: `Run scenario files against one shared engine.

Each scenario compiles its schema, builds its instances and evaluates its
checks. Scenarios run concurrently and share the engine's function cache.
Directories are searched for .yaml and .yml files.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed or could not run
  2 - Command error (invalid salt, journal not writable, etc.)

Examples:
  valsem check testdata/scenarios
  valsem check a.yaml b.yaml --parallel 1 --salt 0x2a
  valsem check testdata/scenarios --db runs.db --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", runtime.GOMAXPROCS(0), "scenarios to run at once")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record runs in this SQLite journal")
	cmd.Flags().StringVar(&opts.Salt, "salt", "", "hash salt (default: $"+engine.SaltEnv+" or the clock)")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	e, err := newEngine(opts.RootOptions, opts.Salt)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSalt, err.Error(), nil)
	}

	files, err := findScenarioFiles(args)
	if err != nil {
		return outputCommandError(formatter, ErrCodeScenario, err.Error(), nil)
	}
	formatter.VerboseLog("Checking %d scenario(s) with salt %d", len(files), e.Salt())

	results := make([]ScenarioResult, len(files))
	g, _ := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i, file := range files {
		g.Go(func() error {
			results[i] = checkScenario(file, e, opts.logger())
			return nil
		})
	}
	_ = g.Wait()

	if opts.DB != "" {
		if err := journal(ctx, opts.DB, results); err != nil {
			return outputCommandError(formatter, ErrCodeJournal, err.Error(), nil)
		}
	}

	summary := CheckResult{
		Scenarios: results,
		Total:     len(results),
		Salt:      e.Salt(),
	}
	for _, r := range results {
		if r.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(summary); err != nil {
			return err
		}
	} else {
		outputCheckText(formatter.Writer, summary)
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", summary.Failed, summary.Total))
	}
	return nil
}

// newEngine creates the engine shared by a command's scenarios. An empty
// salt falls back to the environment, then the clock.
func newEngine(opts *RootOptions, salt string) (*engine.Engine, error) {
	engineOpts := []engine.Option{
		engine.WithIntrospector(shape.NewReflect(shape.NewRegistry())),
		engine.WithLogger(opts.logger()),
	}
	switch {
	case salt != "":
		s, err := engine.ParseSalt(salt)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, engine.WithSalt(s))
	default:
		s, ok, err := engine.SaltFromEnv()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", engine.SaltEnv, err)
		}
		if ok {
			engineOpts = append(engineOpts, engine.WithSalt(s))
		}
	}
	return engine.New(engineOpts...), nil
}

// checkScenario loads and runs one scenario file. Load and build failures
// fail the scenario; they do not stop the others.
func checkScenario(file string, e *engine.Engine, logger *slog.Logger) ScenarioResult {
	res := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return res
	}
	res.Name = scenario.Name
	res.Checks = len(scenario.Checks)

	result, err := harness.Run(scenario, e, harness.WithLogger(logger))
	if err != nil {
		res.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return res
	}
	res.Pass = result.Pass
	res.Errors = result.Errors
	res.result = result
	return res
}

// journal records the scenarios that ran, in argument order.
func journal(ctx context.Context, path string, results []ScenarioResult) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer st.Close()

	for i := range results {
		if results[i].result == nil {
			continue
		}
		run, verdicts := store.NewRun(results[i].result)
		run, err := st.WriteRun(ctx, run, verdicts)
		if err != nil {
			return fmt.Errorf("recording %s: %w", results[i].Name, err)
		}
		results[i].RunID = run.ID
	}
	return nil
}

// findScenarioFiles expands directories into the YAML files they hold.
func findScenarioFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("scenario path not found: %s", arg)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
	}
	return files, nil
}

func outputCheckText(w io.Writer, summary CheckResult) {
	for _, r := range summary.Scenarios {
		if r.Pass {
			fmt.Fprintf(w, "✓ %s (%d check(s))\n", r.Name, r.Checks)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total (salt %d)\n", summary.Passed, summary.Failed, summary.Total, summary.Salt)
}
