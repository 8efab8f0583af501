package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/valsem/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB       string // run journal path
	Scenario string // only runs of this scenario
	Run      string // show the verdicts of this run
}

// HistoryResult lists recorded runs, or one run with its verdicts.
type HistoryResult struct {
	Runs     []RunSummary     `json:"runs"`
	Verdicts []VerdictSummary `json:"verdicts,omitempty"`
}

// RunSummary is one recorded run.
type RunSummary struct {
	ID         string `json:"id"`
	Seq        int64  `json:"seq"`
	Scenario   string `json:"scenario"`
	Pass       bool   `json:"pass"`
	Salt       int32  `json:"salt"`
	SchemaHash string `json:"schema_hash"`
}

// VerdictSummary is one recorded verdict.
type VerdictSummary struct {
	Index    int      `json:"index"`
	Check    string   `json:"check"`
	Operands []string `json:"operands"`
	Expected bool     `json:"expected"`
	Got      bool     `json:"got"`
	Pass     bool     `json:"pass"`
	HashA    int32    `json:"hash_a"`
	HashB    int32    `json:"hash_b"`
	Detail   string   `json:"detail,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history --db <path>",
		Short: "List recorded runs",
		Long: `List the runs recorded by "valsem check --db" in seq order.

Each run records the salt it ran with, so its hash values can be
reproduced with "valsem check --salt". Use --run to show one run's
verdicts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "run journal path (required)")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only runs of this scenario")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the verdicts of this run ID")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return outputCommandError(formatter, ErrCodeJournal, fmt.Sprintf("journal not found: %s", opts.DB), nil)
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return outputCommandError(formatter, ErrCodeJournal, err.Error(), nil)
	}
	defer st.Close()

	var result HistoryResult
	if opts.Run != "" {
		run, err := st.ReadRun(ctx, opts.Run)
		if err != nil {
			return outputCommandError(formatter, ErrCodeJournal, err.Error(), nil)
		}
		verdicts, err := st.ReadVerdicts(ctx, run.ID)
		if err != nil {
			return outputCommandError(formatter, ErrCodeJournal, err.Error(), nil)
		}
		result.Runs = []RunSummary{summarizeRun(run)}
		result.Verdicts = make([]VerdictSummary, len(verdicts))
		for i, v := range verdicts {
			result.Verdicts[i] = VerdictSummary{
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
	} else {
		runs, err := st.ReadRuns(ctx, opts.Scenario)
		if err != nil {
			return outputCommandError(formatter, ErrCodeJournal, err.Error(), nil)
		}
		result.Runs = make([]RunSummary, len(runs))
		for i, run := range runs {
			result.Runs[i] = summarizeRun(run)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	outputHistoryText(formatter.Writer, result)
	return nil
}

func summarizeRun(run store.Run) RunSummary {
	return RunSummary{
		ID:         run.ID,
		Seq:        run.Seq,
		Scenario:   run.Scenario,
		Pass:       run.Pass,
		Salt:       run.Salt,
		SchemaHash: run.SchemaHash,
	}
}

func outputHistoryText(w io.Writer, result HistoryResult) {
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range result.Runs {
		mark := "✓"
		if !r.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s #%d %s %s salt=%d schema=%.12s\n", mark, r.Seq, r.ID, r.Scenario, r.Salt, r.SchemaHash)
	}
	for _, v := range result.Verdicts {
		mark := "✓"
		if !v.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s [%d] %s%v = %t, want %t (hashes %d, %d)\n", mark, v.Index, v.Check, v.Operands, v.Got, v.Expected, v.HashA, v.HashB)
		if v.Detail != "" {
			fmt.Fprintf(w, "      %s\n", v.Detail)
		}
	}
}
