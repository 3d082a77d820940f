package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmorrow/greenbook/internal/engine"
	"github.com/tmorrow/greenbook/internal/harness"
	"github.com/tmorrow/greenbook/internal/ledger"
	"github.com/tmorrow/greenbook/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Book a scenario through the engine",
		Long: `Book a scenario's instrument events through the engine in order.

Each step is dispatched to its booking adapter, executed, and checked
against the step's expected outcome. With --db, every applied
transaction is journaled; replaying a scenario against an existing
journal is safe - duplicate keys are no-ops.

Example:
  greenbook run ./scenarios/equity.yaml
  greenbook run --db ./book.db ./scenarios/equity.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (optional)")

	return cmd
}

// runSummary is the run command's output payload.
type runSummary struct {
	Scenario string               `json:"scenario"`
	Steps    []harness.StepResult `json:"steps"`
	Balances []engine.Balance     `json:"balances"`
	Applied  int                  `json:"applied"`
}

func runScenario(opts *RunOptions, scenarioPath string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	scenario, err := harness.LoadScenario(scenarioPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	slog.Info("scenario loaded", "name", scenario.Name, "steps", len(scenario.Steps))

	var runOpts []harness.RunOption
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()

		ctx := cmd.Context()
		runOpts = append(runOpts, harness.WithObserver(func(tx ledger.Transaction, outcome engine.Outcome) error {
			applied, ok := outcome.(engine.Applied)
			if !ok {
				return nil
			}
			inserted, err := st.WriteApplied(ctx, tx, applied.Deltas)
			if err != nil {
				return fmt.Errorf("journal %s: %w", tx.Key(), err)
			}
			if !inserted {
				slog.Debug("key already journaled", "key", tx.Key())
			}
			return nil
		}))
	}

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		_ = out.Failure(err.Error())
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	if failures := result.CheckAssertions(); len(failures) > 0 {
		for _, failure := range failures {
			slog.Error("assertion failed", "error", failure)
			_ = out.Failure(failure.Error())
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(failures)), nil)
	}

	summary := runSummary{
		Scenario: scenario.Name,
		Steps:    result.Steps,
		Balances: result.Engine.Snapshot(),
		Applied:  result.Engine.AppliedCount(),
	}
	return out.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "Scenario %s: %d step(s), %d applied\n", summary.Scenario, len(summary.Steps), summary.Applied)
		for _, step := range summary.Steps {
			if step.Code != "" {
				fmt.Fprintf(w, "  %-12s %s (%s)\n", step.Key, step.Status, step.Code)
				continue
			}
			fmt.Fprintf(w, "  %-12s %s\n", step.Key, step.Status)
		}
		writeBalances(w, summary.Balances)
	})
}

func writeBalances(w io.Writer, balances []engine.Balance) {
	if len(balances) == 0 {
		fmt.Fprintln(w, "No non-zero balances.")
		return
	}
	fmt.Fprintln(w, "Balances:")
	for _, b := range balances {
		fmt.Fprintf(w, "  %-24s %-16s %s\n", b.Account, b.Unit, b.Amount)
	}
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
