package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tmorrow/greenbook/internal/engine"
	"github.com/tmorrow/greenbook/internal/ledger"
	"github.com/tmorrow/greenbook/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal and verify its invariants",
		Long: `Replay every journaled transaction in append order and verify the
journal's invariants: each transaction's deltas conserve every unit
they touch, and the balances recomputed from the replay match the
journal's own balance view.

Exit code 1 means the journal is inconsistent.

Example:
  greenbook replay --db ./book.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// replaySummary is the replay command's output payload.
type replaySummary struct {
	Records  int              `json:"records"`
	Balances []engine.Balance `json:"balances"`
}

func replayJournal(opts *ReplayOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

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
	records, err := st.ReadRecords(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	slog.Info("journal read", "records", len(records))

	replayed, err := replayBalances(records)
	if err != nil {
		_ = out.Failure(err.Error())
		return WrapExitError(ExitFailure, "journal inconsistent", err)
	}

	stored, err := st.ReadBalances(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read balances", err)
	}
	if err := compareBalances(replayed, stored); err != nil {
		_ = out.Failure(err.Error())
		return WrapExitError(ExitFailure, "journal inconsistent", err)
	}

	summary := replaySummary{Records: len(records), Balances: replayed}
	return out.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "Journal consistent: %d record(s) replayed.\n", summary.Records)
		writeBalances(w, summary.Balances)
	})
}

// replayBalances folds every record's deltas into balances, verifying
// per-unit conservation within each record.
func replayBalances(records []store.Record) ([]engine.Balance, error) {
	type key struct {
		account ledger.AccountID
		unit    ledger.Unit
	}
	balances := map[key]decimal.Decimal{}

	for _, rec := range records {
		unitSums := map[ledger.Unit]decimal.Decimal{}
		for _, d := range rec.Deltas {
			k := key{account: d.Account, unit: d.Unit}
			balances[k] = balances[k].Add(d.Amount)
			unitSums[d.Unit] = unitSums[d.Unit].Add(d.Amount)
		}
		for unit, sum := range unitSums {
			if !sum.IsZero() {
				return nil, fmt.Errorf("record %s does not conserve %s: deltas sum to %s", rec.Key, unit, sum)
			}
		}
	}

	out := make([]engine.Balance, 0, len(balances))
	for k, amount := range balances {
		if amount.IsZero() {
			continue
		}
		out = append(out, engine.Balance{Account: k.account, Unit: k.unit, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account != out[j].Account {
			return out[i].Account < out[j].Account
		}
		return out[i].Unit < out[j].Unit
	})
	return out, nil
}

func compareBalances(replayed, stored []engine.Balance) error {
	if len(replayed) != len(stored) {
		return fmt.Errorf("replay produced %d balance(s), journal reports %d", len(replayed), len(stored))
	}
	for i := range replayed {
		r, s := replayed[i], stored[i]
		if r.Account != s.Account || r.Unit != s.Unit || !r.Amount.Equal(s.Amount) {
			return fmt.Errorf("balance mismatch at %s/%s: replay %s, journal %s %s/%s",
				r.Account, r.Unit, r.Amount, s.Amount, s.Account, s.Unit)
		}
	}
	return nil
}
