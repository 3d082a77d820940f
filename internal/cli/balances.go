package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tmorrow/greenbook/internal/engine"
	"github.com/tmorrow/greenbook/internal/store"
)

// BalancesOptions holds flags for the balances command.
type BalancesOptions struct {
	*RootOptions
	Database string
}

// NewBalancesCommand creates the balances command.
func NewBalancesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BalancesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Report journaled balances",
		Long: `Report every non-zero (account, unit) balance in the journal,
sorted by account then unit.

Example:
  greenbook balances --db ./book.db
  greenbook balances --db ./book.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportBalances(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// balancesSummary is the balances command's output payload.
type balancesSummary struct {
	Balances []engine.Balance `json:"balances"`
}

func reportBalances(opts *BalancesOptions, cmd *cobra.Command) error {
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

	balances, err := st.ReadBalances(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read balances", err)
	}

	return out.Success(balancesSummary{Balances: balances}, func(w io.Writer) {
		writeBalances(w, balances)
	})
}
