package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tmorrow/greenbook/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files without booking anything",
		Long: `Parse and validate scenario files: YAML structure, required
fields, known expectations, and key reuse rules. Nothing is booked.

Example:
  greenbook validate ./scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenarios(opts, args, cmd)
		},
	}

	return cmd
}

// validationResult is one file's validation outcome.
type validationResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Steps int    `json:"steps,omitempty"`
}

func validateScenarios(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	results := make([]validationResult, 0, len(paths))
	invalid := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			results = append(results, validationResult{Path: path, Valid: false, Error: err.Error()})
			invalid++
			continue
		}
		results = append(results, validationResult{Path: path, Valid: true, Steps: len(scenario.Steps)})
	}

	renderErr := out.Success(results, func(w io.Writer) {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "ok    %s (%d step(s))\n", r.Path, r.Steps)
				continue
			}
			fmt.Fprintf(w, "error %s: %s\n", r.Path, r.Error)
		}
	})
	if renderErr != nil {
		return renderErr
	}
	if invalid > 0 {
		return WrapExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) invalid", invalid, len(paths)), nil)
	}
	return nil
}
