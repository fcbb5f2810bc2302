// =============================================================================
// MX to MT101 Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which runs the pain.001
// pre-check on one file without converting it.
//
// COMMAND USAGE:
//   converter validate <file>
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/converter"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Pre-check a pain.001 file without converting it",
	Long: `Run the pain.001 pre-check on one file: well-formedness, the expected
namespace, and the mandatory elements. The namespace comes from
precheck.expected_namespace in the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		out := cmd.OutOrStdout()
		result := validation.PreCheck(string(data), mainConfig.PreCheck.ExpectedNamespace)
		if result.Valid {
			fmt.Fprintf(out, "%s: OK\n", args[0])
			return nil
		}

		fmt.Fprintf(out, "%s: %d problem(s)\n", args[0], len(result.Errors))
		for i, msg := range result.Errors {
			fmt.Fprintf(out, "  %d. %s\n", i+1, msg)
		}
		return converter.ErrPreCheckFailed
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
