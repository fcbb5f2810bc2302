// =============================================================================
// MX to MT101 Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts one pain.001 file
// and prints the MT101 without archiving or recording it.
//
// COMMAND USAGE:
//   converter convert <file> [--out path]
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/converter"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/mtwriter"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/validation"
)

// outPath, when set, receives the rendered MT101.
var outPath string

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a single pain.001 file and print the MT101",
	Long: `Convert one pain.001 file and print the rendered MT101 to standard output.
Findings are printed to standard error. Nothing is archived or recorded.

The rendered text is printed even when the conversion has error findings,
so it can be inspected. The command fails in that case.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		codec := converter.NewCodec(mainConfig.Generator.GenerateOptions(mtwriter.SystemClock{}))
		outcome := codec.Convert(string(data))
		if outcome.Err != nil {
			return outcome.Err
		}

		fmt.Fprintln(cmd.OutOrStdout(), outcome.RenderedText)
		if len(outcome.Findings) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), validation.FormatFindings(outcome.Findings))
		}

		if outPath != "" {
			if err := os.WriteFile(outPath, []byte(outcome.RenderedText), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			log.Info().Str("output", outPath).Msg("wrote MT101")
		}

		if !outcome.Success {
			return converter.ErrConversionFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the MT101 to this file")
}
