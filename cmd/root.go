// =============================================================================
// MX to MT101 Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── processCmd  (converter process)
//   ├── convertCmd  (converter convert <file>)
//   ├── validateCmd (converter validate <file>)
//   ├── historyCmd  (converter history)
//   └── versionCmd  (converter version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration (.env, YAML, environment overrides)
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/config"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// mainConfig is loaded once in PersistentPreRunE and shared by subcommands.
var mainConfig *config.MainConfig

// log is the application logger, built from mainConfig.
var log = logger.Nop()

// logCloser releases the log file. It is closed by execute whether or not
// the command succeeded.
var logCloser io.Closer

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "MX to MT101 Converter - Convert ISO 20022 pain.001 files to SWIFT MT101",

	Long: `MX to MT101 Converter transforms ISO 20022 pain.001 customer credit
transfer initiations into SWIFT MT101 request-for-transfer messages.

Key Features:
  - Strict field mapping: missing mandatory data is reported, never defaulted
  - Structural pre-check of the pain.001 document
  - Structural validation of the generated MT101
  - Concurrent batch processing with archival of converted files
  - Conversion history kept in an XLSX workbook

Example Usage:
  converter process                    # Convert all files in the input directory
  converter process --config ./my.yaml # Use a custom configuration file
  converter convert payment.xml        # Convert one file and print the MT101
  converter validate payment.xml       # Run the pre-check only
  converter history --limit 20         # Show conversion statistics`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return initialize()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := execute(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs root and then closes the log file. Cobra skips the post-run
// hooks when a command fails, so the close cannot live there.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if logCloser != nil {
		if cerr := logCloser.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close log file: %w", cerr)
		}
		logCloser = nil
	}
	return err
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initialize loads the configuration and builds the logger.
func initialize() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = zerolog.DebugLevel.String()
	}

	l, closer, err := logger.New(logger.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}

	mainConfig = cfg
	log = l
	logCloser = closer

	log.Debug().Str("config", cfgFile).Msg("configuration loaded")
	return nil
}
