// =============================================================================
// MX to MT101 Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// converting pain.001 files to MT101. It orchestrates a batch run.
//
// COMMAND USAGE:
//   converter process [flags]
//
// FLAGS:
//   --dry-run : Convert and validate without writing, archiving or recording
//   --file    : Path to a specific file to process instead of the input dir
//
// PROCESSING PIPELINE:
//   1. Ensure the working directories exist
//   2. Discover pain.001 files in the input directory
//   3. Load the conversion history workbook
//   4. Convert files concurrently, bounded by max_concurrency
//   5. Write the processing summary and save the history workbook
//
// On success the MT101 is placed in the output directory and the input is
// moved to the input archive. On error a findings log is written to the
// output directory and the input stays in place.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/config"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/converter"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/history"
	"github.com/ginjaninja78/MX-to-MT101-conversion/pkg/utils"
)

// ErrBatchStopped is returned when continue_on_error is off and a file failed.
var ErrBatchStopped = errors.New("batch stopped after a failed file")

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun converts without writing output files.
var dryRun bool

// filePath is the path to a specific file to process.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert pain.001 files in the input directory to MT101",
	Long: `The process command scans the input directory for pain.001 XML files and
converts each of them to an MT101 message.

Files are converted concurrently, bounded by max_concurrency. Each file is
processed independently.

On successful conversion:
  - The MT101 is placed in the output directory
  - The original XML is moved to the input archive
  - A copy of the MT101 is kept in the output archive

On error:
  - A findings log is created in the output directory
  - The original XML remains in the input directory
  - Processing continues for other files unless continue_on_error is false

Every attempt is recorded in the history workbook.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runProcess(ctx, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Convert and validate without writing output files",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific file to process",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context, out io.Writer) error {
	fmt.Fprintln(out, "=== MX to MT101 Converter ===")

	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	files.UseTimestampSubdirs = mainConfig.UseTimestampSubdirs
	files.ArchiveOnSuccess = mainConfig.ArchiveOnSuccess
	if err := utils.EnsureDirectories(mainConfig.Directories()...); err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		if !utils.FileExists(filePath) {
			return fmt.Errorf("input file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	} else {
		discovered, err := files.DiscoverInputFiles("")
		if err != nil {
			return err
		}
		inputFiles = discovered
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No pain.001 files found in the input directory.")
		return nil
	}
	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 2: LOAD HISTORY
	// =========================================================================

	records, err := history.LoadWorkbook(mainConfig.HistoryFile)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	store := history.NewStore(records...)

	// =========================================================================
	// STEP 3: CONVERT
	// =========================================================================

	b := &batch{
		config: mainConfig,
		files:  files,
		store:  store,
		logger: log,
		dryRun: dryRun,
	}
	report := b.run(ctx, inputFiles)

	for _, result := range report.results {
		name := filepath.Base(result.FilePath)
		switch {
		case result.Success && dryRun:
			fmt.Fprintf(out, "  ✓ %s (dry run, %d transaction(s))\n", name, result.Stats.Transactions)
		case result.Success:
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, filepath.Base(result.OutputFile))
		default:
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		}
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	summary := report.summary
	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Failed:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Skipped:         %d\n", report.skipped)
	fmt.Fprintf(out, "Transactions:    %d\n", summary.TotalTransactions)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if !dryRun {
		summaryPath, err := files.WriteSummaryLog(summary)
		if err != nil {
			log.Warn().Err(err).Msg("failed to write summary log")
		} else {
			fmt.Fprintf(out, "Summary:         %s\n", summaryPath)
		}

		if err := history.SaveWorkbook(mainConfig.HistoryFile, store.All(), store.Stats(time.Now())); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
	}

	if report.stopped {
		return ErrBatchStopped
	}
	return ctx.Err()
}

// =============================================================================
// BATCH
// =============================================================================

// batch converts a set of files with bounded concurrency.
type batch struct {
	config *config.MainConfig
	files  *utils.FileManager
	store  history.Recorder
	logger *zerolog.Logger
	dryRun bool
}

type batchReport struct {
	results []converter.Result
	summary utils.ProcessingSummary

	// skipped counts files never converted because of cancellation.
	skipped int

	// stopped is set when a failure ended the batch early.
	stopped bool
}

func (b *batch) run(ctx context.Context, inputFiles []string) batchReport {
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(b.config.MaxConcurrency))
	results := make([]converter.Result, len(inputFiles))
	launched := make([]bool, len(inputFiles))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		stopped bool
	)

	for i, path := range inputFiles {
		if err := sem.Acquire(runCtx, 1); err != nil {
			break
		}
		launched[i] = true
		wg.Add(1)

		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)

			conv := converter.New(path, b.config,
				converter.WithLogger(b.logger),
				converter.WithRecorder(b.store),
				converter.WithFileManager(b.files),
				converter.WithDryRun(b.dryRun),
			)
			result := conv.Run(runCtx)
			results[i] = result

			if !result.Success && !b.config.ContinueOnError && !errors.Is(result.Error, context.Canceled) {
				mu.Lock()
				stopped = true
				mu.Unlock()
				cancel()
			}
		}(i, path)
	}
	wg.Wait()

	report := batchReport{stopped: stopped}
	summary := utils.ProcessingSummary{StartTime: start}

	for i, result := range results {
		if !launched[i] || errors.Is(result.Error, context.Canceled) {
			report.skipped++
			continue
		}
		report.results = append(report.results, result)
		summary.TotalFiles++
		summary.ErrorFindings += result.Stats.ErrorFindings
		summary.WarningFindings += result.Stats.WarningFindings

		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalTransactions += result.Stats.Transactions
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:    result.FilePath,
				OutputFile:   result.OutputFile,
				ArchivePath:  result.ArchivePath,
				Transactions: result.Stats.Transactions,
				ProcessTime:  result.Stats.ProcessingTime,
			})
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: result.Error.Error(),
			LogFile:      result.LogFile,
		})
	}

	summary.EndTime = time.Now()
	report.summary = summary

	b.logger.Info().
		Int("files", summary.TotalFiles).
		Int("successful", summary.SuccessfulFiles).
		Int("failed", summary.FailedFiles).
		Int("skipped", report.skipped).
		Msg("batch complete")

	return report
}
