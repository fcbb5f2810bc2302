// =============================================================================
// MX to MT101 Converter - Converter Module
// =============================================================================
//
// This module orchestrates the conversion of a single pain.001 file, from
// reading the input to archiving it and recording the attempt.
//
// CONVERSION PIPELINE:
//   1. Read the input file
//   2. Pre-check the raw XML (namespace and mandatory elements)
//   3. Parse, generate and validate (Codec.Convert)
//   4. Write the MT101 output, or a findings log when conversion failed
//   5. Archive the input and a copy of the output
//   6. Record the attempt in the conversion history
//
// STATUS:
//   ERROR   - steps 1 to 3 could not produce an MT101 (unreadable file,
//             pre-check failure, malformed or incomplete pain.001)
//   FAILED  - an MT101 was rendered but carries error findings
//   SUCCESS - the MT101 was written
//
// CONCURRENCY:
//   A Converter handles one file. Several converters may run concurrently
//   as long as they share only the Codec, the FileManager and a concurrency
//   safe Recorder.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/config"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/history"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/mtwriter"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/validation"
	"github.com/ginjaninja78/MX-to-MT101-conversion/pkg/utils"
)

// ErrPreCheckFailed is returned when the raw document fails the pre-check.
var ErrPreCheckFailed = errors.New("pre-check failed")

// ErrConversionFailed is returned when the rendered MT101 carries errors.
var ErrConversionFailed = errors.New("conversion failed")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated MT101 file.
	// This is empty if processing failed or in dry-run mode.
	OutputFile string

	// ArchivePath is where the input is after a successful conversion: the
	// archived copy, or the input path itself when archiving is off. Empty
	// when archival failed or the run was a dry run.
	ArchivePath string

	// LogFile is the findings log written for a failed file.
	LogFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Status is the history status of the attempt.
	Status history.Status

	// Error contains the error if processing failed.
	Error error

	// Outcome is the codec result, when the codec ran.
	Outcome types.ConversionOutcome

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Transactions is the number of payment instructions in the input.
	Transactions int

	// ErrorFindings and WarningFindings count the codec findings.
	ErrorFindings   int
	WarningFindings int

	// InputSize and OutputSize are in bytes.
	InputSize  int64
	OutputSize int64

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single pain.001 file.
type Converter struct {
	inputPath  string
	mainConfig *config.MainConfig
	codec      *Codec
	files      *utils.FileManager
	recorder   history.Recorder
	logger     zerolog.Logger
	clock      mtwriter.Clock
	dryRun     bool
}

// Option customises a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = *logger
		}
	}
}

// WithRecorder sets where history records are sent. The default drops them.
func WithRecorder(recorder history.Recorder) Option {
	return func(c *Converter) { c.recorder = recorder }
}

// WithClock sets the clock used for the MT101 user header, output names
// and history dates.
func WithClock(clock mtwriter.Clock) Option {
	return func(c *Converter) { c.clock = clock }
}

// WithFileManager replaces the file manager built from the configuration.
func WithFileManager(files *utils.FileManager) Option {
	return func(c *Converter) { c.files = files }
}

// WithDryRun converts without writing, archiving or recording anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the input pain.001 file.
//   - mainConfig: The main application configuration.
//   - opts: Optional dependencies.
//
// RETURNS:
//   - A new Converter instance.
func New(inputPath string, mainConfig *config.MainConfig, opts ...Option) *Converter {
	c := &Converter{
		inputPath:  inputPath,
		mainConfig: mainConfig,
		logger:     zerolog.Nop(),
		clock:      mtwriter.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.files == nil {
		c.files = utils.NewFileManager(
			mainConfig.InputDir,
			mainConfig.OutputDir,
			mainConfig.InputArchiveDir,
			mainConfig.OutputArchiveDir,
		)
		c.files.Now = c.clock.Now
		c.files.UseTimestampSubdirs = mainConfig.UseTimestampSubdirs
		c.files.ArchiveOnSuccess = mainConfig.ArchiveOnSuccess
	}
	c.codec = NewCodec(mainConfig.Generator.GenerateOptions(c.clock))
	c.logger = c.logger.With().
		Str("component", "converter").
		Str("file", filepath.Base(inputPath)).
		Logger()

	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file. A cancelled context
// stops the file before it is read; a conversion in progress is not
// interrupted.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.inputPath}

	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	if err := ctx.Err(); err != nil {
		result.Status = history.StatusError
		result.Error = fmt.Errorf("conversion cancelled: %w", err)
		return result
	}

	c.logger.Info().Bool("dry_run", c.dryRun).Msg("processing file")

	record := history.NewRecord(filepath.Base(c.inputPath), c.clock.Now())

	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	data, err := os.ReadFile(c.inputPath)
	if err != nil {
		return c.fail(result, record, history.StatusError, fmt.Errorf("failed to read input: %w", err))
	}
	result.Stats.InputSize = int64(len(data))
	record.InputSize = result.Stats.InputSize

	// =========================================================================
	// STEP 2: PRE-CHECK
	// =========================================================================

	if c.mainConfig.PreCheck.Enabled {
		check := validation.PreCheck(string(data), c.mainConfig.PreCheck.ExpectedNamespace)
		if !check.Valid {
			for _, msg := range check.Errors {
				c.logger.Warn().Str("check", msg).Msg("pre-check failed")
			}
			return c.fail(result, record, history.StatusError, fmt.Errorf("%w: %s", ErrPreCheckFailed, check.Error()))
		}
		c.logger.Debug().Msg("pre-check passed")
	}

	// =========================================================================
	// STEP 3: CONVERT
	// =========================================================================

	outcome := c.codec.Convert(string(data))
	result.Outcome = outcome

	if outcome.Err != nil {
		return c.fail(result, record, history.StatusError, outcome.Err)
	}

	record.ValidMX = true
	record.Transactions = len(outcome.Message.PaymentInstructions)
	record.OutputSize = int64(len(outcome.RenderedText))
	result.Stats.Transactions = record.Transactions
	result.Stats.OutputSize = record.OutputSize
	result.Stats.ErrorFindings, result.Stats.WarningFindings = types.CountBySeverity(outcome.Findings)

	for _, f := range outcome.Findings {
		event := c.logger.Warn()
		if f.IsError() {
			event = c.logger.Error()
		}
		event.Str("tag", f.FieldTag).Int("transaction", f.Instruction).Msg(f.Message)
	}

	if !outcome.Success {
		return c.fail(result, record, history.StatusFailed,
			fmt.Errorf("%w with %d error finding(s)", ErrConversionFailed, result.Stats.ErrorFindings))
	}

	record.ValidMT = true
	result.Success = true
	result.Status = history.StatusSuccess

	if c.dryRun {
		c.logger.Info().Int("transactions", record.Transactions).Msg("dry run: conversion succeeded")
		return result
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	outputName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, c.inputPath, c.clock.Now())
	outputPath, err := c.files.WriteOutput(outputName, outcome.RenderedText)
	if err != nil {
		result.Success = false
		return c.fail(result, record, history.StatusError, err)
	}
	result.OutputFile = outputPath
	record.OutputPath = outputPath
	c.logger.Info().Str("output", outputPath).Int("transactions", record.Transactions).Msg("wrote MT101")

	// =========================================================================
	// STEP 5: ARCHIVE FILES
	// =========================================================================

	archivePath, err := c.archiveFiles(outputPath)
	if err != nil {
		// Archival problems do not undo a written output.
		c.logger.Warn().Err(err).Msg("failed to archive files")
	}
	result.ArchivePath = archivePath

	// =========================================================================
	// STEP 6: RECORD HISTORY
	// =========================================================================

	record.Status = history.StatusSuccess
	c.record(record)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// fail finalises a failed result: it writes the findings log, records the
// attempt and logs the error. Dry runs only log.
func (c *Converter) fail(result Result, record history.Record, status history.Status, err error) Result {
	result.Success = false
	result.Status = status
	result.Error = err

	c.logger.Error().Err(err).Str("status", string(status)).Msg("conversion failed")

	if c.dryRun {
		return result
	}

	logPath, logErr := c.files.WriteFindingsLog(utils.FindingsLog{
		InputFile:    c.inputPath,
		Failure:      err.Error(),
		Findings:     result.Outcome.Findings,
		RenderedText: result.Outcome.RenderedText,
	})
	if logErr != nil {
		c.logger.Warn().Err(logErr).Msg("failed to write findings log")
	} else {
		result.LogFile = logPath
	}

	record.Status = status
	record.ErrorMessage = summarize(err, result.Outcome.Findings)
	c.record(record)

	return result
}

// archiveFiles moves the input to the input archive and copies the output
// to the output archive. It returns the archived input path.
func (c *Converter) archiveFiles(outputPath string) (string, error) {
	var errs []error

	archivePath, err := c.files.ArchiveInputFile(c.inputPath)
	if err != nil {
		errs = append(errs, fmt.Errorf("input: %w", err))
	}
	if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}

	return archivePath, errors.Join(errs...)
}

func (c *Converter) record(record history.Record) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Add(record); err != nil {
		c.logger.Warn().Err(err).Msg("failed to record history")
	}
}

// summarize builds the history error message from the error and the error
// findings.
func summarize(err error, findings []types.Finding) string {
	parts := []string{err.Error()}
	for _, f := range findings {
		if f.IsError() {
			parts = append(parts, f.String())
		}
	}
	return strings.Join(parts, "; ")
}
