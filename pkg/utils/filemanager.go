// =============================================================================
// MX to MT101 Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Input discovery (pain.001 .xml files)
//   - File archival (moving processed inputs, copying outputs)
//   - Output file naming
//   - Findings logs for failed conversions
//   - Run summaries
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after a successful conversion
//   - Output files are copied to output_archive for long-term storage
//   - Failed inputs stay where they are, next to a findings log
//   - An archived file never overwrites an existing one
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
)

// OutputExtension is appended to generated names that have no extension.
const OutputExtension = ".mt101"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is the directory scanned for pain.001 files.
	InputDir string

	// OutputDir is the directory where MT101 files and logs are written.
	OutputDir string

	// InputArchiveDir receives successfully converted inputs.
	InputArchiveDir string

	// OutputArchiveDir receives copies of generated outputs.
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2025/01/15/pain.xml
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether files are archived at all.
	ArchiveOnSuccess bool

	// Now supplies timestamps for names and logs.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		Now:              time.Now,
	}
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates every directory in dirs that does not exist.
// Empty entries are skipped.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the input directory for files matching the pattern.
//
// PARAMETERS:
//   - pattern: A glob pattern to match files. If empty, defaults to "*.xml".
//
// RETURNS:
//   - The matching regular files, sorted by name.
//   - An error if the pattern is invalid.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.xml"
	}

	files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		result = append(result, file)
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the input archive directory.
//
// RETURNS:
//   - The path of the archived file (or filePath when archiving is off).
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath, err := fm.prepareArchivePath(fm.InputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an output file to the output archive directory.
// The original stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath, err := fm.prepareArchivePath(fm.OutputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// prepareArchivePath creates the archive directory and returns a path in it
// that does not exist yet.
func (fm *FileManager) prepareArchivePath(archiveDir, filePath string) (string, error) {
	dir := archiveDir
	if fm.UseTimestampSubdirs {
		now := fm.now()
		dir = filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	fileName := filepath.Base(filePath)
	archivePath := filepath.Join(dir, fileName)
	if FileExists(archivePath) {
		ext := filepath.Ext(fileName)
		stem := strings.TrimSuffix(fileName, ext)
		archivePath = filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:8], ext))
	}

	return archivePath, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//               {original}  - Input file name without extension
//   - inputPath: The input file the output is generated from.
//   - now: The time used for {timestamp}.
//
// RETURNS:
//   - The generated file name. ".mt101" is appended when the format has
//     no extension.
//
// EXAMPLE:
//   format: "{original}_{uuid}.mt101"
//   inputPath: "input/pain_0115.xml"
//   output: "pain_0115_a1b2c3d4-e5f6-7890-abcd-ef1234567890.mt101"
func GenerateOutputFileName(format, inputPath string, now time.Time) string {
	original := filepath.Base(inputPath)
	original = strings.TrimSuffix(original, filepath.Ext(original))

	replacer := strings.NewReplacer(
		"{uuid}", uuid.NewString(),
		"{timestamp}", now.Format("20060102_150405"),
		"{original}", original,
	)
	result := replacer.Replace(format)

	if filepath.Ext(result) == "" {
		result += OutputExtension
	}

	return result
}

// WriteOutput writes rendered text to a new file in the output directory.
// An existing file is never overwritten: when fileName is taken, a short
// UUID suffix is added to the stem.
func (fm *FileManager) WriteOutput(fileName, content string) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(fm.OutputDir, fileName)
	file, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		ext := filepath.Ext(fileName)
		stem := strings.TrimSuffix(fileName, ext)
		outputPath = filepath.Join(fm.OutputDir, fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:8], ext))
		file, err = os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	return outputPath, nil
}

// =============================================================================
// FINDINGS LOG GENERATION
// =============================================================================

// FindingsLog describes a failed conversion for its log file.
type FindingsLog struct {
	// InputFile is the pain.001 file that failed.
	InputFile string

	// Failure is the terminal error, if the conversion stopped early.
	Failure string

	// Findings are the generation and validation findings.
	Findings []types.Finding

	// RenderedText is the best-effort MT101, if one was generated.
	RenderedText string
}

// WriteFindingsLog writes a findings log next to the outputs.
//
// RETURNS:
//   - The path to the log file.
//   - An error if writing fails.
func (fm *FileManager) WriteFindingsLog(entry FindingsLog) (string, error) {
	now := fm.now()

	base := filepath.Base(entry.InputFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("%s_errors_%s.txt", base, now.Format("20060102_150405")))

	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create findings log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	errs, warnings := types.CountBySeverity(entry.Findings)

	fmt.Fprintf(writer, "MX to MT101 Converter - Findings Log\n"+
		"Generated: %s\n"+
		"Input:     %s\n"+
		"Errors:    %d\n"+
		"Warnings:  %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		entry.InputFile,
		errs,
		warnings)

	if entry.Failure != "" {
		fmt.Fprintf(writer, "Failure: %s\n\n", entry.Failure)
	}

	for i, f := range entry.Findings {
		fmt.Fprintf(writer, "Finding #%d\n"+
			"  Severity: %s\n"+
			"  Field:    %s\n",
			i+1, f.Severity, f.FieldTag)
		if f.Instruction > 0 {
			fmt.Fprintf(writer, "  Transaction: %d\n", f.Instruction)
		}
		fmt.Fprintf(writer, "  Message:  %s\n\n", f.Message)
	}

	if entry.RenderedText != "" {
		writer.WriteString("Rendered MT101:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		writer.WriteString(entry.RenderedText)
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Findings Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush findings log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime         time.Time
	EndTime           time.Time
	TotalFiles        int
	SuccessfulFiles   int
	FailedFiles       int
	TotalTransactions int
	ErrorFindings     int
	WarningFindings   int
	ProcessedFiles    []ProcessedFileInfo
	FailedFilesList   []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully converted file.
type ProcessedFileInfo struct {
	InputFile    string
	OutputFile   string
	ArchivePath  string
	Transactions int
	ProcessTime  time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	LogFile      string
}

// WriteSummaryLog writes a processing summary to the output directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryPath := filepath.Join(fm.OutputDir,
		fmt.Sprintf("processing_summary_%s.txt", fm.now().Format("20060102_150405")))

	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "MX to MT101 Converter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Total Transactions: %d\n"+
		"  Error Findings:     %d\n"+
		"  Warning Findings:   %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalTransactions,
		summary.ErrorFindings,
		summary.WarningFindings)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Transactions: %d\n", pf.Transactions)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n", ff.ErrorMessage)
			if ff.LogFile != "" {
				fmt.Fprintf(writer, "  Log:   %s\n", ff.LogFile)
			}
			writer.WriteString("\n")
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
