// =============================================================================
// MX to MT101 Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// SOURCES (later sources win):
//   1. Built-in defaults (DefaultMainConfig)
//   2. The YAML file passed with --config (optional; a missing file is fine)
//   3. Environment variables, optionally loaded from a .env file:
//        MT101_RECEIVER_BIC, MT101_PRIORITY, MT101_LOG_LEVEL,
//        MT101_INPUT_DIR, MT101_OUTPUT_DIR, MT101_MAX_CONCURRENCY
//
// The merged configuration is validated before it is returned.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/mtwriter"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/validation"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for pain.001 files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where generated MT101 files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir is the long-term store for generated MT101 files.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ArchiveOnSuccess moves converted inputs to InputArchiveDir and copies
	// outputs to OutputArchiveDir. When false, files stay where they are.
	// Default: true
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// UseTimestampSubdirs files archived inputs and outputs under YYYY/MM/DD
	// subdirectories of the archive directories.
	// Default: false
	UseTimestampSubdirs bool `yaml:"use_timestamp_subdirs"`

	// HistoryFile is the XLSX workbook holding the conversion history.
	// Default: "./history/conversion_history.xlsx"
	HistoryFile string `yaml:"history_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the application log file. Empty disables it.
	// Default: "./logs/converter.log"
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the format for output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {original}  - Input file name without extension
	//
	// Default: "{original}_{uuid}.mt101"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files converted concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError determines whether to continue processing other files
	// if one file fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// PreCheck controls the raw pain.001 pre-check.
	PreCheck PreCheckConfig `yaml:"precheck"`

	// Generator holds the MT101 header settings.
	Generator GeneratorConfig `yaml:"generator"`
}

// PreCheckConfig controls the structural pre-check run before conversion.
type PreCheckConfig struct {
	// Enabled turns the pre-check on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ExpectedNamespace must appear in the document text.
	// Default: "urn:iso:std:iso:20022:tech:xsd:pain.001"
	ExpectedNamespace string `yaml:"expected_namespace"`
}

// GeneratorConfig holds the MT101 header settings.
type GeneratorConfig struct {
	// ReceiverBIC is the block 2 fallback receiver.
	// Default: "BMCEMAMCXXX"
	ReceiverBIC string `yaml:"receiver_bic"`

	// Block2PrioritySuffix is the block 2 priority. Only its first
	// character is used.
	// Default: "N"
	Block2PrioritySuffix string `yaml:"block2_priority_suffix"`

	// SessionSequence is the 10-digit block 1 session and sequence number.
	// Default: "1234567890"
	SessionSequence string `yaml:"session_sequence"`

	// IncludeUserHeader writes block 3.
	// Default: true
	IncludeUserHeader bool `yaml:"include_user_header"`
}

// GenerateOptions converts the settings into writer options. The caller
// supplies the clock.
func (g GeneratorConfig) GenerateOptions(clock mtwriter.Clock) mtwriter.GenerateOptions {
	opts := mtwriter.DefaultGenerateOptions()
	opts.ReceiverBIC = g.ReceiverBIC
	opts.PrioritySuffix = g.Block2PrioritySuffix
	opts.SessionSequence = g.SessionSequence
	opts.IncludeUserHeader = g.IncludeUserHeader
	if clock != nil {
		opts.Clock = clock
	}
	return opts
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultMainConfig returns the configuration used when no file is given.
func DefaultMainConfig() *MainConfig {
	return &MainConfig{
		InputDir:         "./input",
		OutputDir:        "./output",
		InputArchiveDir:  "./input_archive",
		OutputArchiveDir: "./output_archive",
		ArchiveOnSuccess: true,
		HistoryFile:      "./history/conversion_history.xlsx",
		LogFile:          "./logs/converter.log",
		LogLevel:         "info",
		LogFormat:        "console",
		OutputNameFormat: "{original}_{uuid}.mt101",
		MaxConcurrency:   4,
		ContinueOnError:  true,
		PreCheck: PreCheckConfig{
			Enabled:           true,
			ExpectedNamespace: validation.DefaultNamespace,
		},
		Generator: GeneratorConfig{
			ReceiverBIC:          mtwriter.DefaultReceiverBIC,
			Block2PrioritySuffix: mtwriter.DefaultPriority,
			SessionSequence:      mtwriter.DefaultSessionSequence,
			IncludeUserHeader:    true,
		},
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. Empty or missing yields defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := DefaultMainConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			// Unmarshal over the defaults so keys absent from the file keep
			// their default value, booleans included.
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv loads ./.env into the process environment if it exists.
// Variables already set are not overwritten.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// applyEnvOverrides copies MT101_* environment variables into config.
func applyEnvOverrides(config *MainConfig) error {
	overrides := map[string]*string{
		"MT101_RECEIVER_BIC": &config.Generator.ReceiverBIC,
		"MT101_PRIORITY":     &config.Generator.Block2PrioritySuffix,
		"MT101_LOG_LEVEL":    &config.LogLevel,
		"MT101_INPUT_DIR":    &config.InputDir,
		"MT101_OUTPUT_DIR":   &config.OutputDir,
	}
	for key, target := range overrides {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*target = value
		}
	}

	if value := strings.TrimSpace(os.Getenv("MT101_MAX_CONCURRENCY")); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MT101_MAX_CONCURRENCY %q: %w", value, err)
		}
		config.MaxConcurrency = n
	}

	return nil
}

// applyMainConfigDefaults restores defaults for values that were set to
// empty strings in the file.
func applyMainConfigDefaults(config *MainConfig) {
	defaults := DefaultMainConfig()

	if config.InputDir == "" {
		config.InputDir = defaults.InputDir
	}
	if config.OutputDir == "" {
		config.OutputDir = defaults.OutputDir
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = defaults.InputArchiveDir
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = defaults.OutputArchiveDir
	}
	if config.HistoryFile == "" {
		config.HistoryFile = defaults.HistoryFile
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = defaults.OutputNameFormat
	}
	if config.PreCheck.ExpectedNamespace == "" {
		config.PreCheck.ExpectedNamespace = defaults.PreCheck.ExpectedNamespace
	}
	if config.Generator.ReceiverBIC == "" {
		config.Generator.ReceiverBIC = defaults.Generator.ReceiverBIC
	}
	if config.Generator.Block2PrioritySuffix == "" {
		config.Generator.Block2PrioritySuffix = defaults.Generator.Block2PrioritySuffix
	}
	if config.Generator.SessionSequence == "" {
		config.Generator.SessionSequence = defaults.Generator.SessionSequence
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

var (
	receiverBICPattern = regexp.MustCompile(`^[A-Z0-9]{8}([A-Z0-9]{3})?$`)
	sessionPattern     = regexp.MustCompile(`^\d{10}$`)
)

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	config.Generator.ReceiverBIC = strings.ToUpper(strings.TrimSpace(config.Generator.ReceiverBIC))
	if !receiverBICPattern.MatchString(config.Generator.ReceiverBIC) {
		return fmt.Errorf("generator.receiver_bic %q must be 8 or 11 alphanumeric characters", config.Generator.ReceiverBIC)
	}

	if !sessionPattern.MatchString(config.Generator.SessionSequence) {
		return fmt.Errorf("generator.session_sequence %q must be 10 digits", config.Generator.SessionSequence)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	switch strings.ToLower(config.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format %q must be \"console\" or \"json\"", config.LogFormat)
	}

	if !strings.Contains(config.OutputNameFormat, "{uuid}") && !strings.Contains(config.OutputNameFormat, "{timestamp}") {
		return fmt.Errorf("output_name_format %q must contain {uuid} or {timestamp}", config.OutputNameFormat)
	}

	return nil
}

// Directories returns the working directories created before a batch run.
func (c *MainConfig) Directories() []string {
	return []string{
		c.InputDir,
		c.OutputDir,
		c.InputArchiveDir,
		c.OutputArchiveDir,
	}
}
