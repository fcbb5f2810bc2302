// =============================================================================
// MX to MT101 Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the MX to MT101 Converter CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   converter process       - Convert all pain.001 files in the input directory
//   converter convert       - Convert one file and print the MT101
//   converter validate      - Pre-check one pain.001 file
//   converter history       - Show conversion statistics and recent records
//   converter version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Codec (xmlparser, mtwriter, validation) and the
//                      orchestration layer (converter, history, config, logger)
//   - pkg/           : File management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/MX-to-MT101-conversion/cmd"
)

func main() {
	cmd.Execute()
}
