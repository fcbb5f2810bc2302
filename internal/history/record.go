// =============================================================================
// MX to MT101 Converter - Conversion History Records
// =============================================================================
//
// One Record is kept per conversion attempt. The converter fills it in and
// hands it to a Recorder; the Store keeps records in memory and the workbook
// functions in report.go persist them between runs.
//
// STATUS:
//   SUCCESS - the MT101 was generated and passed validation
//   FAILED  - conversion ran but produced error findings
//   ERROR   - the input could not be read, pre-checked or parsed
//
// =============================================================================

package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one conversion attempt.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusError   Status = "ERROR"
)

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusSuccess:
		return StatusSuccess, nil
	case StatusFailed:
		return StatusFailed, nil
	case StatusError:
		return StatusError, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Record describes one conversion attempt.
type Record struct {
	// ID uniquely identifies the record.
	ID string

	// FileName is the base name of the input file.
	FileName string

	Status Status

	// ValidMX is true when the input passed the pre-check and parsed.
	ValidMX bool

	// ValidMT is true when the rendered MT101 passed validation.
	ValidMT bool

	// OutputPath is where the MT101 was written, if anywhere.
	OutputPath string

	// ErrorMessage summarises the failure for FAILED and ERROR records.
	ErrorMessage string

	InputSize    int64
	OutputSize   int64
	Transactions int

	ConversionDate time.Time
}

// NewRecord returns a record with a fresh ID.
func NewRecord(fileName string, at time.Time) Record {
	return Record{
		ID:             uuid.NewString(),
		FileName:       fileName,
		ConversionDate: at,
	}
}

// Recorder accepts conversion records.
type Recorder interface {
	Add(record Record) error
}
