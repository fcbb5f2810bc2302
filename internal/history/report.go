// =============================================================================
// MX to MT101 Converter - History Workbook
// =============================================================================
//
// The conversion history is persisted as an XLSX workbook so it survives
// between CLI runs and can be opened by operators.
//
// WORKBOOK LAYOUT:
//   Sheet "History": one header row, then one row per record
//   Sheet "Summary": counts for all time, today and the last seven days
//
// Only the History sheet is read back; Summary is regenerated on each save.
//
// =============================================================================

package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	// HistorySheet holds one row per record.
	HistorySheet = "History"

	// SummarySheet holds the statistics.
	SummarySheet = "Summary"
)

// historyColumns is the header row of the History sheet, in column order.
var historyColumns = []string{
	"ID",
	"File Name",
	"Status",
	"Valid MX",
	"Valid MT",
	"Output Path",
	"Error Message",
	"Input Size",
	"Output Size",
	"Transactions",
	"Conversion Date",
}

// =============================================================================
// LOADING
// =============================================================================

// LoadWorkbook reads the History sheet of a workbook.
//
// PARAMETERS:
//   - path: The workbook path. A missing file yields no records.
//
// RETURNS:
//   - The records in row order.
//   - An error if the workbook or a row cannot be read.
func LoadWorkbook(path string) ([]Record, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(HistorySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var records []Record
	// Row 0 is the header.
	for i := 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}
		record, err := parseRow(rows[i])
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// parseRow converts a History sheet row into a Record.
func parseRow(row []string) (Record, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	status, err := ParseStatus(cell(2))
	if err != nil {
		return Record{}, err
	}

	record := Record{
		ID:           cell(0),
		FileName:     cell(1),
		Status:       status,
		ValidMX:      parseBool(cell(3)),
		ValidMT:      parseBool(cell(4)),
		OutputPath:   cell(5),
		ErrorMessage: cell(6),
	}

	if record.InputSize, err = parseInt(cell(7)); err != nil {
		return Record{}, fmt.Errorf("input size: %w", err)
	}
	if record.OutputSize, err = parseInt(cell(8)); err != nil {
		return Record{}, fmt.Errorf("output size: %w", err)
	}
	transactions, err := parseInt(cell(9))
	if err != nil {
		return Record{}, fmt.Errorf("transactions: %w", err)
	}
	record.Transactions = int(transactions)

	if date := cell(10); date != "" {
		record.ConversionDate, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return Record{}, fmt.Errorf("conversion date: %w", err)
		}
	}

	return record, nil
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	return err == nil && b
}

func parseInt(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseInt(value, 10, 64)
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// SAVING
// =============================================================================

// SaveWorkbook writes records and stats to a new workbook at path,
// replacing any existing file.
func SaveWorkbook(path string, records []Record, stats Stats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), HistorySheet); err != nil {
		return fmt.Errorf("failed to name history sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHistorySheet(f, records, headerStyle); err != nil {
		return err
	}
	if err := writeSummarySheet(f, stats, headerStyle); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save history workbook: %w", err)
	}
	return nil
}

func writeHistorySheet(f *excelize.File, records []Record, headerStyle int) error {
	if err := writeRow(f, HistorySheet, 1, toCells(historyColumns)); err != nil {
		return err
	}

	for i, r := range records {
		var date string
		if !r.ConversionDate.IsZero() {
			date = r.ConversionDate.Format(time.RFC3339)
		}
		row := []interface{}{
			r.ID,
			r.FileName,
			string(r.Status),
			strconv.FormatBool(r.ValidMX),
			strconv.FormatBool(r.ValidMT),
			r.OutputPath,
			r.ErrorMessage,
			r.InputSize,
			r.OutputSize,
			r.Transactions,
			date,
		}
		if err := writeRow(f, HistorySheet, i+2, row); err != nil {
			return err
		}
	}

	return styleHeader(f, HistorySheet, len(historyColumns), headerStyle)
}

func writeSummarySheet(f *excelize.File, stats Stats, headerStyle int) error {
	header := []string{"Period", "Total", "Success", "Failed", "Error", "Success Rate (%)"}
	if err := writeRow(f, SummarySheet, 1, toCells(header)); err != nil {
		return err
	}

	periods := []struct {
		label  string
		counts Counts
	}{
		{"All time", stats.All},
		{"Today", stats.Today},
		{"Last 7 days", stats.LastSevenDays},
	}
	for i, p := range periods {
		row := []interface{}{
			p.label,
			p.counts.Total,
			p.counts.Success,
			p.counts.Failed,
			p.counts.Error,
			strconv.FormatFloat(p.counts.SuccessRate(), 'f', 1, 64),
		}
		if err := writeRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}

	return styleHeader(f, SummarySheet, len(header), headerStyle)
}

// writeRow writes values starting at column A of the given 1-based row.
func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

// styleHeader makes the first row bold and widens the columns.
func styleHeader(f *excelize.File, sheet string, columns int, style int) error {
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
