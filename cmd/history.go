// =============================================================================
// MX to MT101 Converter - History Command
// =============================================================================
//
// This file defines the 'history' command, which reports on the conversion
// history workbook written by 'process'.
//
// COMMAND USAGE:
//   converter history [--limit n] [--status SUCCESS|FAILED|ERROR] [--since YYYY-MM-DD]
//
// OUTPUT:
//   - Statistics for all time, today and the last seven days
//   - Statistics from --since to today, when given
//   - The most recent records, newest first, optionally filtered
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/history"
)

const sinceLayout = "2006-01-02"

// historyLimit is the number of recent records printed.
var historyLimit int

// historyStatus restricts the listed records to one status.
var historyStatus string

// historySince adds a statistics row from this date to today.
var historySince string

// historyFilter selects what printHistory shows.
type historyFilter struct {
	limit  int
	status history.Status
	since  time.Time
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show conversion statistics and recent conversions",
	Long: `Print the conversion statistics (all time, today, last seven days) and the
most recent records from the history workbook.

--status lists only records with that status. --since adds a statistics row
covering every day from the given date to today and lists only records
converted on or after it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseHistoryFilter(historyLimit, historyStatus, historySince)
		if err != nil {
			return err
		}

		records, err := history.LoadWorkbook(mainConfig.HistoryFile)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		store := history.NewStore(records...)
		printHistory(cmd.OutOrStdout(), store, time.Now(), filter)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of recent records to show")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only list records with this status (SUCCESS, FAILED, ERROR)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Report from this date (YYYY-MM-DD) to today")
}

func parseHistoryFilter(limit int, status, since string) (historyFilter, error) {
	filter := historyFilter{limit: limit}

	if status != "" {
		s, err := history.ParseStatus(status)
		if err != nil {
			return filter, fmt.Errorf("invalid --status: %w", err)
		}
		filter.status = s
	}

	if since != "" {
		t, err := time.ParseInLocation(sinceLayout, since, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid --since %q: expected YYYY-MM-DD", since)
		}
		filter.since = t
	}

	return filter, nil
}

func printHistory(out io.Writer, store *history.Store, now time.Time, filter historyFilter) {
	if store.Len() == 0 {
		fmt.Fprintln(out, "No conversions recorded.")
		return
	}

	stats := store.Stats(now)
	rows := []struct {
		label  string
		counts history.Counts
	}{
		{"All time", stats.All},
		{"Today", stats.Today},
		{"Last 7 days", stats.LastSevenDays},
	}
	if !filter.since.IsZero() {
		rows = append(rows, struct {
			label  string
			counts history.Counts
		}{"Since " + filter.since.Format(sinceLayout), store.CountDays(filter.since, now)})
	}

	fmt.Fprintf(out, "%-17s %7s %8s %7s %6s %8s\n", "Period", "Total", "Success", "Failed", "Error", "Rate")
	for _, row := range rows {
		c := row.counts
		fmt.Fprintf(out, "%-17s %7d %8d %7d %6d %7.1f%%\n",
			row.label, c.Total, c.Success, c.Failed, c.Error, c.SuccessRate())
	}

	view := store
	if filter.status != "" {
		view = history.NewStore(store.ByStatus(filter.status)...)
	}

	var recent []history.Record
	for _, r := range view.Recent(0) {
		if !filter.since.IsZero() && r.ConversionDate.Before(filter.since) {
			continue
		}
		recent = append(recent, r)
		if filter.limit > 0 && len(recent) == filter.limit {
			break
		}
	}

	fmt.Fprintf(out, "\nLast %d conversion(s):\n", len(recent))
	for _, r := range recent {
		fmt.Fprintf(out, "  %s  %-7s  %s", r.ConversionDate.Local().Format("2006-01-02 15:04:05"), r.Status, r.FileName)
		if r.ErrorMessage != "" {
			fmt.Fprintf(out, "  (%s)", r.ErrorMessage)
		}
		fmt.Fprintln(out)
	}
}
