// =============================================================================
// MX to MT101 Converter - History Store
// =============================================================================
//
// An in-memory, concurrency-safe list of conversion records. Batch workers
// append to it through the Recorder interface, and the workbook layer loads
// and saves it.
//
// QUERIES:
//   Recent(n)            - newest first
//   ByStatus(status)     - records with one status
//   Stats(now)           - all time, today and the last seven days
//   CountDays(from, now) - every day from 'from' to 'now'
//
// =============================================================================

package history

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Counts tallies records by status.
type Counts struct {
	Total   int
	Success int
	Failed  int
	Error   int
}

func (c *Counts) add(r Record) {
	c.Total++
	switch r.Status {
	case StatusSuccess:
		c.Success++
	case StatusFailed:
		c.Failed++
	case StatusError:
		c.Error++
	}
}

// SuccessRate returns the share of successful records in percent.
func (c Counts) SuccessRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Success) * 100 / float64(c.Total)
}

// Stats summarises a store at a point in time.
type Stats struct {
	All           Counts
	Today         Counts
	LastSevenDays Counts
}

// Store is an in-memory Recorder safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records []Record
}

// NewStore returns a store seeded with records, typically loaded from a
// workbook.
func NewStore(records ...Record) *Store {
	s := &Store{}
	s.records = append(s.records, records...)
	return s
}

// Add appends a record. A missing ID is generated.
func (s *Store) Add(record Record) error {
	if _, err := ParseStatus(string(record.Status)); err != nil {
		return fmt.Errorf("invalid record %s: %w", record.FileName, err)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of every record in insertion order.
func (s *Store) All() []Record {
	return s.filter(func(Record) bool { return true })
}

// Recent returns up to n records, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) []Record {
	records := s.All()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ConversionDate.After(records[j].ConversionDate)
	})
	if n > 0 && n < len(records) {
		records = records[:n]
	}
	return records
}

// ByStatus returns the records with the given status.
func (s *Store) ByStatus(status Status) []Record {
	return s.filter(func(r Record) bool { return r.Status == status })
}

// Between returns the records converted in [start, end).
func (s *Store) Between(start, end time.Time) []Record {
	return s.filter(func(r Record) bool {
		return !r.ConversionDate.Before(start) && r.ConversionDate.Before(end)
	})
}

// CountDays tallies the records of the calendar days from..to, both
// inclusive, in the location of from. Reversed bounds are swapped.
func (s *Store) CountDays(from, to time.Time) Counts {
	if to.Before(from) {
		from, to = to, from
	}
	start := startOfDay(from)
	end := startOfDay(to.In(from.Location())).AddDate(0, 0, 1)

	var c Counts
	for _, r := range s.Between(start, end) {
		c.add(r)
	}
	return c
}

// Stats summarises the store relative to now.
func (s *Store) Stats(now time.Time) Stats {
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -6)
	tomorrow := today.AddDate(0, 0, 1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	for _, r := range s.records {
		stats.All.add(r)
		at := r.ConversionDate.In(now.Location())
		if !at.Before(today) && at.Before(tomorrow) {
			stats.Today.add(r)
		}
		if !at.Before(weekStart) && at.Before(tomorrow) {
			stats.LastSevenDays.add(r)
		}
	}
	return stats
}

func (s *Store) filter(keep func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
