package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func record(name string, status Status, at time.Time) Record {
	r := NewRecord(name, at)
	r.Status = status
	return r
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Add(record("today-ok.xml", StatusSuccess, now.Add(-time.Hour))))
	require.NoError(t, s.Add(record("today-failed.xml", StatusFailed, now.Add(-2*time.Hour))))
	require.NoError(t, s.Add(record("three-days.xml", StatusSuccess, now.AddDate(0, 0, -3))))
	require.NoError(t, s.Add(record("six-days.xml", StatusError, now.AddDate(0, 0, -6))))
	require.NoError(t, s.Add(record("old.xml", StatusError, now.AddDate(0, 0, -30))))
	return s
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" success ")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got)

	_, err = ParseStatus("PENDING")
	assert.Error(t, err)
}

func TestStoreAdd(t *testing.T) {
	s := NewStore()

	assert.Error(t, s.Add(Record{FileName: "x.xml", Status: "PENDING"}))

	require.NoError(t, s.Add(Record{FileName: "x.xml", Status: StatusSuccess}))
	all := s.All()
	require.Len(t, all, 1)
	assert.NotEmpty(t, all[0].ID, "missing IDs are generated")
}

func TestStoreRecent(t *testing.T) {
	s := seededStore(t)

	recent := s.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "today-ok.xml", recent[0].FileName)
	assert.Equal(t, "today-failed.xml", recent[1].FileName)

	assert.Len(t, s.Recent(0), 5)
	assert.Equal(t, "old.xml", s.Recent(0)[4].FileName)
}

func TestStoreByStatusAndBetween(t *testing.T) {
	s := seededStore(t)

	assert.Len(t, s.ByStatus(StatusSuccess), 2)
	assert.Len(t, s.ByStatus(StatusFailed), 1)
	assert.Len(t, s.ByStatus(StatusError), 2)

	between := s.Between(now.AddDate(0, 0, -7), now)
	assert.Len(t, between, 4)
}

func TestStoreStats(t *testing.T) {
	stats := seededStore(t).Stats(now)

	assert.Equal(t, Counts{Total: 5, Success: 2, Failed: 1, Error: 2}, stats.All)
	assert.Equal(t, Counts{Total: 2, Success: 1, Failed: 1}, stats.Today)
	assert.Equal(t, Counts{Total: 4, Success: 2, Failed: 1, Error: 1}, stats.LastSevenDays)
	assert.InDelta(t, 40.0, stats.All.SuccessRate(), 0.001)
	assert.Equal(t, 0.0, Counts{}.SuccessRate())
}

func TestStoreCountDays(t *testing.T) {
	s := seededStore(t)

	day := s.CountDays(now, now)
	assert.Equal(t, 2, day.Total)

	// Reversed bounds are swapped.
	week := s.CountDays(now, now.AddDate(0, 0, -6))
	assert.Equal(t, Counts{Total: 4, Success: 2, Failed: 1, Error: 1}, week)
}

func TestStoreConcurrentAdd(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Add(record(fmt.Sprintf("f%d.xml", i), StatusSuccess, now))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}
