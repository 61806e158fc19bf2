package iocache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigaflow/taigaflow/schema"
)

func sampleRows() []schema.CFDRow {
	return []schema.CFDRow{
		{
			PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Counts:      map[string]int{"New": 3, "In progress": 1, "Done": 0},
			Total:       4,
		},
		{
			PeriodStart: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Counts:      map[string]int{"New": 2, "In progress": 1, "Done": 1},
			Total:       4,
		},
	}
}

func TestSnapshotStore_NoneBackend(t *testing.T) {
	store, err := NewSnapshotStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// BeginRun should return an empty ID for NoneBackend
	runID, err := store.BeginRun(time.Now(), "acme-board", schema.DayGranularity, time.Now(), time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Empty(t, runID)

	// Other operations should not error
	assert.NoError(t, store.EndRun("", time.Now(), 10))
	assert.NoError(t, store.RecordRows("", []string{"New"}, sampleRows()))

	runs, err := store.ListRuns(10)
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestSnapshotStore_SQLite(t *testing.T) {
	// Use in-memory SQLite for testing
	store, err := NewSnapshotStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	configParams := map[string]any{
		"granularity": "day",
		"project":     "acme-board",
	}

	runID, err := store.BeginRun(time.Now(), "acme-board", schema.DayGranularity, windowStart, windowEnd, configParams)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	states := []string{"New", "In progress", "Done"}
	require.NoError(t, store.RecordRows(runID, states, sampleRows()))
	require.NoError(t, store.EndRun(runID, time.Now(), 6))

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "acme-board", runs[0].Project)
	assert.Equal(t, "day", runs[0].Granularity)
	assert.Equal(t, int32(6), runs[0].TotalRows)
	require.NotNil(t, runs[0].EndTime)
	require.NotNil(t, runs[0].RunDurationMs)
	assert.GreaterOrEqual(t, *runs[0].RunDurationMs, int32(0))
}

func TestSnapshotStore_GetRunRows(t *testing.T) {
	store, err := NewSnapshotStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), "acme-board", schema.DayGranularity, time.Now(), time.Now(), nil)
	require.NoError(t, err)

	states := []string{"New", "Done"}
	require.NoError(t, store.RecordRows(runID, states, sampleRows()))

	rows, err := store.GetRunRows(runID)
	require.NoError(t, err)
	require.Len(t, rows, 4) // 2 periods x 2 states

	// Rows come back in period order, states sorted within a period
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rows[0].PeriodStart)
	assert.Equal(t, "Done", rows[0].State)
	assert.Equal(t, int32(0), rows[0].ItemCount)
	assert.Equal(t, "New", rows[1].State)
	assert.Equal(t, int32(3), rows[1].ItemCount)
	assert.Equal(t, int32(4), rows[1].PeriodTotal)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rows[2].PeriodStart)

	// Unknown run has no rows
	unknown, err := store.GetRunRows("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestSnapshotStore_ListRunsLimit(t *testing.T) {
	store, err := NewSnapshotStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var lastID string
	for i := range 3 {
		id, err := store.BeginRun(base.Add(time.Duration(i)*time.Hour), "acme-board", schema.WeekGranularity, base, base.AddDate(0, 0, 7), nil)
		require.NoError(t, err)
		lastID = id
	}

	// Newest first, limited
	runs, err := store.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, lastID, runs[0].RunID)

	// Zero limit returns everything
	all, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSnapshotStore_GetStatus(t *testing.T) {
	store, err := NewSnapshotStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)

	runID, err := store.BeginRun(time.Now(), "acme-board", schema.DayGranularity, time.Now(), time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordRows(runID, []string{"New", "Done"}, sampleRows()))
	require.NoError(t, store.EndRun(runID, time.Now(), 4))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 4, status.TotalRows)
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
	assert.Equal(t, int64(4), status.TableSizes[runRowsTable])
}

func TestSnapshotStore_UnsupportedBackend(t *testing.T) {
	_, err := NewSnapshotStore(schema.DatabaseBackend("bogus"), "")
	assert.Error(t, err)
}
