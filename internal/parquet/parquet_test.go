package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	schema := parquet.SchemaOf(new(Run))
	require.NotNil(t, schema)

	// Check that all expected columns exist
	expectedColumns := []string{
		"run_id",
		"project",
		"granularity",
		"window_start",
		"window_end",
		"start_time",
		"end_time",
		"run_duration_ms",
		"total_rows",
		"config_params",
	}

	for _, colName := range expectedColumns {
		col, ok := schema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestRunRowStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	schema := parquet.SchemaOf(new(RunRow))
	require.NotNil(t, schema)

	expectedColumns := []string{
		"run_id",
		"period_start",
		"state",
		"item_count",
		"period_total",
	}

	for _, colName := range expectedColumns {
		col, ok := schema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "cfd_runs.parquet")

	// Get mock data
	data := MockFetchRuns()
	require.NotEmpty(t, data, "Mock data should not be empty")

	// Write data to Parquet file
	err := WriteRunsParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[Run](file)
	defer reader.Close()

	readData := make([]Run, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	// Verify data integrity
	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].RunID, readData[i].RunID, "RunID should match")
		assert.Equal(t, data[i].Project, readData[i].Project, "Project should match")
		assert.Equal(t, data[i].Granularity, readData[i].Granularity, "Granularity should match")
		assert.Equal(t, data[i].TotalRows, readData[i].TotalRows, "TotalRows should match")

		// Check nullable fields
		if data[i].EndTime == nil {
			assert.Nil(t, readData[i].EndTime, "EndTime should be nil")
		} else {
			require.NotNil(t, readData[i].EndTime, "EndTime should not be nil")
			assert.WithinDuration(t, *data[i].EndTime, *readData[i].EndTime, time.Nanosecond, "EndTime should match within nanosecond precision")
		}

		if data[i].RunDurationMs == nil {
			assert.Nil(t, readData[i].RunDurationMs, "RunDurationMs should be nil")
		} else {
			require.NotNil(t, readData[i].RunDurationMs, "RunDurationMs should not be nil")
			assert.Equal(t, *data[i].RunDurationMs, *readData[i].RunDurationMs, "RunDurationMs should match")
		}

		if data[i].ConfigParams == nil {
			assert.Nil(t, readData[i].ConfigParams, "ConfigParams should be nil")
		} else {
			require.NotNil(t, readData[i].ConfigParams, "ConfigParams should not be nil")
			assert.Equal(t, *data[i].ConfigParams, *readData[i].ConfigParams, "ConfigParams should match")
		}
	}
}

func TestWriteRunRowsParquet(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "cfd_run_rows.parquet")

	// Get mock data
	data := MockFetchRunRows()
	require.NotEmpty(t, data, "Mock data should not be empty")

	// Write data to Parquet file
	err := WriteRunRowsParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[RunRow](file)
	defer reader.Close()

	readData := make([]RunRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	// Verify data integrity
	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].RunID, readData[i].RunID, "RunID should match")
		assert.Equal(t, data[i].State, readData[i].State, "State should match")
		assert.Equal(t, data[i].ItemCount, readData[i].ItemCount, "ItemCount should match")
		assert.Equal(t, data[i].PeriodTotal, readData[i].PeriodTotal, "PeriodTotal should match")
		assert.WithinDuration(t, data[i].PeriodStart, readData[i].PeriodStart, time.Nanosecond, "PeriodStart should match")
	}
}

func TestWriteRunsParquet_EmptyData(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty_cfd_runs.parquet")

	// Write empty data
	err := WriteRunsParquet([]Run{}, outputPath)
	require.NoError(t, err, "Writing empty data should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteRunsParquet_InvalidPath(t *testing.T) {
	// Try to write to invalid path
	data := MockFetchRuns()
	err := WriteRunsParquet(data, "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

func TestWriteRunRowsParquet_InvalidPath(t *testing.T) {
	// Try to write to invalid path
	data := MockFetchRunRows()
	err := WriteRunRowsParquet(data, "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

func TestMockFetchRuns(t *testing.T) {
	data := MockFetchRuns()
	require.NotEmpty(t, data, "Mock data should not be empty")
	assert.Len(t, data, 3, "Should return 3 mock records")

	// Verify the structure of mock data
	assert.NotEmpty(t, data[0].RunID)
	assert.NotNil(t, data[0].EndTime, "First record should have EndTime")
	assert.NotNil(t, data[0].RunDurationMs, "First record should have RunDurationMs")
	assert.NotNil(t, data[0].ConfigParams, "First record should have ConfigParams")

	// Third record should have nil nullable fields
	assert.Nil(t, data[2].EndTime, "Third record should have nil EndTime")
	assert.Nil(t, data[2].RunDurationMs, "Third record should have nil RunDurationMs")
	assert.Nil(t, data[2].ConfigParams, "Third record should have nil ConfigParams")
}

func TestNullableFieldHandling(t *testing.T) {
	// Test that we can create structs with various combinations of null fields
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "nullable_test.parquet")

	now := time.Now()
	endTime := now.Add(1 * time.Hour)
	durationMs := int32(3600000)
	config := `{"granularity":"day"}`

	testData := []Run{
		// All fields populated
		{
			RunID:         "run-1",
			Project:       "acme-board",
			Granularity:   "day",
			WindowStart:   now.AddDate(0, -1, 0),
			WindowEnd:     now,
			StartTime:     now,
			EndTime:       &endTime,
			RunDurationMs: &durationMs,
			TotalRows:     100,
			ConfigParams:  &config,
		},
		// All nullable fields are nil
		{
			RunID:         "run-2",
			Project:       "acme-board",
			Granularity:   "day",
			WindowStart:   now.AddDate(0, -1, 0),
			WindowEnd:     now,
			StartTime:     now,
			EndTime:       nil,
			RunDurationMs: nil,
			TotalRows:     0,
			ConfigParams:  nil,
		},
	}

	// Write and read back
	err := WriteRunsParquet(testData, outputPath)
	require.NoError(t, err)

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[Run](file)
	defer reader.Close()

	readData := make([]Run, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	assert.Equal(t, len(testData), n)

	// Verify first record has all fields
	assert.NotNil(t, readData[0].EndTime)
	assert.NotNil(t, readData[0].RunDurationMs)
	assert.NotNil(t, readData[0].ConfigParams)

	// Verify second record has nil nullable fields
	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].RunDurationMs)
	assert.Nil(t, readData[1].ConfigParams)
}
