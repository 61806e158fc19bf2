// Package parquet provides data structures and functions for exporting
// recorded flow data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/taigaflow/taigaflow/schema"
)

// Run represents a single CFD generation run with metadata.
// This struct maps to the cfd_runs database table.
type Run struct {
	// RunID is the unique identifier for this generation run
	RunID string `parquet:"run_id,snappy"`

	// Project is the slug of the project the run covered
	Project string `parquet:"project,snappy"`

	// Granularity is the bucket size used for the run (day, week, month)
	Granularity string `parquet:"granularity,snappy"`

	// WindowStart is the inclusive start of the reporting window
	WindowStart time.Time `parquet:"window_start,snappy"`

	// WindowEnd is the inclusive end of the reporting window
	WindowEnd time.Time `parquet:"window_end,snappy"`

	// StartTime is when the generation began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the generation completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRows is the number of flow rows recorded in this run
	TotalRows int32 `parquet:"total_rows,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunRow represents one state count within one period of a generation run.
// This struct maps to the cfd_run_rows database table.
type RunRow struct {
	// RunID references the parent generation run
	RunID string `parquet:"run_id,snappy"`

	// PeriodStart is the inclusive start of the bucket
	PeriodStart time.Time `parquet:"period_start,snappy"`

	// State is the workflow state name
	State string `parquet:"state,snappy"`

	// ItemCount is the number of items sitting in the state at the bucket boundary
	ItemCount int32 `parquet:"item_count,snappy"`

	// PeriodTotal is the total number of items across all states in the bucket
	PeriodTotal int32 `parquet:"period_total,snappy"`
}

// CFDRecord is the flattened form of one state count within one period of a
// freshly computed dataset. Used for direct parquet output of a generation run.
type CFDRecord struct {
	// Project is the slug of the project the dataset covers
	Project string `parquet:"project,snappy"`

	// Granularity is the bucket size of the dataset (day, week, month)
	Granularity string `parquet:"granularity,snappy"`

	// PeriodStart is the inclusive start of the bucket
	PeriodStart time.Time `parquet:"period_start,snappy"`

	// State is the workflow state name
	State string `parquet:"state,snappy"`

	// ItemCount is the number of items sitting in the state at the bucket boundary
	ItemCount int32 `parquet:"item_count,snappy"`

	// PeriodTotal is the total number of items across all states in the bucket
	PeriodTotal int32 `parquet:"period_total,snappy"`
}

// WriteCFDParquet writes a slice of CFDRecord structs to a Parquet file.
func WriteCFDParquet(data []CFDRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[CFDRecord](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertCFDResult flattens a computed dataset into CFDRecord rows, one per
// period and state, in workflow order.
func ConvertCFDResult(result *schema.CFDResult) []CFDRecord {
	records := make([]CFDRecord, 0, len(result.Rows)*len(result.States))
	for _, row := range result.Rows {
		for _, state := range result.States {
			records = append(records, CFDRecord{
				Project:     result.Project,
				Granularity: string(result.Granularity),
				PeriodStart: row.PeriodStart,
				State:       state,
				ItemCount:   int32(row.Counts[state]),
				PeriodTotal: int32(row.Total),
			})
		}
	}
	return records
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteRunRowsParquet writes a slice of RunRow structs to a Parquet file.
func WriteRunRowsParquet(data []RunRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the RunRow struct tags
	writer := parquet.NewGenericWriter[RunRow](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchRuns generates sample Run data for demonstration.
func MockFetchRuns() []Run {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := startTime1.Add(45 * time.Second)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	configParams1 := `{"granularity":"day","workers":4}`

	startTime2 := now.Add(-24 * time.Hour)
	endTime2 := startTime2.Add(2 * time.Minute)
	durationMs2 := int32(endTime2.Sub(startTime2).Milliseconds())
	configParams2 := `{"granularity":"week","workers":8}`

	startTime3 := now.Add(-10 * time.Minute)
	// Note: endTime3, durationMs3, configParams3 are nil to demonstrate nullable fields

	return []Run{
		{
			RunID:         uuid.NewString(),
			Project:       "acme-board",
			Granularity:   "day",
			WindowStart:   now.AddDate(0, -1, 0),
			WindowEnd:     now,
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			TotalRows:     90,
			ConfigParams:  &configParams1,
		},
		{
			RunID:         uuid.NewString(),
			Project:       "acme-board",
			Granularity:   "week",
			WindowStart:   now.AddDate(0, -3, 0),
			WindowEnd:     now,
			StartTime:     startTime2,
			EndTime:       &endTime2,
			RunDurationMs: &durationMs2,
			TotalRows:     39,
			ConfigParams:  &configParams2,
		},
		{
			RunID:         uuid.NewString(),
			Project:       "kanban-team",
			Granularity:   "day",
			WindowStart:   now.AddDate(0, 0, -7),
			WindowEnd:     now,
			StartTime:     startTime3,
			EndTime:       nil, // Still running - nullable field
			RunDurationMs: nil, // Not yet calculated - nullable field
			TotalRows:     0,
			ConfigParams:  nil, // No config stored - nullable field
		},
	}
}

// MockFetchRunRows generates sample RunRow data for demonstration.
func MockFetchRunRows() []RunRow {
	now := time.Now()
	runID := uuid.NewString()
	day1 := now.AddDate(0, 0, -2).Truncate(24 * time.Hour)
	day2 := day1.AddDate(0, 0, 1)

	return []RunRow{
		{RunID: runID, PeriodStart: day1, State: "New", ItemCount: 12, PeriodTotal: 30},
		{RunID: runID, PeriodStart: day1, State: "In progress", ItemCount: 10, PeriodTotal: 30},
		{RunID: runID, PeriodStart: day1, State: "Done", ItemCount: 8, PeriodTotal: 30},
		{RunID: runID, PeriodStart: day2, State: "New", ItemCount: 9, PeriodTotal: 32},
		{RunID: runID, PeriodStart: day2, State: "In progress", ItemCount: 11, PeriodTotal: 32},
		{RunID: runID, PeriodStart: day2, State: "Done", ItemCount: 12, PeriodTotal: 32},
	}
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Project:       record.Project,
			Granularity:   record.Granularity,
			WindowStart:   record.WindowStart,
			WindowEnd:     record.WindowEnd,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRows:     record.TotalRows,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertRunRowRecords converts schema.RunRowRecord to RunRow for Parquet export.
func ConvertRunRowRecords(records []schema.RunRowRecord) []RunRow {
	result := make([]RunRow, len(records))
	for i, record := range records {
		result[i] = RunRow{
			RunID:       record.RunID,
			PeriodStart: record.PeriodStart,
			State:       record.State,
			ItemCount:   record.ItemCount,
			PeriodTotal: record.PeriodTotal,
		}
	}
	return result
}
