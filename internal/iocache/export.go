package iocache

import (
	"errors"
	"fmt"

	"github.com/taigaflow/taigaflow/internal/parquet"
	"github.com/taigaflow/taigaflow/schema"
)

// ExecuteSnapshotExport performs the actual export of recorded flow data to Parquet files.
// When runID is set, only that run and its rows are exported.
func ExecuteSnapshotExport(outputFile, runID string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the snapshot store
	store := Manager.GetSnapshotStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get snapshot status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no flow data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total generation runs: %d\n", status.TotalRuns)
	fmt.Printf("Total flow rows: %d\n", status.TableSizes[runRowsTable])

	// Retrieve the runs to export
	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	if runID != "" {
		var matched []schema.RunRecord
		for _, run := range runs {
			if run.RunID == runID {
				matched = append(matched, run)
			}
		}
		if len(matched) == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		runs = matched
	}

	// Retrieve the flow rows for each run
	var runRows []schema.RunRowRecord
	for _, run := range runs {
		rows, err := store.GetRunRows(run.RunID)
		if err != nil {
			return fmt.Errorf("failed to retrieve rows for run %s: %w", run.RunID, err)
		}
		runRows = append(runRows, rows...)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetRows := parquet.ConvertRunRowRecords(runRows)

	// Write runs to Parquet
	runsFile := outputFile + ".cfd_runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	// Write flow rows to Parquet
	rowsFile := outputFile + ".cfd_run_rows.parquet"
	if err := parquet.WriteRunRowsParquet(parquetRows, rowsFile); err != nil {
		return fmt.Errorf("failed to write flow rows: %w", err)
	}
	fmt.Printf("Exported %d flow rows to: %s\n", len(parquetRows), rowsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
