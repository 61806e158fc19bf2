package schema

import "time"

// RunRecord represents a row from the cfd_runs table.
type RunRecord struct {
	RunID         string
	Project       string
	Granularity   string
	WindowStart   time.Time
	WindowEnd     time.Time
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRows     int32
	ConfigParams  *string
}

// RunRowRecord represents a row from the cfd_run_rows table.
type RunRowRecord struct {
	RunID       string
	PeriodStart time.Time
	State       string
	ItemCount   int32
	PeriodTotal int32
}
