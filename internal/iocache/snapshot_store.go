package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// Table names for run tracking.
const (
	runsTable    = "cfd_runs"
	runRowsTable = "cfd_run_rows"
)

// SnapshotStoreImpl implements the SnapshotStore interface.
type SnapshotStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore creates a new SnapshotStore with the specified backend.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetSnapshotDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &SnapshotStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createSnapshotTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot tables: %w", err)
	}

	return &SnapshotStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createSnapshotTables creates the run tracking tables.
func createSnapshotTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{runRowsTable, getCreateRunRowsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for cfd_runs.
// Run ids are client-generated UUIDs so the schema stays identical across
// backends whose autoincrement semantics differ.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id CHAR(36) PRIMARY KEY,
				project VARCHAR(255) NOT NULL,
				granularity VARCHAR(16) NOT NULL,
				window_start DATETIME(6) NOT NULL,
				window_end DATETIME(6) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				project TEXT NOT NULL,
				granularity TEXT NOT NULL,
				window_start TIMESTAMPTZ NOT NULL,
				window_end TIMESTAMPTZ NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				project TEXT NOT NULL,
				granularity TEXT NOT NULL,
				window_start TEXT NOT NULL,
				window_end TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_rows INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunRowsQuery returns the CREATE TABLE query for cfd_run_rows.
func getCreateRunRowsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runRowsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id CHAR(36) NOT NULL,
				period_start DATETIME(6) NOT NULL,
				state VARCHAR(255) NOT NULL,
				item_count INT NOT NULL,
				period_total INT NOT NULL,
				PRIMARY KEY (run_id, period_start, state)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				period_start TIMESTAMPTZ NOT NULL,
				state TEXT NOT NULL,
				item_count INT NOT NULL,
				period_total INT NOT NULL,
				PRIMARY KEY (run_id, period_start, state)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				period_start TEXT NOT NULL,
				state TEXT NOT NULL,
				item_count INTEGER NOT NULL,
				period_total INTEGER NOT NULL,
				PRIMARY KEY (run_id, period_start, state)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new generation run and returns its unique ID.
func (ss *SnapshotStoreImpl) BeginRun(startTime time.Time, project string, granularity schema.Granularity, windowStart, windowEnd time.Time, configParams map[string]any) (string, error) {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return "", nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.NewString()
	quotedTableName := quoteTableName(runsTable, ss.backend)

	var query string
	switch ss.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (run_id, project, granularity, window_start, window_end, start_time, config_params) VALUES ($1, $2, $3, $4, $5, $6, $7)`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (run_id, project, granularity, window_start, window_end, start_time, config_params) VALUES (?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
	}

	_, err = ss.db.Exec(query,
		runID, project, string(granularity),
		formatTime(windowStart, ss.backend), formatTime(windowEnd, ss.backend),
		formatTime(startTime, ss.backend), string(configJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert run record: %w", err)
	}

	return runID, nil
}

// EndRun updates the generation run with completion data.
func (ss *SnapshotStoreImpl) EndRun(runID string, endTime time.Time, totalRows int) error {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(runsTable, ss.backend)

	var query string
	switch ss.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)
	}

	startTime, err := scanTimeRow(ss.db.QueryRow(query, runID), ss.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	// Update the run with completion data
	var updateQuery string
	var args []any

	switch ss.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_rows = $3 WHERE run_id = $4`, quotedTableName)
		args = []any{endTime, durationMs, totalRows, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_rows = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, ss.backend), durationMs, totalRows, runID}
	}

	if _, err := ss.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update run record: %w", err)
	}

	return nil
}

// RecordRows stores the computed per-period state counts for a run.
// States are written in workflow order so exports keep the column semantics.
func (ss *SnapshotStoreImpl) RecordRows(runID string, states []string, rows []schema.CFDRow) error {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runRowsTable, ss.backend)

	var query string
	switch ss.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (run_id, period_start, state, item_count, period_total) VALUES ($1, $2, $3, $4, $5)`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (run_id, period_start, state, item_count, period_total) VALUES (?, ?, ?, ?, ?)`, quotedTableName)
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin row insert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		for _, state := range states {
			if _, err := stmt.Exec(runID, formatTime(row.PeriodStart, ss.backend), state, row.Counts[state], row.Total); err != nil {
				return fmt.Errorf("failed to insert row for period %s state %q: %w", row.PeriodStart.Format(time.RFC3339), state, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit row inserts: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every recorded run.
func (ss *SnapshotStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runsTable, ss.backend)
	query := fmt.Sprintf("SELECT run_id, project, granularity, window_start, window_end, start_time, end_time, run_duration_ms, total_rows, config_params FROM %s ORDER BY start_time DESC", quotedTableName)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord

	for rows.Next() {
		var record schema.RunRecord

		switch ss.backend {
		case schema.SQLiteBackend:
			var windowStartStr, windowEndStr, startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.Project, &record.Granularity, &windowStartStr, &windowEndStr, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.TotalRows, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
			if record.WindowStart, err = time.Parse(time.RFC3339Nano, windowStartStr); err != nil {
				return nil, fmt.Errorf("failed to parse window_start: %w", err)
			}
			if record.WindowEnd, err = time.Parse(time.RFC3339Nano, windowEndStr); err != nil {
				return nil, fmt.Errorf("failed to parse window_end: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Project, &record.Granularity, &record.WindowStart, &record.WindowEnd, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.TotalRows, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetRunRows returns the stored rows for a run in period order.
func (ss *SnapshotStoreImpl) GetRunRows(runID string) ([]schema.RunRowRecord, error) {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runRowsTable, ss.backend)
	var query string
	switch ss.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf("SELECT run_id, period_start, state, item_count, period_total FROM %s WHERE run_id = $1 ORDER BY period_start, state", quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf("SELECT run_id, period_start, state, item_count, period_total FROM %s WHERE run_id = ? ORDER BY period_start, state", quotedTableName)
	}

	rows, err := ss.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRowRecord

	for rows.Next() {
		var record schema.RunRowRecord

		switch ss.backend {
		case schema.SQLiteBackend:
			var periodStartStr string
			if err := rows.Scan(&record.RunID, &periodStartStr, &record.State, &record.ItemCount, &record.PeriodTotal); err != nil {
				return nil, fmt.Errorf("failed to scan run row: %w", err)
			}
			if record.PeriodStart, err = time.Parse(time.RFC3339Nano, periodStartStr); err != nil {
				return nil, fmt.Errorf("failed to parse period_start: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.PeriodStart, &record.State, &record.ItemCount, &record.PeriodTotal); err != nil {
				return nil, fmt.Errorf("failed to scan run row: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:    string(ss.backend),
		Connected:  ss.db != nil,
		TableSizes: make(map[string]int64),
	}

	if ss.backend == schema.NoneBackend || ss.db == nil {
		return status, nil
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, ss.backend))
	row := ss.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", quoteTableName(runsTable, ss.backend))
		row = ss.db.QueryRow(lastRunQuery)

		switch ss.backend {
		case schema.SQLiteBackend:
			var lastRunTimeStr string
			if err := row.Scan(&status.LastRunID, &lastRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
			lastRunTime, err := time.Parse(time.RFC3339Nano, lastRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			status.LastRunTime = lastRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.LastRunID, &status.LastRunTime); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
		}

		// Get oldest run time
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quoteTableName(runsTable, ss.backend))
		oldestRunTime, err := scanTimeRow(ss.db.QueryRow(oldestRunQuery), ss.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		// Get total rows recorded
		rowsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_rows), 0) FROM %s", quoteTableName(runsTable, ss.backend))
		row = ss.db.QueryRow(rowsQuery)
		if err := row.Scan(&status.TotalRows); err != nil {
			return status, fmt.Errorf("failed to get total rows: %w", err)
		}
	}

	// Get table sizes
	tables := []string{runsTable, runRowsTable}
	for _, table := range tables {
		quotedTable := quoteTableName(table, ss.backend)
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)
		row = ss.db.QueryRow(countQuery)
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// scanTimeRow scans a single-column time row, handling the SQLite text format.
func scanTimeRow(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	if err := row.Scan(&t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}
