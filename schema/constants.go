package schema

import (
	"strings"
	"time"
)

// Custom string types for type safety.
type (
	// Granularity represents the calendar bucket size for CFD periods.
	Granularity string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// All granularities supported.
const (
	DayGranularity   Granularity = "day" // default
	WeekGranularity  Granularity = "week"
	MonthGranularity Granularity = "month"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidGranularities lists all valid granularities.
var ValidGranularities = map[Granularity]struct{}{
	DayGranularity:   {},
	WeekGranularity:  {},
	MonthGranularity: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// granularityAliases resolves common alternate spellings to canonical values.
var granularityAliases = map[string]Granularity{
	"daily":   DayGranularity,
	"weekly":  WeekGranularity,
	"monthly": MonthGranularity,
}

// NormalizeGranularity lowercases s and resolves daily/weekly/monthly
// aliases. The boolean reports whether the result is a recognized value.
func NormalizeGranularity(s string) (Granularity, bool) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if alias, ok := granularityAliases[string(g)]; ok {
		g = alias
	}
	if _, ok := ValidGranularities[g]; !ok {
		return "", false
	}
	return g, true
}

// Next returns the start boundary of the bucket following the one at t.
// Day and week are fixed spans; month advances by calendar month.
func (g Granularity) Next(t time.Time) time.Time {
	switch g {
	case WeekGranularity:
		return t.AddDate(0, 0, 7)
	case MonthGranularity:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}
