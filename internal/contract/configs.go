package contract

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taigaflow/taigaflow/schema"
)

// Default values for configuration.
const (
	DefaultLookbackMonths = 3
	DefaultResultLimit    = 25
	MaxResultLimit        = 1000
	DefaultPageSize       = 100
	MaxPageSize           = 100
	DefaultMaxPages       = 20
	DefaultHTTPTimeout    = 30 * time.Second
)

// DefaultBaseURL is the hosted Taiga API endpoint used when no override is given.
const DefaultBaseURL = "https://api.taiga.io"

// DefaultServeAddr is the default listen address for the HTTP server.
const DefaultServeAddr = ":8080"

// WindowAlignment defines the time granularity for aligning analysis windows.
// Start and end times are truncated to UTC midnight so that cache key
// generation and period bucketing stay consistent across the application and tests.
const WindowAlignment = 24 * time.Hour

// DefaultWorkers is the default number of concurrent history fetchers.
var DefaultWorkers = min(runtime.GOMAXPROCS(0), 8)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateFormat is the compact date representation used for day-level inputs and CSV output.
var DateFormat = time.DateOnly

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for flow generation.
// This struct remains the "final, validated" config.
type Config struct {
	ProjectSlug string
	StartTime   time.Time
	EndTime     time.Time
	Granularity schema.Granularity
	States      []string // Explicit state order; empty means the project's board order
	ResultLimit int
	Workers     int
	Detail      bool
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	BaseURL     string
	AuthToken   string // Please use env var as this is plaintext
	Username    string
	Password    string // Please use env var as this is plaintext
	PageSize    int
	MaxPages    int
	HTTPTimeout time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext

	ServeAddr string
	RunID     string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ProjectSlugStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile        string `mapstructure:"output-file"`
	Limit             int    `mapstructure:"limit"`
	Start             string `mapstructure:"start"`
	End               string `mapstructure:"end"`
	Lookback          string `mapstructure:"lookback"`
	Granularity       string `mapstructure:"granularity"`
	States            string `mapstructure:"states"`
	Workers           int    `mapstructure:"workers"`
	Output            string `mapstructure:"output"`
	Detail            bool   `mapstructure:"detail"`
	Width             int    `mapstructure:"width"`
	BaseURL           string `mapstructure:"base-url"`
	AuthToken         string `mapstructure:"auth-token"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	PageSize          int    `mapstructure:"page-size"`
	MaxPages          int    `mapstructure:"max-pages"`
	Timeout           string `mapstructure:"timeout"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	SnapshotBackend   string `mapstructure:"snapshot-backend"`
	SnapshotDBConnect string `mapstructure:"snapshot-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Fields from exportCmd.Flags() ---
	RunID string `mapstructure:"run-id"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets the new StartTime and EndTime.
func (c *Config) CloneWithTimeWindow(start time.Time, end time.Time) *Config {
	clone := c.Clone()
	clone.StartTime = start
	clone.EndTime = end
	return clone
}

// GetWindowStartTime returns the configured start time, truncated to UTC midnight.
// This ensures consistent window alignment across the application and tests.
func (c *Config) GetWindowStartTime() time.Time {
	return c.StartTime.UTC().Truncate(WindowAlignment)
}

// GetWindowEndTime returns the configured end time, truncated to UTC midnight.
// This ensures consistent window alignment across the application and tests.
func (c *Config) GetWindowEndTime() time.Time {
	return c.EndTime.UTC().Truncate(WindowAlignment)
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processAPISettings(cfg, input); err != nil {
		return err
	}
	if err := processServeMode(cfg, input); err != nil {
		return err
	}
	if err := processExportMode(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and snapshot backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Snapshot Backend Validation ---
	cfg.SnapshotBackend = schema.DatabaseBackend(strings.ToLower(input.SnapshotBackend))
	if cfg.SnapshotBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.SnapshotBackend]; !ok {
			return fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", input.SnapshotBackend)
		}
		cfg.SnapshotDBConnect = input.SnapshotDBConnect
		if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
			return err
		}

		// Validate that cache and snapshot use different databases
		if cfg.CacheBackend == cfg.SnapshotBackend && cfg.CacheBackend != schema.NoneBackend {
			// For SQLite, resolve to actual file paths to catch default path conflicts
			if cfg.CacheBackend == schema.SQLiteBackend {
				cacheDBPath := cfg.CacheDBConnect
				if cacheDBPath == "" {
					cacheDBPath = GetCacheDBFilePath()
				}
				snapshotDBPath := cfg.SnapshotDBConnect
				if snapshotDBPath == "" {
					snapshotDBPath = GetSnapshotDBFilePath()
				}
				if cacheDBPath == snapshotDBPath {
					return fmt.Errorf("cache and snapshot storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
				}
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-time related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.ProjectSlug = strings.TrimSpace(input.ProjectSlugStr)
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width

	// Parse emoji flag. Empty means the default (on) so programmatic
	// callers without flag defaults behave like the CLI.
	cfg.UseEmojis = true
	if input.Emoji != "" {
		emojis, err := ParseBoolString(input.Emoji)
		if err != nil {
			return fmt.Errorf("invalid --emoji value: %w", err)
		}
		cfg.UseEmojis = emojis
	}

	// Parse color flag, same default handling as emoji
	cfg.UseColors = true
	if input.Color != "" {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		cfg.UseColors = colors
	}

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Granularity Validation ---
	granularity, ok := schema.NormalizeGranularity(input.Granularity)
	if !ok {
		return fmt.Errorf("invalid granularity '%s'. must be day, week, month", input.Granularity)
	}
	cfg.Granularity = granularity

	// --- 4. States Override ---
	cfg.States = SplitStateList(input.States)
	if input.States != "" && len(cfg.States) == 0 {
		return fmt.Errorf("invalid states list '%s'. expected comma-separated state names", input.States)
	}

	// --- 5. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 6. Backend Validation ---
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	return nil
}

// processTimeRange handles the complex date parsing and time range validation.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.EndTime = now
	cfg.StartTime = cfg.EndTime.AddDate(0, -DefaultLookbackMonths, 0)

	// --lookback moves the default start; an explicit --start still wins below.
	if input.Lookback != "" {
		lookback, err := ParseLookbackDuration(input.Lookback)
		if err != nil {
			return fmt.Errorf("invalid lookback: %w", err)
		}
		cfg.StartTime = cfg.EndTime.Add(-lookback)
	}

	parseAbsolute := func(s string) (time.Time, error) {
		if t, err := time.Parse(DateFormat, s); err == nil {
			return t, nil
		}
		return time.Parse(DateTimeFormat, s)
	}

	// --- Process Start Time ---
	if input.Start != "" {
		t, err := parseAbsolute(input.Start)
		if err == nil {
			cfg.StartTime = t
		} else {
			t, relErr := ParseRelativeTime(input.Start, now)
			if relErr != nil {
				return fmt.Errorf("invalid start date format for '%s'. Expected absolute ISO8601 or 'N [units] ago': %v", input.Start, err)
			}
			cfg.StartTime = t
		}
	}

	// --- Process End Time ---
	if input.End != "" {
		t, err := parseAbsolute(input.End)
		if err == nil {
			cfg.EndTime = t
		} else {
			t, relErr := ParseRelativeTime(input.End, now)
			if relErr != nil {
				return fmt.Errorf("invalid end date format for '%s'. Expected absolute ISO8601 or 'N [units] ago': %v", input.End, err)
			}
			cfg.EndTime = t
		}
	}

	// --- Final Validation ---
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	return nil
}

// processAPISettings handles the Taiga API connection parameters.
func processAPISettings(cfg *Config, input *ConfigRawInput) error {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(input.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid base URL '%s'. must include scheme and host", input.BaseURL)
	}

	cfg.AuthToken = strings.TrimSpace(input.AuthToken)
	cfg.Username = strings.TrimSpace(input.Username)
	cfg.Password = input.Password
	if cfg.Username != "" && cfg.Password == "" {
		return fmt.Errorf("password is required when username is set")
	}

	if input.PageSize <= 0 || input.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d (received %d)", MaxPageSize, input.PageSize)
	}
	cfg.PageSize = input.PageSize

	if input.MaxPages <= 0 {
		return fmt.Errorf("max pages must be greater than 0 (received %d)", input.MaxPages)
	}
	cfg.MaxPages = input.MaxPages

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", timeout)
		}
		cfg.HTTPTimeout = timeout
	}

	return nil
}

// processServeMode handles the HTTP server parameters.
func processServeMode(cfg *Config, input *ConfigRawInput) error {
	cfg.ServeAddr = strings.TrimSpace(input.Addr)
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}
	if !strings.Contains(cfg.ServeAddr, ":") {
		return fmt.Errorf("invalid listen address '%s'. expected host:port or :port", cfg.ServeAddr)
	}
	return nil
}

// processExportMode handles the snapshot export parameters.
func processExportMode(cfg *Config, input *ConfigRawInput) error {
	cfg.RunID = strings.TrimSpace(input.RunID)
	if cfg.RunID != "" {
		if _, err := uuid.Parse(cfg.RunID); err != nil {
			return fmt.Errorf("invalid run ID '%s': %w", cfg.RunID, err)
		}
	}
	return nil
}

// SplitStateList parses a comma-separated list of workflow state names.
// Surrounding whitespace is trimmed and empty entries are dropped, so
// "New, In progress,,Done" yields three names. Returns nil for a blank input.
func SplitStateList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var states []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			states = append(states, name)
		}
	}
	return states
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
