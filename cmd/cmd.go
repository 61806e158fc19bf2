// Package cmd defines the command-line interface for taigaflow.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(statusesCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(snapshotCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-state metadata (slug, closed flag, color)")
	rootCmd.PersistentFlags().String("start", "", "Window start date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "Window end date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("lookback", "3 months", "Time duration to look back when no start date is given")
	rootCmd.PersistentFlags().StringP("granularity", "g", string(schema.DayGranularity), "Period granularity: day or week or month")
	rootCmd.PersistentFlags().String("states", "", "Comma-separated state names overriding the project's board order (must cover every status in the history)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent history fetchers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("base-url", "", "Taiga API base URL (defaults to the hosted service)")
	rootCmd.PersistentFlags().String("auth-token", "", "Taiga API auth token (prefer TAIGAFLOW_AUTH_TOKEN)")
	rootCmd.PersistentFlags().String("username", "", "Taiga username for password login")
	rootCmd.PersistentFlags().String("password", "", "Taiga password (prefer TAIGAFLOW_PASSWORD)")
	rootCmd.PersistentFlags().Int("page-size", contract.DefaultPageSize, "User stories fetched per API page")
	rootCmd.PersistentFlags().Int("max-pages", contract.DefaultMaxPages, "Upper bound on API pages fetched per listing")
	rootCmd.PersistentFlags().String("timeout", "", "HTTP client timeout (e.g. 30s, 2m)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("snapshot-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Listen address for the HTTP server (host:port or :port)")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of snapshotExportCmd to Viper
	snapshotExportCmd.Flags().String("run-id", "", "Export only the run with this ID (defaults to all runs)")
	if err := viper.BindPFlags(snapshotExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot export flags", err)
	}

	// Bind all flags of snapshotMigrateCmd to Viper
	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot migrate flags", err)
	}
}
