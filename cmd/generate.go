package cmd

import (
	"github.com/spf13/cobra"
	"github.com/taigaflow/taigaflow/core"
	"github.com/taigaflow/taigaflow/internal/contract"
)

// generateCmd builds the cumulative flow dataset for a project.
var generateCmd = &cobra.Command{
	Use:   "generate [project-slug]",
	Short: "Build a cumulative flow dataset for a Taiga project.",
	Long: `Fetch user story history from Taiga and replay it into one row per period,
counting the items sitting in each workflow state at the period boundary.

The dataset is the raw material for a cumulative flow diagram, helping you:
- See where work accumulates across the board over time
- Spot growing in-progress bands that signal bottlenecks
- Track how fast items enter and leave the workflow
- Feed spreadsheets, notebooks and BI tools with flow data

Examples:
  # Daily flow over the default lookback window
  taigaflow generate my-project

  # Weekly flow for the first quarter
  taigaflow generate my-project --granularity week --start 2024-01-01 --end 2024-03-31

  # Export findings to CSV for tracking
  taigaflow generate my-project --output csv --output-file flow.csv

  # Columnar export for DuckDB or pandas
  taigaflow generate my-project --output parquet --output-file flow.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGenerate(rootCtx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("Cannot generate flow dataset", err)
		}
	},
}
