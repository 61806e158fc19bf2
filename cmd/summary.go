package cmd

import (
	"github.com/spf13/cobra"
	"github.com/taigaflow/taigaflow/core"
	"github.com/taigaflow/taigaflow/internal/contract"
)

// summaryCmd condenses the last month of flow into headline numbers.
var summaryCmd = &cobra.Command{
	Use:   "summary [project-slug]",
	Short: "Show headline flow numbers for the most recent month.",
	Long: `Run a quick day-granularity analysis over the last 30 days and print
condensed flow numbers instead of the full dataset.

Shows per state:
- Item counts at the start and end of the window
- Net movement and its trend direction

Plus overall totals, the busiest state and the share of items in closed states.

Examples:
  # Quick health check on a project
  taigaflow summary my-project

  # Machine readable summary
  taigaflow summary my-project --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("Cannot summarize flow", err)
		}
	},
}
