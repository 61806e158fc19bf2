package cmd

import (
	"github.com/spf13/cobra"
	"github.com/taigaflow/taigaflow/core"
	"github.com/taigaflow/taigaflow/internal/contract"
)

// statusesCmd lists the workflow states of a project.
var statusesCmd = &cobra.Command{
	Use:   "statuses [project-slug]",
	Short: "List the workflow states of a Taiga project in board order.",
	Long: `Look up the user story statuses configured for a project and print them
in board order, the same order the flow dataset uses for its columns.

Use this to:
- Verify the workflow before generating a dataset
- Check which states count as closed
- Inspect state slugs and colors for downstream tooling

Examples:
  # List states for a project
  taigaflow statuses my-project

  # Include slugs, closed flags and colors
  taigaflow statuses my-project --detail`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStatuses(rootCtx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("Cannot list workflow states", err)
		}
	},
}
