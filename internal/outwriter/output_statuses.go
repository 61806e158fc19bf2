package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// statusListing pairs the resolved project with its workflow for JSON output.
type statusListing struct {
	Project  schema.Project         `json:"project"`
	Statuses []schema.ProjectStatus `json:"statuses"`
}

// PrintStatusResults outputs the project's workflow states, dispatching based
// on the output format configured.
func PrintStatusResults(project schema.Project, statuses []schema.ProjectStatus, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForStatuses(project, statuses, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForStatuses(statuses, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		if err := printStatusesTable(project, statuses, cfg, duration); err != nil {
			return fmt.Errorf("error writing status table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForStatuses handles opening the file and calling the JSON writer.
func printJSONResultsForStatuses(project schema.Project, statuses []schema.ProjectStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, statusListing{Project: project, Statuses: statuses})
	}, "Wrote JSON status results")
}

// printCSVResultsForStatuses handles opening the file and calling the CSV writer.
func printCSVResultsForStatuses(statuses []schema.ProjectStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForStatuses(w, statuses)
	}, "Wrote CSV status results")
}

// printStatusesTable prints the workflow states in board order.
func printStatusesTable(project schema.Project, statuses []schema.ProjectStatus, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	headers := []string{"Order", "Name", "Slug", "Closed"}
	if cfg.Detail {
		headers = append(headers, "Color")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range statuses {
		row := []string{
			strconv.Itoa(s.Order),
			s.Name,
			s.Slug,
			strconv.FormatBool(s.IsClosed),
		}
		if cfg.Detail {
			row = append(row, s.Color)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Workflow for %s has %d states. Lookup completed in %v\n", project.Slug, len(statuses), duration)
	return nil
}
