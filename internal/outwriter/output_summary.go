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

// PrintSummaryResults outputs the condensed flow numbers, dispatching based
// on the output format configured.
func PrintSummaryResults(summary schema.FlowSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForSummary(summary, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForSummary(summary, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		if err := printSummaryTable(summary, cfg, duration); err != nil {
			return fmt.Errorf("error writing summary table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForSummary handles opening the file and calling the JSON writer.
func printJSONResultsForSummary(summary schema.FlowSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, summary)
	}, "Wrote JSON summary results")
}

// printCSVResultsForSummary handles opening the file and calling the CSV writer.
func printCSVResultsForSummary(summary schema.FlowSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForSummary(w, summary)
	}, "Wrote CSV summary results")
}

// printSummaryTable prints the per-state movement table plus headline numbers.
func printSummaryTable(summary schema.FlowSummary, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header([]string{"State", "Start", "End", "Net", "Trend"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range summary.States {
		label := contract.GetPlainLabel(s.Net)
		if cfg.UseColors {
			label = contract.GetColorLabel(s.Net)
		}
		row := []string{
			s.State,
			strconv.Itoa(s.StartCount),
			strconv.Itoa(s.EndCount),
			fmt.Sprintf("%+d", s.Net),
			label,
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Project %s: %d items tracked, %d entered during the window\n",
		summary.Project, summary.TotalItems, summary.ItemsEntered)
	fmt.Printf("Busiest state: %s. Closed share: %.1f%%\n", summary.BusiestState, summary.ClosedShare*100)
	fmt.Printf("Summary over %s → %s completed in %v\n",
		summary.Start.Format(contract.DateFormat), summary.End.Format(contract.DateFormat), duration)
	return nil
}
