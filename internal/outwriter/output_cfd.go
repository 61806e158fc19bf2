package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/internal/parquet"
	"github.com/taigaflow/taigaflow/schema"
)

// PrintCFDResults outputs the flow dataset, dispatching based on the output format configured.
func PrintCFDResults(result *schema.CFDResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForCFD(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForCFD(result, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForCFD(result, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printCFDTable(result, cfg, duration); err != nil {
			return fmt.Errorf("error writing flow table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForCFD handles opening the file and calling the JSON writer.
func printJSONResultsForCFD(result *schema.CFDResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForCFD(w, result)
	}, "Wrote JSON flow results")
}

// printCSVResultsForCFD handles opening the file and calling the CSV writer.
func printCSVResultsForCFD(result *schema.CFDResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForCFD(w, result)
	}, "Wrote CSV flow results")
}

// printParquetResultsForCFD flattens the dataset and writes it as a Parquet file.
// Parquet is a binary format, so a concrete output file is required.
func printParquetResultsForCFD(result *schema.CFDResult, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	records := parquet.ConvertCFDResult(result)
	if err := parquet.WriteCFDParquet(records, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet flow results to %s\n", cfg.OutputFile)
	return nil
}

// printCFDTable prints the dataset with one column per workflow state.
func printCFDTable(result *schema.CFDResult, cfg *contract.Config, duration time.Duration) error {
	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	// --- 1. Define Headers ---
	colWidth := GetMaxStateColWidth(cfg, len(result.States))
	headers := []string{"Date", "Total"}
	for _, state := range result.States {
		headers = append(headers, contract.TruncateLabel(state, colWidth))
	}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	var data [][]string
	for _, r := range result.Rows {
		row := []string{
			r.PeriodStart.Format(contract.DateFormat),
			strconv.Itoa(r.Total),
		}
		for _, state := range result.States {
			row = append(row, strconv.Itoa(r.Counts[state]))
		}
		data = append(data, row)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Flow dataset for %d items completed in %v with %d workers. Cache backend: %s\n",
		result.ItemCount, duration, cfg.Workers, cfg.CacheBackend)
	return nil
}
