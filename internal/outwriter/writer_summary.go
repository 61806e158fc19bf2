package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// writeCSVResultsForSummary writes the per-state movement data to a CSV writer.
func writeCSVResultsForSummary(w io.Writer, summary schema.FlowSummary) error {
	header := []string{
		"state",
		"start_count",
		"end_count",
		"net",
		"trend",
	}

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range summary.States {
			row := []string{
				s.State,
				strconv.Itoa(s.StartCount),
				strconv.Itoa(s.EndCount),
				strconv.Itoa(s.Net),
				contract.GetPlainLabel(s.Net),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
