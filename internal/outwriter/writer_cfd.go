package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// writeJSONResultsForCFD marshals the schema.CFDResult to JSON and writes it.
func writeJSONResultsForCFD(w io.Writer, result *schema.CFDResult) error {
	return writeJSON(w, result)
}

// writeCSVResultsForCFD writes the dataset in wide form: one row per period,
// one column per workflow state, in board order.
func writeCSVResultsForCFD(w io.Writer, result *schema.CFDResult) error {
	header := []string{"date", "total"}
	header = append(header, result.States...)

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range result.Rows {
			row := []string{
				r.PeriodStart.Format(contract.DateFormat),
				strconv.Itoa(r.Total),
			}
			for _, state := range result.States {
				row = append(row, strconv.Itoa(r.Counts[state]))
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
