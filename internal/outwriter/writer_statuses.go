package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/taigaflow/taigaflow/schema"
)

// writeCSVResultsForStatuses writes the workflow states to a CSV writer.
func writeCSVResultsForStatuses(w io.Writer, statuses []schema.ProjectStatus) error {
	header := []string{
		"order",
		"name",
		"slug",
		"is_closed",
		"color",
	}

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range statuses {
			row := []string{
				strconv.Itoa(s.Order),
				s.Name,
				s.Slug,
				strconv.FormatBool(s.IsClosed),
				s.Color,
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
