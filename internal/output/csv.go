package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/siftql/sift/internal/engine"
)

// CSVWriter outputs the result as CSV with a header row.
type CSVWriter struct{}

func (c *CSVWriter) Write(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columnNames(res)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	record := make([]string, len(res.Schema.Columns))
	for _, row := range res.Rows {
		for i, v := range row {
			record[i] = csvCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// csvCell renders NULL as an empty field; everything else like the text
// writer.
func csvCell(v any) string {
	if v == nil {
		return ""
	}
	return formatCell(v)
}
