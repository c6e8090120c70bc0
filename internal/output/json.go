package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/siftql/sift/internal/engine"
)

// JSONWriter outputs the result as an indented JSON document, the format
// the CLI's default pipeline expects.
type JSONWriter struct{}

type jsonResult struct {
	Columns  []string  `json:"columns"`
	Rows     [][]any   `json:"rows"`
	RowCount int       `json:"rowCount"`
	Stats    jsonStats `json:"stats"`
}

type jsonStats struct {
	RowsProcessed int `json:"rowsProcessed"`
}

func (j *JSONWriter) Write(w io.Writer, res *engine.Result) error {
	doc := jsonResult{
		Columns:  columnNames(res),
		Rows:     make([][]any, len(res.Rows)),
		RowCount: len(res.Rows),
		Stats:    jsonStats{RowsProcessed: res.Cost.RowsProcessed},
	}
	for i, row := range res.Rows {
		doc.Rows[i] = row
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
