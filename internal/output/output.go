package output

import (
	"fmt"
	"io"
	"os"

	"github.com/siftql/sift/internal/engine"
)

// Writer renders a query result in a specific format.
type Writer interface {
	Write(w io.Writer, res *engine.Result) error
}

// ForFormat returns a writer for the specified format.
func ForFormat(format string) (Writer, error) {
	switch format {
	case "json":
		return &JSONWriter{}, nil
	case "text":
		return &TextWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResult writes the result to the specified output (file path or stdout).
func WriteResult(res *engine.Result, format, outPath string) error {
	writer, err := ForFormat(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, res)
}

func columnNames(res *engine.Result) []string {
	names := make([]string, len(res.Schema.Columns))
	for i, col := range res.Schema.Columns {
		names[i] = col.Display()
	}
	return names
}
