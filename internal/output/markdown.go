package output

import (
	"io"
	"strings"

	"github.com/siftql/sift/internal/engine"
)

// MarkdownWriter outputs the result as a Markdown pipe table.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, res *engine.Result) error {
	ew := &errWriter{w: w}

	names := columnNames(res)
	ew.printf("|")
	for _, name := range names {
		ew.printf(" %s |", escapePipes(name))
	}
	ew.println("")

	ew.printf("|")
	for range names {
		ew.printf(" --- |")
	}
	ew.println("")

	for _, row := range res.Rows {
		ew.printf("|")
		for _, v := range row {
			ew.printf(" %s |", escapePipes(formatCell(v)))
		}
		ew.println("")
	}

	return ew.err
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
