package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/siftql/sift/internal/engine"
)

// TextWriter outputs a human-readable aligned table.
type TextWriter struct{}

var headerColor = color.New(color.FgCyan, color.Bold)

func (t *TextWriter) Write(w io.Writer, res *engine.Result) error {
	ew := &errWriter{w: w}

	names := columnNames(res)
	widths := make([]int, len(names))
	for i, name := range names {
		widths[i] = utf8.RuneCountInString(name)
	}

	cells := make([][]string, len(res.Rows))
	for r, row := range res.Rows {
		cells[r] = make([]string, len(row))
		for c, v := range row {
			s := formatCell(v)
			cells[r][c] = s
			if w := utf8.RuneCountInString(s); c < len(widths) && w > widths[c] {
				widths[c] = w
			}
		}
	}

	for i, name := range names {
		if i > 0 {
			ew.printf("  ")
		}
		ew.printf("%s", headerColor.Sprint(pad(name, widths[i])))
	}
	ew.println("")
	for i := range names {
		if i > 0 {
			ew.printf("  ")
		}
		ew.printf("%s", strings.Repeat("─", widths[i]))
	}
	ew.println("")

	for _, row := range cells {
		for c, s := range row {
			if c > 0 {
				ew.printf("  ")
			}
			ew.printf("%s", pad(s, widths[c]))
		}
		ew.println("")
	}

	plural := "s"
	if len(res.Rows) == 1 {
		plural = ""
	}
	ew.printf("\n%d row%s (%d rows processed)\n",
		len(res.Rows), plural, res.Cost.RowsProcessed)

	return ew.err
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// pad right-fills to width in runes, not bytes, so multibyte cells stay
// aligned.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
