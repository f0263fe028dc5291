package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	columnGap = "  "
	ellipsis  = "…"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Column describes one table column.
type Column struct {
	Header string

	// Width is the column width in cells. Zero sizes the column to its
	// widest value.
	Width int

	// Style renders a cell's visible text. Nil leaves it plain.
	Style func(string) string
}

// Table writes rows under a header line. Cells are sanitized, truncated to
// the column width with an ellipsis and padded. Styling is applied after
// padding so escape sequences never disturb alignment.
func Table(w io.Writer, columns []Column, rows [][]string, color bool) error {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = col.Width
		if widths[i] > 0 {
			continue
		}
		widths[i] = lipgloss.Width(col.Header)
		for _, row := range rows {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(Sanitize(row[i])))
			}
		}
	}

	var b strings.Builder
	for i, col := range columns {
		cell := pad(truncate(col.Header, widths[i]), widths[i], i == len(columns)-1)
		if color {
			cell = headerStyle.Render(cell)
		}
		writeCell(&b, i, cell)
	}
	b.WriteByte('\n')

	for _, row := range rows {
		for i, col := range columns {
			value := ""
			if i < len(row) {
				value = truncate(Sanitize(row[i]), widths[i])
			}
			last := i == len(columns)-1
			styled := value
			if color && col.Style != nil && value != "" {
				styled = col.Style(value)
			}
			writeCell(&b, i, styled+padding(value, widths[i], last))
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// KeyValues writes one "key  value" line per pair with keys aligned.
func KeyValues(w io.Writer, keys []string, values map[string]string, color bool) error {
	width := 0
	for _, k := range keys {
		width = max(width, lipgloss.Width(k))
	}
	for _, k := range keys {
		key := pad(k, width, false)
		if color {
			key = headerStyle.Render(key)
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", key, columnGap, Sanitize(values[k])); err != nil {
			return err
		}
	}
	return nil
}

func writeCell(b *strings.Builder, i int, cell string) {
	if i > 0 {
		b.WriteString(columnGap)
	}
	b.WriteString(cell)
}

// truncate shortens s to width cells, ending in an ellipsis when cut.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}

func pad(s string, width int, last bool) string {
	return s + padding(s, width, last)
}

// padding returns the spaces that fill s to width. The last column is
// never padded.
func padding(s string, width int, last bool) string {
	if last {
		return ""
	}
	if n := width - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n)
	}
	return ""
}
