package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// minLastColumn is the narrowest the last column shrinks to under a width cap.
const minLastColumn = 8

// Table is a simple styled table renderer. Cells may carry ANSI styling;
// column widths are measured in terminal cells.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
	// maxWidth caps the rendered line width by truncating the last column.
	// Zero means no cap.
	maxWidth int
}

// NewTable creates a new table with the given column headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visualLen(h)
	}
	return &Table{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row of values to the table. The number of values should
// match the number of headers.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		if w := visualLen(row[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// SetMaxWidth caps the rendered line width. Cells of the last column are
// truncated with an ellipsis to fit; a non-positive width removes the cap.
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = max(width, 0)
}

// columnWidths returns the widths to render with, shrinking the last column
// when the table would exceed maxWidth.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.widths))
	copy(widths, t.widths)
	if t.maxWidth <= 0 || len(widths) == 0 {
		return widths
	}
	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	if total <= t.maxWidth {
		return widths
	}
	last := len(widths) - 1
	widths[last] = max(widths[last]-(total-t.maxWidth), minLastColumn)
	return widths
}

// Render returns the formatted table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := t.columnWidths()
	last := len(widths) - 1
	var sb strings.Builder

	// Header row.
	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		if i == last {
			h = truncate(h, widths[i])
		}
		sb.WriteString(StyleHeader.Render(pad(h, widths[i])))
	}
	sb.WriteString("\n")

	// Separator.
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(StyleMuted.Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")

	// Data rows.
	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == last {
				cell = truncate(cell, widths[i])
			}
			sb.WriteString(pad(cell, widths[i]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Fprint writes the table to w.
func (t *Table) Fprint(w io.Writer) {
	_, _ = fmt.Fprint(w, t.Render())
}

// visualLen returns the printed width of s, ignoring ANSI escape sequences.
func visualLen(s string) int {
	return lipgloss.Width(s)
}

// truncate shortens s to width terminal cells, ending in an ellipsis.
func truncate(s string, width int) string {
	if visualLen(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// pad right-pads a string to the given visual width.
func pad(s string, width int) string {
	n := visualLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
