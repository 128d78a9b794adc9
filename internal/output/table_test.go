package output

import (
	"strings"
	"testing"
)

func TestVisualLen_PlainText(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"hello", 5},
		{"", 0},
		{"abc def", 7},
	}

	for _, tc := range tests {
		got := visualLen(tc.input)
		if got != tc.want {
			t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestVisualLen_StripsANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "bold",
			input: "\x1b[1mhello\x1b[0m",
			want:  5,
		},
		{
			name:  "color",
			input: "\x1b[31mred\x1b[0m",
			want:  3,
		},
		{
			name:  "multiple sequences",
			input: "\x1b[1m\x1b[34mblue bold\x1b[0m",
			want:  9,
		},
		{
			name:  "no ansi",
			input: "plain text",
			want:  10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := visualLen(tc.input)
			if got != tc.want {
				t.Errorf("visualLen() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  int // expected length of output
	}{
		{"needs padding", "hi", 10, 10},
		{"exact width", "hello", 5, 5},
		{"over width", "toolong", 3, 7}, // no truncation
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pad(tc.input, tc.width)
			if len(got) != tc.want {
				t.Errorf("pad(%q, %d) len = %d, want %d", tc.input, tc.width, len(got), tc.want)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	// Disable color so we get predictable output.
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Kind", "Severity")
	tbl.AddRow("performance_issue", "high")
	tbl.AddRow("low_data_volume", "low")

	output := tbl.Render()

	// Should contain headers.
	if !strings.Contains(output, "Kind") {
		t.Error("expected header 'Kind' in output")
	}
	if !strings.Contains(output, "Severity") {
		t.Error("expected header 'Severity' in output")
	}

	// Should contain data.
	if !strings.Contains(output, "performance_issue") {
		t.Error("expected 'performance_issue' in output")
	}
	if !strings.Contains(output, "low_data_volume") {
		t.Error("expected 'low_data_volume' in output")
	}

	// Should have separator line.
	if !strings.Contains(output, "─") {
		t.Error("expected separator character in output")
	}

	// Count lines: header + separator + 2 data rows = 4 lines.
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	tbl := NewTable()
	output := tbl.Render()
	if output != "" {
		t.Errorf("expected empty output for empty table, got %q", output)
	}
}

func TestTable_ColumnWidths(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("A", "LongHeader")
	tbl.AddRow("VeryLongValue", "X")

	output := tbl.Render()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d", len(lines))
	}

	// The data row should be padded so columns align.
	dataLine := lines[2]
	if !strings.Contains(dataLine, "VeryLongValue") {
		t.Error("expected data row to contain 'VeryLongValue'")
	}
}

func TestTable_String(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Col1")
	tbl.AddRow("Val1")

	// String() should equal Render().
	if tbl.String() != tbl.Render() {
		t.Error("String() != Render()")
	}
}

func TestTable_StyledCellsAlign(t *testing.T) {
	tbl := NewTable("Sev", "Title")
	tbl.AddRow("\x1b[31mHIGH\x1b[0m", "Slow")
	tbl.AddRow("LOW", "Few rows")

	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	first, second := visualLen(lines[2]), visualLen(lines[3])
	if idx1, idx2 := strings.Index(lines[2], "Slow"), strings.Index(lines[3], "Few"); idx1 < 0 || idx2 < 0 {
		t.Fatalf("missing cells: %q / %q", lines[2], lines[3])
	}
	if first > second {
		t.Errorf("styled row wider than plain row: %d > %d", first, second)
	}
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	if !IsNoColor() {
		t.Error("IsNoColor() = false after SetNoColor(true)")
	}
	rendered := StyleHeader.Render("test")
	if strings.Contains(rendered, "\x1b[") {
		t.Error("expected no ANSI codes after SetNoColor(true)")
	}
	SetNoColor(false)
	if IsNoColor() {
		t.Error("IsNoColor() = true after SetNoColor(false)")
	}
}

func TestTable_MaxWidthTruncatesLastColumn(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("ID", "Title")
	tbl.AddRow("r1", "A very long report title here")
	tbl.AddRow("r2", "Short")
	tbl.SetMaxWidth(20)

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if w := visualLen(line); w > 20 {
			t.Errorf("line %q is %d cells wide, want <= 20", line, w)
		}
	}
	if !strings.Contains(lines[2], "A very long rep…") {
		t.Errorf("expected truncated title, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Short") {
		t.Errorf("short cell should be untouched, got %q", lines[3])
	}
}

func TestTable_MaxWidthKeepsMinimumColumn(t *testing.T) {
	tbl := NewTable("Identifier", "Title")
	tbl.AddRow("a-very-long-identifier", "Weekly sales comparison")
	tbl.SetMaxWidth(10)

	widths := tbl.columnWidths()
	if widths[1] != minLastColumn {
		t.Errorf("last column = %d, want %d", widths[1], minLastColumn)
	}
	if widths[0] != visualLen("a-very-long-identifier") {
		t.Errorf("first column changed: %d", widths[0])
	}
}

func TestTable_NoMaxWidth(t *testing.T) {
	tbl := NewTable("ID", "Title")
	tbl.AddRow("r1", "A very long report title here")
	tbl.SetMaxWidth(-3)

	if !strings.Contains(tbl.Render(), "A very long report title here") {
		t.Error("uncapped table should not truncate")
	}
}
