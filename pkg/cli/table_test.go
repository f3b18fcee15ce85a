package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "NAME", "RESULT")
	tbl.Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTable_Rows(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "INPUT", "RESULT")
	tbl.Row("10.0.0.0/8", "valid")
	tbl.Row("10.0.0.1/8", "host bits set")
	tbl.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "INPUT") || !strings.Contains(lines[0], "RESULT") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "-----") {
		t.Errorf("divider line = %q", lines[1])
	}
	// Columns are aligned to the widest cell plus padding 2.
	col := strings.Index(lines[0], "RESULT")
	if strings.Index(lines[2], "valid") != col || strings.Index(lines[3], "host bits set") != col {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTable_Prefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "CHECK").WithPrefix("  ")
	tbl.Row("default_route")
	tbl.Flush()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing prefix", line)
		}
	}
}

func TestTable_ColoredCellsAlign(t *testing.T) {
	defer SetColor(colorEnabled)
	SetColor(true)

	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "RESULT", "INPUT")
	tbl.Row(Green("valid"), "10.0.0.0/8")
	tbl.Row(Red("invalid"), "10.0.0.1/8")
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	tbl.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	col := visualLen(lines[0][:strings.Index(lines[0], "INPUT")])
	for _, line := range lines[2:] {
		at := strings.Index(line, "10.0.0.")
		if got := visualLen(line[:at]); got != col {
			t.Errorf("INPUT column at %d, want %d in %q", got, col, line)
		}
	}
	if tbl.Len() != 0 {
		t.Error("Flush() should reset the buffered rows")
	}
}

func TestVisualLen(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"valid", 5},
		{"\033[32mvalid\033[0m", 5},
		{"\033[1m→\033[0m", 1},
	}
	for _, tt := range tests {
		if got := visualLen(tt.in); got != tt.want {
			t.Errorf("visualLen(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
