package format

import (
	"bytes"
	"testing"
)

func TestTable(t *testing.T) {
	tests := []struct {
		name    string
		columns []Column
		rows    [][]string
		want    string
	}{
		{
			name:    "auto width",
			columns: []Column{{Header: "ID"}, {Header: "STATE"}},
			rows:    [][]string{{"i-1", "running"}, {"i-22", "stopped"}},
			want:    "ID    STATE\ni-1   running\ni-22  stopped\n",
		},
		{
			name:    "fixed width truncates",
			columns: []Column{{Header: "NAME", Width: 5}, {Header: "ID", Width: 4}},
			rows:    [][]string{{"abcdefgh", "i-1"}},
			want:    "NAME   ID\nabcd…  i-1\n",
		},
		{
			name:    "short row",
			columns: []Column{{Header: "A", Width: 2}, {Header: "B", Width: 2}},
			rows:    [][]string{{"x"}},
			want:    "A   B\nx   \n",
		},
		{
			name:    "escape sequences stripped",
			columns: []Column{{Header: "V"}},
			rows:    [][]string{{"\x1b[31mred\x1b[0m"}},
			want:    "V\nred\n",
		},
		{
			name:    "no rows",
			columns: []Column{{Header: "ID"}, {Header: "NAME"}},
			want:    "ID  NAME\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Table(&buf, tt.columns, tt.rows, false); err != nil {
				t.Fatalf("Table() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Table() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTableStyleAfterPadding(t *testing.T) {
	style := func(s string) string { return "<" + s + ">" }
	var buf bytes.Buffer
	columns := []Column{{Header: "S", Width: 4, Style: style}, {Header: "X"}}
	if err := Table(&buf, columns, [][]string{{"ok", "1"}}, true); err != nil {
		t.Fatal(err)
	}
	lines := bytes.Split(buf.Bytes(), []byte("\n"))
	if got := string(lines[1]); got != "<ok>    1" {
		t.Errorf("row = %q, want %q", got, "<ok>    1")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "abc", width: 5, want: "abc"},
		{in: "abcdefgh", width: 5, want: "abcd…"},
		{in: "abc", width: 0, want: "abc"},
		{in: "abc", width: 1, want: "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestKeyValues(t *testing.T) {
	var buf bytes.Buffer
	err := KeyValues(&buf, []string{"a", "long"}, map[string]string{"a": "1", "long": "2"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := "a     1\nlong  2\n"; buf.String() != want {
		t.Errorf("KeyValues() = %q, want %q", buf.String(), want)
	}
}
