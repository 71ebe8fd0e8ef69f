package dict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func lines(d *Document) []string {
	out := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, e.Line)
	}
	return out
}

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	d, err := Parse([]byte(s))
	require.NoError(t, err)
	return d
}

func TestSort(t *testing.T) {
	const input = "c 3\na 10\nb 2\na 10\nd\n"
	tests := []struct {
		name    string
		opts    Options
		want    []string
		removed int
	}{
		{
			name: "whole line",
			want: []string{"a 10", "a 10", "b 2", "c 3", "d"},
		},
		{
			name:    "unique",
			opts:    Options{Unique: true},
			want:    []string{"a 10", "b 2", "c 3", "d"},
			removed: 1,
		},
		{
			name: "reverse",
			opts: Options{Reverse: true, Unique: true},
			want: []string{"d", "c 3", "b 2", "a 10"},
			// duplicates are removed after ordering
			removed: 1,
		},
		{
			name: "second field lexical",
			opts: Options{KeyField: 2},
			want: []string{"d", "a 10", "a 10", "b 2", "c 3"},
		},
		{
			name: "second field numeric",
			opts: Options{KeyField: 2, Numeric: true},
			want: []string{"d", "b 2", "c 3", "a 10", "a 10"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustParse(t, input)
			removed := d.Sort(tt.opts)
			require.Equal(t, tt.want, lines(d))
			require.Equal(t, tt.removed, removed)
		})
	}
}

func TestSort_TiesBreakOnWholeLine(t *testing.T) {
	d := mustParse(t, "ㄅㄚ 爸\nㄅㄚ 八\nㄅㄚ 巴\n")
	d.Sort(Options{KeyField: 1})
	require.Equal(t, []string{"ㄅㄚ 八", "ㄅㄚ 巴", "ㄅㄚ 爸"}, lines(d))
}

func TestSort_NumericUnparseableSortsAsZero(t *testing.T) {
	d := mustParse(t, "a 1\nb x\nc -1\nd NaN\n")
	d.Sort(Options{KeyField: 2, Numeric: true})
	require.Equal(t, []string{"c -1", "b x", "d NaN", "a 1"}, lines(d))
}

func TestSort_PragmaInsertedOnce(t *testing.T) {
	d := mustParse(t, "# note\nb\na\n")
	d.Sort(Options{Pragma: true})
	d.Sort(Options{Pragma: true})
	require.Equal(t, []string{PragmaHeader, "# note"}, d.Comments)

	out := string(Render(d))
	require.True(t, strings.HasPrefix(out, PragmaHeader+"\n# note\na\nb\n"), out)
}

func TestSort_Idempotent(t *testing.T) {
	d := mustParse(t, "# h\nz 1\ny 2\nx 3\n")
	d.Sort(Options{KeyField: 2, Numeric: true, Reverse: true})
	first := Render(d)

	again := mustParse(t, string(first))
	again.Sort(Options{KeyField: 2, Numeric: true, Reverse: true})
	require.Equal(t, string(first), string(Render(again)))
}

func TestSort_NumericOutOfRangeSortsAtTheEnds(t *testing.T) {
	d := mustParse(t, "a 5\nb 1e400\nc -1e400\n")
	d.Sort(Options{KeyField: 2, Numeric: true})
	require.Equal(t, []string{"c -1e400", "a 5", "b 1e400"}, lines(d))
}
