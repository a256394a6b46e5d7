package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Food", want: `"Food"`},
		{name: "empty", input: "", want: `""`},
		{name: "embedded quote", input: `Joe's "Diner"`, want: `"Joe's ""Diner"""`},
		{name: "comma", input: "Food, Drinks", want: `"Food, Drinks"`},
		{name: "crlf", input: "line\r\nbreak", want: "\"line\nbreak\""},
		{name: "stacked cr", input: "a\r\r\nb", want: "\"a\nb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteField(tt.input))
		})
	}
}

func TestRecordWriterAndReader(t *testing.T) {
	var buf bytes.Buffer
	w := newRecordWriter(&buf)
	require.NoError(t, w.write(quoteField("a,b"), "12", quoteField(`say "hi"`)))
	require.NoError(t, w.write(quoteField("line\nbreak"), "0", quoteField("")))
	require.NoError(t, w.flush())

	assert.Equal(t, "\"a,b\",12,\"say \"\"hi\"\"\"\n\"line\nbreak\",0,\"\"\n", buf.String())

	var records [][]string
	skipped, err := readRecords(&buf, func(fields []string) {
		records = append(records, append([]string(nil), fields...))
	})
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, [][]string{
		{"a,b", "12", `say "hi"`},
		{"line\nbreak", "0", ""},
	}, records)
}

func TestReadRecords_IgnoresBlankLines(t *testing.T) {
	input := "\"x\",1\n\n\n\"y\",2\n"

	var count int
	skipped, err := readRecords(strings.NewReader(input), func([]string) { count++ })
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, 2, count)
}

func TestLoadResult_Add(t *testing.T) {
	r := LoadResult{Loaded: 1, Skipped: 2}
	r.Add(LoadResult{Loaded: 3, Defaulted: 1, Unresolved: 4})
	assert.Equal(t, LoadResult{Loaded: 4, Skipped: 2, Defaulted: 1, Unresolved: 4}, r)
}
