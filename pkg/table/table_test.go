package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEntries(t *testing.T) {
	entries := []entry.Entry{
		{Header: entry.Header{StartTime: 100, EndTime: 4294967295, LangID: 1}, Label: "[ENG]", Text: "Hello"},
		{Header: entry.Header{StartTime: 0, EndTime: 5, LangID: 9}, Label: "[9]", Text: ""},
	}
	rows := FromEntries(entries)
	require.Equal(t, []Row{
		{StartTime: "100", EndTime: "4294967295", LangID: "[ENG]", Text: "Hello"},
		{StartTime: "0", EndTime: "5", LangID: "[9]", Text: ""},
	}, rows)
}

func TestWrite(t *testing.T) {
	rows := []Row{
		{StartTime: "1", EndTime: "2", LangID: "[ENG]", Text: "Hello, \"world\""},
		{StartTime: "3", EndTime: "4", LangID: "[JPN]", Text: "こんにちは"},
	}

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rows, false))
		want := "Start Time,End Time,Lang ID,Text\r\n" +
			"1,2,[ENG],\"Hello, \"\"world\"\"\"\r\n" +
			"3,4,[JPN],こんにちは\r\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("with BOM", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rows, true))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF, 'S'}))
	})
}

func TestReadRoundTrip(t *testing.T) {
	rows := []Row{
		{StartTime: "1", EndTime: "2", LangID: "[ENG]", Text: "line one\nline two"},
		{StartTime: "3", EndTime: "4", LangID: "[7]", Text: ""},
	}
	for _, bom := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rows, bom))

		got, err := Read(&buf)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Line)
		assert.Equal(t, 4, got[1].Line)
		for i := range got {
			got[i].Line = 0
		}
		assert.Equal(t, rows, got)
	}
}

func TestReadColumnsByName(t *testing.T) {
	in := "Text,Extra,Lang ID,End Time,Start Time\n" +
		"hi,x,[FRE],20,10\n"
	rows, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []Row{{StartTime: "10", EndTime: "20", LangID: "[FRE]", Text: "hi", Line: 2}}, rows)
}

func TestReadErrors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := Read(strings.NewReader(""))
		require.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := Read(strings.NewReader("Start Time,End Time,Text\n1,2,x\n"))
		require.ErrorIs(t, err, ErrMissingColumn)
		require.Contains(t, err.Error(), `"Lang ID"`)
	})

	t.Run("short row", func(t *testing.T) {
		_, err := Read(strings.NewReader("Start Time,End Time,Lang ID,Text\n1,2,[ENG],a\n3,4\n"))
		require.ErrorIs(t, err, ErrInvalidRow)
		require.Contains(t, err.Error(), "line 3")
	})

	t.Run("bad quoting", func(t *testing.T) {
		_, err := Read(strings.NewReader("Start Time,End Time,Lang ID,Text\n1,2,[ENG],\"abc\n"))
		require.Error(t, err)
	})
}

func TestReadHeaderOnly(t *testing.T) {
	rows, err := Read(strings.NewReader("Start Time,End Time,Lang ID,Text\r\n"))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestCarriageReturnsInText(t *testing.T) {
	rows := []Row{
		{StartTime: "1", EndTime: "2", LangID: "[ENG]", Text: "Line one\r\nLine two"},
		{StartTime: "3", EndTime: "4", LangID: "[ENG]", Text: "a\rb"},
		{StartTime: "5", EndTime: "6", LangID: "[ENG]", Text: "trailing\r"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows, false))
	want := "Start Time,End Time,Lang ID,Text\r\n" +
		"1,2,[ENG],\"Line one\r\nLine two\"\r\n" +
		"3,4,[ENG],\"a\rb\"\r\n" +
		"5,6,[ENG],\"trailing\r\"\r\n"
	require.Equal(t, want, buf.String())

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 4, 5}, []int{got[0].Line, got[1].Line, got[2].Line})
	for i := range got {
		assert.Equal(t, rows[i].Text, got[i].Text)
	}
}

func TestReadRecordSyntax(t *testing.T) {
	const header = "Start Time,End Time,Lang ID,Text\n"
	tests := []struct {
		name string
		in   string
		want []Row
		err  bool
	}{
		{"blank lines skipped", header + "\r\n1,2,[ENG],a\n\n", []Row{{"1", "2", "[ENG]", "a", 3}}, false},
		{"no final newline", header + "1,2,[ENG],a", []Row{{"1", "2", "[ENG]", "a", 2}}, false},
		{"empty quoted text", header + "1,2,[ENG],\"\"\r\n", []Row{{"1", "2", "[ENG]", "", 2}}, false},
		{"escaped quotes", header + "1,2,[ENG],\"say \"\"hi\"\"\"\n", []Row{{"1", "2", "[ENG]", `say "hi"`, 2}}, false},
		{"bare quote", header + "1,2,[ENG],a\"b\n", nil, true},
		{"text after closing quote", header + "1,2,[ENG],\"a\"b\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Read(strings.NewReader(tt.in))
			if tt.err {
				require.ErrorIs(t, err, ErrSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}
