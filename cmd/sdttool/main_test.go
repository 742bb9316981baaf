package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bgrewell/sdt-kit/internal/testutil"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/bgrewell/sdt-kit/pkg/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []*entry.Entry {
	return []*entry.Entry{
		testutil.Entry(100, 200, 1, [4]byte{}, "Hello"),
		testutil.Entry(300, 400, 7, [4]byte{}, "line one\nline two"),
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "...6789", truncateString("0123456789", 7))
	assert.Equal(t, "89", truncateString("0123456789", 2))
}

func TestProgressMessage(t *testing.T) {
	msg := progressMessage("captions/0000.sdt", "decode", 50, 200, 80)
	assert.Equal(t, " [decode] captions/0000.sdt - 25.00%", msg)

	msg = progressMessage(strings.Repeat("x", 200), "rebuild", 0, 0, 40)
	assert.Contains(t, msg, "...")
	assert.True(t, strings.HasSuffix(msg, "100.00%"))
}

func TestRenderEntries(t *testing.T) {
	var entries []entry.Entry
	for _, e := range sampleEntries() {
		e.Offset = 0x28
		e.Label = "[ENG]"
		entries = append(entries, *e)
	}
	out := renderEntries(entries, 0)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "line one⏎line two")
	assert.Contains(t, out, "0x28")
	assert.Contains(t, out, "[ENG]")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []settings{
		{command: "bogus", input: "a.sdt"},
		{command: CMD_EXTRACT, input: "a.sdt"},
		{command: CMD_IMPORT, input: "a.csv"},
	}
	for _, s := range tests {
		t.Run(s.command, func(t *testing.T) {
			err := run(s)
			var usageErr *usageError
			require.ErrorAs(t, err, &usageErr)
		})
	}
}

func TestRun_ExtractThenImport(t *testing.T) {
	dir := t.TempDir()
	template := testutil.Container{Entries: sampleEntries(), Audio: testutil.Audio(24)}.Build()
	sdtPath := filepath.Join(dir, "0000.sdt")
	csvPath := filepath.Join(dir, "0000.csv")
	outPath := filepath.Join(dir, "out.sdt")
	require.NoError(t, os.WriteFile(sdtPath, template, 0o644))

	base := settings{opts: []option.Option{}}

	s := base
	s.command, s.input, s.target = CMD_EXTRACT, sdtPath, csvPath
	require.NoError(t, run(s))
	require.FileExists(t, csvPath)

	s = base
	s.command, s.input, s.target, s.output = CMD_IMPORT, csvPath, sdtPath, outPath
	require.NoError(t, run(s))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, len(template)-len(testutil.Audio(24)), len(data)-24)
	assert.Equal(t, testutil.Audio(24), data[len(data)-24:])

	for _, cmd := range []string{CMD_INFO, CMD_LIST} {
		s = base
		s.command, s.input = cmd, outPath
		require.NoError(t, run(s))
	}
}

func TestUseSpinner(t *testing.T) {
	tests := []struct {
		name   string
		stdout bool
		stderr bool
		want   bool
	}{
		{"both on terminal", true, true, false},
		{"logs redirected", true, false, true},
		{"output redirected", false, true, false},
		{"nothing on terminal", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, useSpinner(tt.stdout, tt.stderr))
		})
	}
}

func TestNewStatus_NoSpinnerWhenDisabled(t *testing.T) {
	st := newStatus(settings{color: true, spinner: false})
	assert.Nil(t, st.spinner)
	assert.Nil(t, st.callback("a.sdt"))
}
