package groundtruth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries() []entry.Entry {
	return []entry.Entry{
		{Header: entry.Header{StartTime: 100, EndTime: 200, LangID: 1}, Offset: 0x28, Label: "[ENG]", Text: "Hello"},
		{Header: entry.Header{StartTime: 300, EndTime: 400, LangID: 7}, Offset: 0x3E, Label: "[JPN]", Text: "こんにちは"},
	}
}

const gtJSON = `[
  {"start_time": 100, "end_time": 200, "lang": "[ENG]", "text": "Hello"},
  {"start_time": 300, "end_time": 400, "lang": "[JPN]", "text": "こんにちは"}
]`

func TestValidate_Match(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ground_truth.json")
	require.NoError(t, os.WriteFile(path, []byte(gtJSON), 0o644))

	var buf bytes.Buffer
	require.NoError(t, Validate(&buf, entries(), path))
	assert.Contains(t, buf.String(), "All 2 entries match")
}

func TestCompare_Mismatches(t *testing.T) {
	gt, err := func() ([]GroundTruthEntry, error) {
		path := filepath.Join(t.TempDir(), "gt.json")
		if err := os.WriteFile(path, []byte(gtJSON), 0o644); err != nil {
			return nil, err
		}
		return LoadGroundTruth(path)
	}()
	require.NoError(t, err)

	changed := entries()
	changed[1].Text = "hello\x01"
	var buf bytes.Buffer
	err = Compare(&buf, changed, gt)
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, buf.String(), "control characters")
	assert.Contains(t, buf.String(), "#2 at 0x3E")

	buf.Reset()
	err = Compare(&buf, entries()[:1], gt)
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, buf.String(), "missing entry")

	buf.Reset()
	err = Compare(&buf, append(entries(), entries()[0]), gt)
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, buf.String(), "extra entry")
}

func TestLoadGroundTruth_Errors(t *testing.T) {
	_, err := LoadGroundTruth(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadGroundTruth(path)
	require.Error(t, err)
}

func TestContainsControl(t *testing.T) {
	assert.False(t, ContainsControl("line\r\nbreak\ttab"))
	assert.True(t, ContainsControl("bell\a"))
	assert.True(t, ContainsControl("del\x7F"))
}
