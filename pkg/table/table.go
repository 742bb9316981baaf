// Package table reads and writes the CSV interchange form of a container's entries.
package table

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidRow    = errors.New("invalid row")
)

// Header is the column order written to every export.
var Header = []string{
	consts.CSV_COLUMN_START_TIME,
	consts.CSV_COLUMN_END_TIME,
	consts.CSV_COLUMN_LANG_ID,
	consts.CSV_COLUMN_TEXT,
}

// Row is one CSV record. Fields are kept as text; the encoder parses and validates them.
type Row struct {
	StartTime string
	EndTime   string
	LangID    string
	Text      string
	// Line is the line the row started on in its source file, 0 for rows built in memory.
	Line int
}

// FromEntries converts decoded entries into rows.
func FromEntries(entries []entry.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			StartTime: strconv.FormatUint(uint64(e.StartTime), 10),
			EndTime:   strconv.FormatUint(uint64(e.EndTime), 10),
			LangID:    e.Label,
			Text:      e.Text,
		})
	}
	return rows
}

// Write emits the header and rows. Records end in CRLF so files open cleanly in spreadsheet tools; line breaks inside
// a caption are written as they are. When withBOM is set
// the output starts with a UTF-8 byte order mark.
func Write(w io.Writer, rows []Row, withBOM bool) error {
	if withBOM {
		tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		if err := write(tw, rows); err != nil {
			return err
		}
		return tw.Close()
	}
	return write(w, rows)
}

func write(w io.Writer, rows []Row) error {
	cw := newRecordWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write([]string{row.StartTime, row.EndTime, row.LangID, row.Text}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return cw.Flush()
}

// Read parses a CSV export. Columns are matched by header name so they may appear in any order and extra columns are
// ignored. A leading UTF-8 byte order mark is dropped.
func Read(r io.Reader) ([]Row, error) {
	cr := newRecordReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, _, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file has no header row", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	cols := make([]int, len(Header))
	for i, name := range Header {
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		cols[i] = col
	}

	var rows []Row
	for {
		record, line, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		for i, col := range cols {
			if col >= len(record) {
				return nil, fmt.Errorf("%w: line %d has no %q value", ErrInvalidRow, line, Header[i])
			}
		}
		rows = append(rows, Row{
			StartTime: record[cols[0]],
			EndTime:   record[cols[1]],
			LangID:    record[cols[2]],
			Text:      record[cols[3]],
			Line:      line,
		})
	}
	return rows, nil
}
