package textblock

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/encoding"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/bgrewell/sdt-kit/pkg/logging"
	"github.com/bgrewell/sdt-kit/pkg/option"
	"github.com/bgrewell/sdt-kit/pkg/table"
)

// EncodeResult holds a re-serialised text block.
type EncodeResult struct {
	// Data is the concatenated entries, without the code block.
	Data     []byte
	Entries  []entry.Entry
	Warnings []Warning
}

// Encoder turns edited rows back into text block entries.
type Encoder struct {
	opts *option.Options
	log  *logging.Logger
}

func NewEncoder(opts ...option.Option) *Encoder {
	o := option.New(opts...)
	return &Encoder{
		opts: o,
		log:  logging.NewLogger(o.Logger).WithName("encoder"),
	}
}

// Encode serialises rows in order. Row n borrows the reserved header bytes of the template's n-th original entry,
// read from textBlockStart onwards; the template's timestamps and language ids are not used. Rows and template
// entries are assumed to correspond one to one. Running out of template entries is fatal.
func (e *Encoder) Encode(rows []table.Row, template []byte, textBlockStart int) (*EncodeResult, error) {
	end, entriesEnd := templateBounds(template, textBlockStart)
	cursor := NewTemplateCursor(template, textBlockStart, end)

	res := &EncodeResult{Entries: make([]entry.Entry, 0, len(rows))}
	var buf bytes.Buffer

	for i, row := range rows {
		e.opts.ProgressCallback("encode", int64(i), int64(len(rows)))

		start, err := parseTime(row.StartTime)
		if err != nil {
			return nil, rowError(i, row.Line, consts.CSV_COLUMN_START_TIME, row.StartTime, err)
		}
		endTime, err := parseTime(row.EndTime)
		if err != nil {
			return nil, rowError(i, row.Line, consts.CSV_COLUMN_END_TIME, row.EndTime, err)
		}

		langID, ok := e.opts.Languages.ID(row.LangID)
		if !ok {
			w := Warning{
				Kind:   UnknownLanguageLabel,
				Row:    i + 1,
				Detail: fmt.Sprintf("%q mapped to id %d", row.LangID, langID),
			}
			res.Warnings = append(res.Warnings, w)
			e.log.Warn("Unknown language label, using default", "row", i+1, "label", row.LangID, "id", langID)
		}

		original, err := cursor.Next()
		if err != nil {
			return nil, err
		}

		ent, err := entry.New(start, endTime, langID, original.Unknown, row.Text)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		ent.Offset = textBlockStart + buf.Len()
		ent.Label = e.opts.Languages.Label(langID)
		buf.Write(ent.Marshal())
		res.Entries = append(res.Entries, *ent)
	}

	if cursor.More(entriesEnd) {
		w := Warning{
			Kind:   RowCountMismatch,
			Offset: cursor.Offset(),
			Detail: fmt.Sprintf("template has entries left after %d rows", len(rows)),
		}
		res.Warnings = append(res.Warnings, w)
		e.log.Warn("Template has more entries than rows", "rows", len(rows), "offset", fmt.Sprintf("0x%X", cursor.Offset()))
	}

	e.opts.ProgressCallback("encode", int64(len(rows)), int64(len(rows)))
	res.Data = buf.Bytes()
	e.log.Debug("Encoded text block", "rows", len(rows), "size", fmt.Sprintf("0x%X", len(res.Data)))
	return res, nil
}

// templateBounds returns the end of the template's text block and the end of its entries (the start of its code
// block). Fields that cannot be read fall back to the end of the template.
func templateBounds(template []byte, textBlockStart int) (int, int) {
	sig := textBlockStart - consts.SDT_TEXT_BLOCK_START_OFFSET
	size, err := encoding.ReadUint32LE(template, sig+consts.SDT_TEXT_BLOCK_SIZE_OFFSET)
	if err != nil {
		return len(template), len(template)
	}
	end := min(textBlockStart+int(size), len(template))
	code, err := encoding.ReadUint32LE(template, sig-consts.SDT_CODE_BLOCK_SIZE_OFFSET)
	if err != nil || int(code) > end-textBlockStart {
		return end, end
	}
	return end, end - int(code)
}

func parseTime(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(s), "+"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func rowError(i int, line int, column string, value string, err error) error {
	if line > 0 {
		return fmt.Errorf("%w: row %d (line %d) %s %q: %w", table.ErrInvalidRow, i+1, line, column, value, err)
	}
	return fmt.Errorf("%w: row %d %s %q: %w", table.ErrInvalidRow, i+1, column, value, err)
}
