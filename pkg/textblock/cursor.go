package textblock

import (
	"fmt"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/entry"
)

// TemplateCursor walks the original entries of a template container one at a time. It exists to hand back each
// record's reserved header bytes in order. Records are skipped by scanning to the text terminator, not by the size
// field, so a template whose sizes drifted still lines up with its text.
type TemplateCursor struct {
	data  []byte
	pos   int
	end   int
	index int
}

// NewTemplateCursor starts a cursor at start. Like the decoder, a header is accepted when it starts before end and
// fits in data, even if it runs past end.
func NewTemplateCursor(data []byte, start int, end int) *TemplateCursor {
	if end > len(data) || end < 0 {
		end = len(data)
	}
	return &TemplateCursor{data: data, pos: start, end: end}
}

// Next returns the next original header and moves past its text.
func (c *TemplateCursor) Next() (entry.Header, error) {
	var h entry.Header
	if c.pos < 0 || c.pos >= c.end || c.pos+consts.SDT_ENTRY_HEADER_SIZE > len(c.data) {
		return h, fmt.Errorf("%w: no header for row %d at offset 0x%X", ErrUnexpectedEndOfTemplate, c.index+1, c.pos)
	}
	if err := h.Unmarshal(c.data[c.pos : c.pos+consts.SDT_ENTRY_HEADER_SIZE]); err != nil {
		return h, fmt.Errorf("%w: %w", ErrUnexpectedEndOfTemplate, err)
	}

	// Skip the original text, terminator included, reading at most the scan limit
	p := c.pos + consts.SDT_ENTRY_HEADER_SIZE
	limit := min(p+consts.SDT_TEMPLATE_TEXT_SCAN_LIMIT, len(c.data))
	for p < limit {
		b := c.data[p]
		p++
		if b == 0x00 {
			break
		}
	}

	c.pos = p
	c.index++
	return h, nil
}

// Offset is the position the next header will be read from.
func (c *TemplateCursor) Offset() int {
	return c.pos
}

// Count is the number of headers returned so far.
func (c *TemplateCursor) Count() int {
	return c.index
}

// More reports whether another header starts before limit.
func (c *TemplateCursor) More(limit int) bool {
	return c.pos < min(limit, c.end) && c.pos+consts.SDT_ENTRY_HEADER_SIZE <= len(c.data)
}
