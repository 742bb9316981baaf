package textblock

import (
	"fmt"
	"unicode/utf8"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/container"
	"github.com/bgrewell/sdt-kit/pkg/encoding"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/bgrewell/sdt-kit/pkg/logging"
	"github.com/bgrewell/sdt-kit/pkg/option"
	"golang.org/x/text/encoding/unicode"
)

// DecodeResult holds the entries read from a text block.
type DecodeResult struct {
	SignatureOffset int
	TextBlockSize   uint32
	Entries         []entry.Entry
	Warnings        []Warning
	// Stop is set when decoding ended before the declared text block size was consumed. It wraps
	// ErrTruncatedHeader or ErrImplausibleHeader; the entries read up to that point are still valid.
	Stop error
}

// Decoder walks the entries of a text block.
type Decoder struct {
	opts *option.Options
	log  *logging.Logger
}

func NewDecoder(opts ...option.Option) *Decoder {
	o := option.New(opts...)
	return &Decoder{
		opts: o,
		log:  logging.NewLogger(o.Logger).WithName("decoder"),
	}
}

// DecodeContainer locates the signature in data and decodes the text block that follows it.
func (d *Decoder) DecodeContainer(data []byte) (*DecodeResult, error) {
	sig, err := container.Locate(data)
	if err != nil {
		return nil, err
	}
	d.log.Info("Signature found", "offset", fmt.Sprintf("0x%X", sig))
	return d.Decode(data, sig)
}

// Decode reads entries starting 8 bytes past sigOffset until the declared text block size is used up. Records are
// chained by their size field, there is no entry count. A header that cannot be read or that the plausibility filter
// rejects ends decoding early; that is reported through DecodeResult.Stop rather than as an error.
func (d *Decoder) Decode(data []byte, sigOffset int) (*DecodeResult, error) {
	size, err := container.TextBlockSize(data, sigOffset)
	if err != nil {
		return nil, err
	}
	d.log.Debug("Text block size", "size", fmt.Sprintf("0x%X", size))

	res := &DecodeResult{SignatureOffset: sigOffset, TextBlockSize: size}
	start := sigOffset + consts.SDT_TEXT_BLOCK_START_OFFSET
	end := start + int(size)

	for cursor := start; cursor < end; {
		d.opts.ProgressCallback("decode", int64(cursor-start), int64(size))

		if cursor+consts.SDT_ENTRY_HEADER_SIZE > len(data) {
			res.Stop = fmt.Errorf("%w at offset 0x%X: %d bytes left in file", ErrTruncatedHeader, cursor, len(data)-cursor)
			d.log.Error(res.Stop, "Unexpected end of file")
			break
		}

		var h entry.Header
		if err := h.Unmarshal(data[cursor : cursor+consts.SDT_ENTRY_HEADER_SIZE]); err != nil {
			res.Stop = fmt.Errorf("%w at offset 0x%X: %w", ErrTruncatedHeader, cursor, err)
			break
		}

		if !d.opts.Plausibility.Plausible(&h) {
			res.Stop = fmt.Errorf("%w at offset 0x%X: lang id %d", ErrImplausibleHeader, cursor, h.LangID)
			d.log.Warn("Invalid entry header detected, stopping", "offset", fmt.Sprintf("0x%X", cursor))
			break
		}
		// A size shorter than the header would never move the cursor past it
		if int(h.Size) < consts.SDT_ENTRY_HEADER_SIZE {
			res.Stop = fmt.Errorf("%w at offset 0x%X: entry size %d", ErrImplausibleHeader, cursor, h.Size)
			d.log.Warn("Entry size smaller than header, stopping", "offset", fmt.Sprintf("0x%X", cursor))
			break
		}

		e := entry.Entry{
			Header: h,
			Offset: cursor,
			Label:  d.opts.Languages.Label(h.LangID),
		}

		textStart := cursor + consts.SDT_ENTRY_HEADER_SIZE
		raw, nul := encoding.CString(data, textStart)
		switch {
		case nul < 0:
			w := Warning{Kind: MissingNullTerminator, Offset: cursor, Detail: "text replaced with an empty value"}
			res.Warnings = append(res.Warnings, w)
			d.log.Warn("Missing null terminator for text", "offset", fmt.Sprintf("0x%X", cursor))
		case !utf8.Valid(raw):
			e.Text = decodeLossy(raw)
			w := Warning{Kind: InvalidTextEncoding, Offset: cursor, Detail: "invalid UTF-8 replaced"}
			res.Warnings = append(res.Warnings, w)
			d.log.Warn("Invalid UTF-8 in text, replacing", "offset", fmt.Sprintf("0x%X", cursor))
		default:
			e.Text = string(raw)
		}
		if nul >= 0 && nul >= cursor+int(h.Size) {
			d.log.Trace("Text runs past the entry size", "offset", fmt.Sprintf("0x%X", cursor), "size", h.Size)
		}

		d.log.Trace("Entry", "offset", fmt.Sprintf("0x%X", cursor), "start", h.StartTime, "end", h.EndTime,
			"lang", e.Label, "size", h.Size)
		res.Entries = append(res.Entries, e)

		cursor += int(h.Size)
	}

	d.opts.ProgressCallback("decode", int64(size), int64(size))
	d.log.Info("Parsed entries", "count", len(res.Entries))
	return res, nil
}

// decodeLossy converts raw to UTF-8, replacing invalid sequences with U+FFFD.
func decodeLossy(raw []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return string([]rune(string(raw)))
	}
	return string(out)
}
