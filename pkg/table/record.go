package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrSyntax = errors.New("malformed CSV")

// recordWriter writes comma separated records ending in CRLF. Quoted field contents are written unchanged, so a
// CR or CRLF inside a caption survives a round trip.
type recordWriter struct {
	w *bufio.Writer
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{w: bufio.NewWriter(w)}
}

func (rw *recordWriter) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			rw.w.WriteByte(',')
		}
		if !fieldNeedsQuotes(field) {
			rw.w.WriteString(field)
			continue
		}
		rw.w.WriteByte('"')
		rw.w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		rw.w.WriteByte('"')
	}
	_, err := rw.w.WriteString("\r\n")
	return err
}

func (rw *recordWriter) Flush() error {
	return rw.w.Flush()
}

func fieldNeedsQuotes(field string) bool {
	if field == "" {
		return false
	}
	return strings.ContainsAny(field, ",\"\r\n") || field[0] == ' ' || field[0] == '\t'
}

// recordReader reads comma separated records. Records end in LF or CRLF outside quotes; inside quotes every byte
// is kept as written. Blank lines are skipped.
type recordReader struct {
	r    *bufio.Reader
	line int
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: bufio.NewReader(r), line: 1}
}

// Read returns the next record and the line it starts on, or io.EOF when no records remain.
func (rr *recordReader) Read() ([]string, int, error) {
	for {
		start := rr.line
		record, err := rr.readRecord(start)
		if err != nil {
			return nil, start, err
		}
		if record != nil {
			return record, start, nil
		}
	}
}

const (
	stateFieldStart = iota
	stateUnquoted
	stateQuoted
	stateAfterQuote
)

// readRecord returns nil without an error for a blank line.
func (rr *recordReader) readRecord(start int) ([]string, error) {
	var fields []string
	var field strings.Builder
	state := stateFieldStart

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
		state = stateFieldStart
	}
	endRecord := func() []string {
		if len(fields) == 0 && field.Len() == 0 && state != stateAfterQuote {
			return nil
		}
		endField()
		return fields
	}

	for {
		b, err := rr.r.ReadByte()
		if err == io.EOF {
			switch {
			case state == stateQuoted:
				return nil, fmt.Errorf("%w: line %d: quoted field is not terminated", ErrSyntax, start)
			case len(fields) == 0 && field.Len() == 0 && state == stateFieldStart:
				return nil, io.EOF
			}
			return endRecord(), nil
		}
		if err != nil {
			return nil, err
		}

		if state == stateQuoted {
			if b == '"' {
				next, err := rr.r.ReadByte()
				if err == nil && next == '"' {
					field.WriteByte('"')
					continue
				}
				if err == nil {
					_ = rr.r.UnreadByte()
				}
				state = stateAfterQuote
				continue
			}
			if b == '\n' {
				rr.line++
			}
			field.WriteByte(b)
			continue
		}

		switch b {
		case ',':
			endField()
		case '\n':
			rr.line++
			return endRecord(), nil
		case '\r':
			next, err := rr.r.ReadByte()
			if err == nil && next == '\n' {
				rr.line++
				return endRecord(), nil
			}
			if err == io.EOF {
				return endRecord(), nil
			}
			if err == nil {
				_ = rr.r.UnreadByte()
			}
			if state == stateAfterQuote {
				return nil, fmt.Errorf("%w: line %d: unexpected CR after quoted field", ErrSyntax, rr.line)
			}
			field.WriteByte(b)
			state = stateUnquoted
		case '"':
			if state != stateFieldStart {
				return nil, fmt.Errorf("%w: line %d: bare quote in field", ErrSyntax, rr.line)
			}
			state = stateQuoted
		default:
			if state == stateAfterQuote {
				return nil, fmt.Errorf("%w: line %d: text after closing quote", ErrSyntax, rr.line)
			}
			field.WriteByte(b)
			state = stateUnquoted
		}
	}
}
