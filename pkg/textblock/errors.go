package textblock

import (
	"errors"
	"fmt"
)

var (
	ErrTruncatedHeader         = errors.New("truncated entry header")
	ErrImplausibleHeader       = errors.New("implausible entry header")
	ErrUnexpectedEndOfTemplate = errors.New("unexpected end of template")
)

// WarningKind classifies a recovered, non-fatal condition.
type WarningKind int

const (
	InvalidTextEncoding WarningKind = iota
	MissingNullTerminator
	UnknownLanguageLabel
	RowCountMismatch
)

func (k WarningKind) String() string {
	switch k {
	case InvalidTextEncoding:
		return "invalid text encoding"
	case MissingNullTerminator:
		return "missing null terminator"
	case UnknownLanguageLabel:
		return "unknown language label"
	case RowCountMismatch:
		return "row count mismatch"
	default:
		return fmt.Sprintf("warning %d", int(k))
	}
}

// Warning records a condition that was recovered from. Offset is set for conditions found in a container, Row (1
// based) for conditions found in imported rows.
type Warning struct {
	Kind   WarningKind
	Offset int
	Row    int
	Detail string
}

func (w Warning) String() string {
	if w.Row > 0 {
		return fmt.Sprintf("%s at row %d: %s", w.Kind, w.Row, w.Detail)
	}
	return fmt.Sprintf("%s at offset 0x%X: %s", w.Kind, w.Offset, w.Detail)
}
