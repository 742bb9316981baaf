// Package rebuild reassembles an SDT container around a new text block, carrying over every byte of the template
// that is not caption text.
package rebuild

import (
	"bytes"
	"fmt"
	"math"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/container"
	"github.com/bgrewell/sdt-kit/pkg/encoding"
	"github.com/bgrewell/sdt-kit/pkg/logging"
	"github.com/bgrewell/sdt-kit/pkg/option"
)

// Rebuilder splices a new text block into a template container.
type Rebuilder struct {
	opts *option.Options
	log  *logging.Logger
}

func NewRebuilder(opts ...option.Option) *Rebuilder {
	o := option.New(opts...)
	return &Rebuilder{
		opts: o,
		log:  logging.NewLogger(o.Logger).WithName("rebuild"),
	}
}

// Result describes a rebuilt container.
type Result struct {
	Data            []byte
	SignatureOffset int
	// TextBlockSize is the new size field value: entries plus code block.
	TextBlockSize uint32
	EndOffset     uint32
	CodeBlockSize int
	Padding       int
	AudioOffset   int
	AudioSize     int
}

// codeBlockRange returns where the code block sits in the template. It is taken to be the last CodeBlockSize bytes
// of the original text block, wherever the edited entries now end. This has only been checked against a handful of
// sample files.
func codeBlockRange(l *container.Layout) (int, int) {
	return l.CodeBlockStart(), l.TextBlockEnd()
}

// EndOffset computes the end offset field for a container whose signature is at sigOffset and whose text block,
// code block included, is textSize bytes long. The stored value is the last byte of that data rounded down to the
// alignment, less the distance of the signature past the nominal base (also rounded down to the alignment).
func EndOffset(sigOffset int, textSize int) (uint32, error) {
	rawEnd := sigOffset + consts.SDT_TEXT_BLOCK_START_OFFSET + textSize - 1
	alignedEnd := encoding.AlignDown(rawEnd, consts.SDT_ALIGNMENT)
	correction := floorDiv(sigOffset-consts.SDT_END_OFFSET_NOMINAL_BASE, consts.SDT_ALIGNMENT) * consts.SDT_ALIGNMENT
	end := alignedEnd - correction
	if end < 0 || uint64(end) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: end offset %d does not fit the field", container.ErrOffsetOutOfBounds, end)
	}
	return uint32(end), nil
}

// floorDiv divides rounding toward negative infinity, so signatures before the nominal base get a negative
// correction.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Rebuild builds the final container bytes from newTextBlock and the original container template. The template is
// not modified. Nothing is returned unless every step succeeds.
func (r *Rebuilder) Rebuild(newTextBlock []byte, template []byte) (*Result, error) {
	layout, err := container.ParseLayout(template)
	if err != nil {
		return nil, err
	}
	sig := layout.SignatureOffset
	r.log.Debug("Signature found", "offset", fmt.Sprintf("0x%X", sig))
	r.log.Debug("Original text block size", "size", fmt.Sprintf("0x%X", layout.TextBlockSize))
	r.log.Debug("Code block size", "size", fmt.Sprintf("0x%X", layout.CodeBlockSize))

	codeStart, codeEnd := codeBlockRange(layout)
	code := template[codeStart:codeEnd]
	audio := template[layout.AudioOffset:]

	textSize := len(newTextBlock) + len(code)
	if uint64(textSize) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: text block of %d bytes does not fit the size field", container.ErrOffsetOutOfBounds, textSize)
	}
	endOffset, err := EndOffset(sig, textSize)
	if err != nil {
		return nil, err
	}
	r.log.Debug("End offset", "value", fmt.Sprintf("0x%X", endOffset),
		"correction", fmt.Sprintf("0x%X", floorDiv(sig-consts.SDT_END_OFFSET_NOMINAL_BASE, consts.SDT_ALIGNMENT)*consts.SDT_ALIGNMENT))

	written := layout.TextBlockStart() + textSize
	padding := encoding.PaddingFor(written, consts.SDT_ALIGNMENT)

	var out bytes.Buffer
	out.Grow(written + padding + len(audio))
	out.Write(template[:layout.TextBlockStart()])
	r.opts.ProgressCallback("rebuild", int64(out.Len()), int64(written+padding+len(audio)))
	out.Write(newTextBlock)
	out.Write(code)
	out.Write(make([]byte, padding))
	r.opts.ProgressCallback("rebuild", int64(out.Len()), int64(written+padding+len(audio)))
	out.Write(audio)

	data := out.Bytes()
	if err := encoding.PutUint32LE(data, sig+consts.SDT_TEXT_BLOCK_SIZE_OFFSET, uint32(textSize)); err != nil {
		return nil, fmt.Errorf("%w: %w", container.ErrOffsetOutOfBounds, err)
	}
	if err := encoding.PutUint32LE(data, sig-consts.SDT_END_OFFSET_OFFSET, endOffset); err != nil {
		return nil, fmt.Errorf("%w: %w", container.ErrOffsetOutOfBounds, err)
	}
	r.opts.ProgressCallback("rebuild", int64(len(data)), int64(len(data)))

	if padding > 0 {
		r.log.Debug("Adding padding before audio", "bytes", padding)
	}
	if len(audio) > 0 {
		r.log.Debug("Appending audio data", "size", fmt.Sprintf("0x%X", len(audio)))
	}

	return &Result{
		Data:            data,
		SignatureOffset: sig,
		TextBlockSize:   uint32(textSize),
		EndOffset:       endOffset,
		CodeBlockSize:   len(code),
		Padding:         padding,
		AudioOffset:     written + padding,
		AudioSize:       len(audio),
	}, nil
}
