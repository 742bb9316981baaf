// Package container locates the PACB metadata block inside an SDT container and describes where its fields and
// regions live.
package container

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/encoding"
)

var (
	ErrSignatureNotFound = errors.New("PACB signature not found")
	ErrOffsetOutOfBounds = errors.New("offset out of bounds")
)

// Locate returns the offset of the first PACB signature in data.
func Locate(data []byte) (int, error) {
	idx := bytes.Index(data, []byte(consts.SDT_SIGNATURE))
	if idx < 0 {
		return -1, ErrSignatureNotFound
	}
	return idx, nil
}

// TextBlockSize reads the text block size field that follows the signature at sigOffset.
func TextBlockSize(data []byte, sigOffset int) (uint32, error) {
	size, err := encoding.ReadUint32LE(data, sigOffset+consts.SDT_TEXT_BLOCK_SIZE_OFFSET)
	if err != nil {
		return 0, fmt.Errorf("%w: text block size: %w", ErrOffsetOutOfBounds, err)
	}
	return size, nil
}

// Layout describes the regions of a container. All offsets are absolute positions in the file.
type Layout struct {
	// SignatureOffset is the position of the PACB signature.
	SignatureOffset int `json:"signature_offset"`
	// TextBlockSize is the declared length of the text block, code block included.
	TextBlockSize uint32 `json:"text_block_size"`
	// CodeBlockSize is the length of the opaque tail of the text block.
	CodeBlockSize uint32 `json:"code_block_size"`
	// EndOffset is the stored, alignment-rounded end of the text and code data.
	EndOffset uint32 `json:"end_offset"`
	// AudioOffset is the position of the first non-zero byte after the text block, or FileSize if there is none.
	AudioOffset int `json:"audio_offset"`
	// FileSize is the length of the container.
	FileSize int `json:"file_size"`
}

// ParseLayout locates the signature and reads every field surrounding it. Any field or region that does not fit in
// data is reported as ErrOffsetOutOfBounds.
func ParseLayout(data []byte) (*Layout, error) {
	sig, err := Locate(data)
	if err != nil {
		return nil, err
	}

	l := &Layout{SignatureOffset: sig, FileSize: len(data)}

	if l.TextBlockSize, err = TextBlockSize(data, sig); err != nil {
		return nil, err
	}
	if l.CodeBlockSize, err = encoding.ReadUint32LE(data, sig-consts.SDT_CODE_BLOCK_SIZE_OFFSET); err != nil {
		return nil, fmt.Errorf("%w: code block size: %w", ErrOffsetOutOfBounds, err)
	}
	if l.EndOffset, err = encoding.ReadUint32LE(data, sig-consts.SDT_END_OFFSET_OFFSET); err != nil {
		return nil, fmt.Errorf("%w: end offset: %w", ErrOffsetOutOfBounds, err)
	}

	if end := l.TextBlockEnd(); end > len(data) {
		return nil, fmt.Errorf("%w: text block ends at 0x%X, file length 0x%X", ErrOffsetOutOfBounds, end, len(data))
	}
	if l.CodeBlockSize > l.TextBlockSize {
		return nil, fmt.Errorf("%w: code block size 0x%X exceeds text block size 0x%X",
			ErrOffsetOutOfBounds, l.CodeBlockSize, l.TextBlockSize)
	}

	l.AudioOffset = l.TextBlockEnd() + encoding.LeadingZeros(data[l.TextBlockEnd():])
	return l, nil
}

// TextBlockStart is the position of the first entry header.
func (l *Layout) TextBlockStart() int {
	return l.SignatureOffset + consts.SDT_TEXT_BLOCK_START_OFFSET
}

// TextBlockEnd is the position just past the text block.
func (l *Layout) TextBlockEnd() int {
	return l.TextBlockStart() + int(l.TextBlockSize)
}

// CodeBlockStart is the position of the code block, which sits at the tail of the text block.
func (l *Layout) CodeBlockStart() int {
	return l.TextBlockEnd() - int(l.CodeBlockSize)
}

// PaddingSize is the number of zero bytes between the text block and the audio block.
func (l *Layout) PaddingSize() int {
	return l.AudioOffset - l.TextBlockEnd()
}

// AudioSize is the length of the audio block without its leading padding.
func (l *Layout) AudioSize() int {
	return l.FileSize - l.AudioOffset
}
