package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrOutOfRange = errors.New("field out of range")
)

// ReadUint32LE reads a little-endian uint32 stored at offset. It fails when the field would extend past the end of
// the buffer or when the offset is negative.
func ReadUint32LE(data []byte, offset int) (uint32, error) {
	if err := checkRange(data, offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data[offset : offset+4]), nil
}

// PutUint32LE writes val as a little-endian uint32 at offset.
func PutUint32LE(data []byte, offset int, val uint32) error {
	if err := checkRange(data, offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(data[offset:offset+4], val)
	return nil
}

// ReadUint16LE reads a little-endian uint16 stored at offset.
func ReadUint16LE(data []byte, offset int) (uint16, error) {
	if err := checkRange(data, offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data[offset : offset+2]), nil
}

func checkRange(data []byte, offset int, width int) error {
	if offset < 0 || offset+width > len(data) {
		return fmt.Errorf("%w: %d byte field at offset 0x%X, buffer length 0x%X", ErrOutOfRange, width, offset, len(data))
	}
	return nil
}

// AlignDown rounds value down to the nearest multiple of alignment.
func AlignDown(value int, alignment int) int {
	return value / alignment * alignment
}

// AlignUp rounds value up to the nearest multiple of alignment.
func AlignUp(value int, alignment int) int {
	return (value + alignment - 1) / alignment * alignment
}

// PaddingFor returns the number of zero bytes needed to move position to the next multiple of alignment.
func PaddingFor(position int, alignment int) int {
	return AlignUp(position, alignment) - position
}

// LeadingZeros counts the run of 0x00 bytes at the start of data.
func LeadingZeros(data []byte) int {
	n := 0
	for n < len(data) && data[n] == 0 {
		n++
	}
	return n
}

// CString returns the bytes from offset up to (not including) the first NUL byte. The second return value is the
// offset of the terminator, or -1 if no terminator exists before the end of the buffer.
func CString(data []byte, offset int) ([]byte, int) {
	if offset < 0 || offset > len(data) {
		return nil, -1
	}
	for i := offset; i < len(data); i++ {
		if data[i] == 0x00 {
			return data[offset:i], i
		}
	}
	return nil, -1
}
