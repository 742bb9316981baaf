package entry

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bgrewell/sdt-kit/pkg/consts"
)

var (
	ErrShortHeader   = errors.New("entry header too short")
	ErrEntryTooLarge = errors.New("entry too large")
)

// Header is the fixed 16-byte record header that precedes every caption's text.
type Header struct {
	// Start Time at which the caption is shown. The unit is not known, values are carried as opaque integers.
	//  | Encoding: LittleEndian
	StartTime uint32 `json:"start_time"`
	// End Time at which the caption is hidden.
	//  | Encoding: LittleEndian
	EndTime uint32 `json:"end_time"`
	// Unknown holds reserved bytes whose purpose is not known. They are always copied from the original record and
	// never computed.
	Unknown [consts.SDT_ENTRY_UNKNOWN_SIZE]byte `json:"unknown"`
	// Size is the total length of the record: header, text and the terminating NUL. Readers advance by this value to
	// reach the next header.
	//  | Encoding: LittleEndian
	Size uint16 `json:"size"`
	// LangID identifies the language of the text.
	//  | Encoding: LittleEndian
	LangID uint16 `json:"lang_id"`
}

// Marshal converts the Header into its 16-byte on-disk representation.
func (h *Header) Marshal() [consts.SDT_ENTRY_HEADER_SIZE]byte {
	var data [consts.SDT_ENTRY_HEADER_SIZE]byte
	binary.LittleEndian.PutUint32(data[0:4], h.StartTime)
	binary.LittleEndian.PutUint32(data[4:8], h.EndTime)
	copy(data[8:12], h.Unknown[:])
	binary.LittleEndian.PutUint16(data[12:14], h.Size)
	binary.LittleEndian.PutUint16(data[14:16], h.LangID)
	return data
}

// Unmarshal reads a Header from the first 16 bytes of data.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < consts.SDT_ENTRY_HEADER_SIZE {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrShortHeader, consts.SDT_ENTRY_HEADER_SIZE, len(data))
	}
	h.StartTime = binary.LittleEndian.Uint32(data[0:4])
	h.EndTime = binary.LittleEndian.Uint32(data[4:8])
	copy(h.Unknown[:], data[8:12])
	h.Size = binary.LittleEndian.Uint16(data[12:14])
	h.LangID = binary.LittleEndian.Uint16(data[14:16])
	return nil
}

// Entry is one decoded caption record.
type Entry struct {
	Header
	// Offset of the header within the container.
	Offset int `json:"offset"`
	// Label is the display form of LangID, e.g. "[ENG]".
	Label string `json:"label"`
	// Text is the caption text without its terminator.
	Text string `json:"text"`
}

// New builds an Entry for text, computing Size from the encoded text length plus header and terminator.
func New(startTime, endTime uint32, langID uint16, unknown [consts.SDT_ENTRY_UNKNOWN_SIZE]byte, text string) (*Entry, error) {
	size := consts.SDT_ENTRY_HEADER_SIZE + len(text) + 1
	if size > consts.SDT_MAX_ENTRY_SIZE {
		return nil, fmt.Errorf("%w: %d bytes exceeds the 16-bit size field", ErrEntryTooLarge, size)
	}
	return &Entry{
		Header: Header{
			StartTime: startTime,
			EndTime:   endTime,
			Unknown:   unknown,
			Size:      uint16(size),
			LangID:    langID,
		},
		Text: text,
	}, nil
}

// Marshal returns the header followed by the text and its NUL terminator.
func (e *Entry) Marshal() []byte {
	header := e.Header.Marshal()
	data := make([]byte, 0, len(header)+len(e.Text)+1)
	data = append(data, header[:]...)
	data = append(data, e.Text...)
	return append(data, 0x00)
}
