// Package testutil assembles synthetic SDT containers for tests.
package testutil

import (
	"encoding/binary"

	"github.com/bgrewell/sdt-kit/pkg/entry"
)

// Container describes a synthetic container. Bytes before the signature that are not fields are filled with a
// recognisable pattern so tests can check they are copied unchanged.
type Container struct {
	// SignatureOffset defaults to 0x20.
	SignatureOffset int
	Entries         []*entry.Entry
	CodeBlock       []byte
	// Padding is the number of zero bytes between the text block and the audio block.
	Padding int
	Audio   []byte
	// DeclaredSize overrides the text block size field when non-zero.
	DeclaredSize uint32
	EndOffset    uint32
}

// Entry builds an entry and panics on error, for fixtures only.
func Entry(start, end uint32, langID uint16, unknown [4]byte, text string) *entry.Entry {
	e, err := entry.New(start, end, langID, unknown, text)
	if err != nil {
		panic(err)
	}
	return e
}

// Build returns the container bytes.
func (c Container) Build() []byte {
	sig := c.SignatureOffset
	if sig == 0 {
		sig = 0x20
	}

	var text []byte
	for _, e := range c.Entries {
		text = append(text, e.Marshal()...)
	}
	text = append(text, c.CodeBlock...)

	size := uint32(len(text))
	if c.DeclaredSize != 0 {
		size = c.DeclaredSize
	}

	data := make([]byte, sig+8)
	for i := 0; i < sig; i++ {
		data[i] = 0xF0 | byte(i&0x0F)
	}
	binary.LittleEndian.PutUint32(data[sig-0x0C:], c.EndOffset)
	binary.LittleEndian.PutUint32(data[sig-4:], uint32(len(c.CodeBlock)))
	copy(data[sig:], "PACB")
	binary.LittleEndian.PutUint32(data[sig+4:], size)

	data = append(data, text...)
	data = append(data, make([]byte, c.Padding)...)
	return append(data, c.Audio...)
}

// Audio returns n bytes of non-zero payload starting with a non-zero byte, with zero bytes sprinkled inside so that
// only leading zeros count as padding.
func Audio(n int) []byte {
	audio := make([]byte, n)
	for i := range audio {
		if i%5 == 3 {
			continue
		}
		audio[i] = byte(0x40 + i%0x3F)
	}
	return audio
}
