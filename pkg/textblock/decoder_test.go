package textblock

import (
	"encoding/binary"
	"testing"

	"github.com/bgrewell/sdt-kit/internal/testutil"
	"github.com/bgrewell/sdt-kit/pkg/container"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/bgrewell/sdt-kit/pkg/option"
	"github.com/bgrewell/sdt-kit/pkg/plausibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoEntryContainer() testutil.Container {
	return testutil.Container{
		Entries: []*entry.Entry{
			testutil.Entry(100, 200, 1, [4]byte{0xA1, 0xA2, 0xA3, 0xA4}, "Hello"),
			testutil.Entry(300, 400, 7, [4]byte{0xB1, 0xB2, 0xB3, 0xB4}, "こんにちは"),
		},
		Padding: 10,
		Audio:   testutil.Audio(30),
	}
}

func TestDecode_TwoEntries(t *testing.T) {
	data := twoEntryContainer().Build()

	res, err := NewDecoder().DecodeContainer(data)
	require.NoError(t, err)
	require.NoError(t, res.Stop)
	require.Empty(t, res.Warnings)
	require.Equal(t, 0x20, res.SignatureOffset)
	require.Equal(t, uint32(22+32), res.TextBlockSize)
	require.Len(t, res.Entries, 2)

	first := res.Entries[0]
	assert.Equal(t, uint32(100), first.StartTime)
	assert.Equal(t, uint32(200), first.EndTime)
	assert.Equal(t, "[ENG]", first.Label)
	assert.Equal(t, "Hello", first.Text)
	assert.Equal(t, [4]byte{0xA1, 0xA2, 0xA3, 0xA4}, first.Unknown)
	assert.Equal(t, 0x28, first.Offset)

	second := res.Entries[1]
	assert.Equal(t, "[JPN]", second.Label)
	assert.Equal(t, "こんにちは", second.Text)
	assert.Equal(t, uint16(32), second.Size)
	assert.Equal(t, 0x28+22, second.Offset)
}

// The loop only checks where a header starts, so an entry that begins inside the declared block is read whole even
// when it extends beyond it.
func TestDecode_EntryStartingInsideShortBlock(t *testing.T) {
	c := twoEntryContainer()
	c.DeclaredSize = 32
	data := c.Build()

	res, err := NewDecoder().DecodeContainer(data)
	require.NoError(t, err)
	require.NoError(t, res.Stop)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "[ENG]", res.Entries[0].Label)
	assert.Equal(t, "[JPN]", res.Entries[1].Label)
}

func TestDecode_ImplausibleLanguageStops(t *testing.T) {
	c := twoEntryContainer()
	c.Entries = append(c.Entries[:1], testutil.Entry(500, 600, 9999, [4]byte{}, "junk"), c.Entries[1])
	data := c.Build()

	res, err := NewDecoder().DecodeContainer(data)
	require.NoError(t, err)
	require.ErrorIs(t, res.Stop, ErrImplausibleHeader)
	require.Contains(t, res.Stop.Error(), "offset 0x3E")
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Hello", res.Entries[0].Text)
}

func TestDecode_UnnamedLanguageWithinTolerance(t *testing.T) {
	c := testutil.Container{Entries: []*entry.Entry{testutil.Entry(1, 2, 6, [4]byte{}, "six")}}
	res, err := NewDecoder().DecodeContainer(c.Build())
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "[6]", res.Entries[0].Label)
}

func TestDecode_StrictFilter(t *testing.T) {
	c := testutil.Container{Entries: []*entry.Entry{
		testutil.Entry(1, 2, 1, [4]byte{}, "one"),
		testutil.Entry(3, 4, 6, [4]byte{}, "six"),
	}}
	res, err := NewDecoder(option.WithPlausibility(plausibility.Strict(option.New().Languages))).DecodeContainer(c.Build())
	require.NoError(t, err)
	require.ErrorIs(t, res.Stop, ErrImplausibleHeader)
	require.Len(t, res.Entries, 1)
}

func TestDecode_TruncatedHeader(t *testing.T) {
	c := testutil.Container{
		Entries:      []*entry.Entry{testutil.Entry(1, 2, 1, [4]byte{}, "abc")},
		DeclaredSize: 0x40,
	}
	data := c.Build()
	data = append(data, 1, 2, 3, 4, 5)

	res, err := NewDecoder().DecodeContainer(data)
	require.NoError(t, err)
	require.ErrorIs(t, res.Stop, ErrTruncatedHeader)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "abc", res.Entries[0].Text)
}

func TestDecode_ZeroSizeStops(t *testing.T) {
	c := testutil.Container{Entries: []*entry.Entry{
		testutil.Entry(1, 2, 1, [4]byte{}, "abc"),
		testutil.Entry(3, 4, 1, [4]byte{}, "def"),
	}}
	data := c.Build()
	// Second entry header starts at 0x28 + 20, size field 12 bytes in
	binary.LittleEndian.PutUint16(data[0x28+20+12:], 0)

	res, err := NewDecoder().DecodeContainer(data)
	require.NoError(t, err)
	require.ErrorIs(t, res.Stop, ErrImplausibleHeader)
	require.Len(t, res.Entries, 1)
}

func TestDecode_InvalidUTF8Replaced(t *testing.T) {
	c := testutil.Container{Entries: []*entry.Entry{testutil.Entry(1, 2, 1, [4]byte{}, "ab\xffcd")}}

	res, err := NewDecoder().DecodeContainer(c.Build())
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "ab\uFFFDcd", res.Entries[0].Text)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, InvalidTextEncoding, res.Warnings[0].Kind)
	assert.Equal(t, 0x28, res.Warnings[0].Offset)
}

func TestDecode_MissingTerminator(t *testing.T) {
	c := testutil.Container{Entries: []*entry.Entry{testutil.Entry(1, 2, 1, [4]byte{}, "abc")}}
	data := c.Build()
	// Drop the terminator so the text runs into the end of the file
	data = data[:len(data)-1]

	res, err := NewDecoder().DecodeContainer(data)
	require.NoError(t, err)
	require.NoError(t, res.Stop)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "", res.Entries[0].Text)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, MissingNullTerminator, res.Warnings[0].Kind)
	assert.Contains(t, res.Warnings[0].String(), "offset 0x28")
}

func TestDecode_Errors(t *testing.T) {
	_, err := NewDecoder().DecodeContainer([]byte("no signature here"))
	require.ErrorIs(t, err, container.ErrSignatureNotFound)

	_, err = NewDecoder().DecodeContainer([]byte("....PACB\x01"))
	require.ErrorIs(t, err, container.ErrOffsetOutOfBounds)
}

func TestDecode_Progress(t *testing.T) {
	var last [2]int64
	calls := 0
	d := NewDecoder(option.WithProgress(func(stage string, processed, total int64) {
		assert.Equal(t, "decode", stage)
		last = [2]int64{processed, total}
		calls++
	}))
	_, err := d.DecodeContainer(twoEntryContainer().Build())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, [2]int64{54, 54}, last)
}
