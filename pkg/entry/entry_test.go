package entry

import (
	"strings"
	"testing"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/stretchr/testify/require"
)

func TestHeader_MarshalUnmarshal(t *testing.T) {
	t.Run("known layout", func(t *testing.T) {
		h := Header{
			StartTime: 0x00000190,
			EndTime:   0x000003E8,
			Unknown:   [4]byte{0xDE, 0xAD, 0xBE, 0xEF},
			Size:      0x0016,
			LangID:    7,
		}
		data := h.Marshal()
		require.Equal(t, [16]byte{
			0x90, 0x01, 0x00, 0x00,
			0xE8, 0x03, 0x00, 0x00,
			0xDE, 0xAD, 0xBE, 0xEF,
			0x16, 0x00,
			0x07, 0x00,
		}, data)

		var got Header
		require.NoError(t, got.Unmarshal(data[:]))
		require.Equal(t, h, got)
	})

	t.Run("unmarshal ignores trailing bytes", func(t *testing.T) {
		data := append(make([]byte, 16), 'x', 'y')
		data[14] = 3
		var h Header
		require.NoError(t, h.Unmarshal(data))
		require.Equal(t, uint16(3), h.LangID)
	})

	t.Run("unmarshal fails on short data", func(t *testing.T) {
		var h Header
		err := h.Unmarshal(make([]byte, 15))
		require.ErrorIs(t, err, ErrShortHeader)
		require.Contains(t, err.Error(), "expected 16 bytes, got 15")
	})
}

func TestNew(t *testing.T) {
	e, err := New(10, 20, 7, [4]byte{1, 2, 3, 4}, "こんにちは")
	require.NoError(t, err)
	// 15 bytes of UTF-8, a terminator and the header
	require.Equal(t, uint16(32), e.Size)

	data := e.Marshal()
	require.Len(t, data, int(e.Size))
	require.Equal(t, byte(0), data[len(data)-1])
	require.Equal(t, "こんにちは", string(data[16:len(data)-1]))
	require.Equal(t, []byte{1, 2, 3, 4}, data[8:12])
}

func TestNewEmptyText(t *testing.T) {
	e, err := New(0, 0, 1, [4]byte{}, "")
	require.NoError(t, err)
	require.Equal(t, uint16(17), e.Size)
	require.Len(t, e.Marshal(), 17)
}

func TestNewTooLarge(t *testing.T) {
	limit := consts.SDT_MAX_ENTRY_SIZE - consts.SDT_ENTRY_HEADER_SIZE - 1
	_, err := New(0, 0, 1, [4]byte{}, strings.Repeat("a", limit))
	require.NoError(t, err)

	_, err = New(0, 0, 1, [4]byte{}, strings.Repeat("a", limit+1))
	require.ErrorIs(t, err, ErrEntryTooLarge)
}
