package dib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	want := Header{
		Size:          HeaderSize,
		Width:         3,
		Height:        -2,
		Planes:        1,
		BitCount:      24,
		Compression:   BIRGB,
		SizeImage:     24,
		XPelsPerMeter: 2835,
		YPelsPerMeter: 2835,
		ClrUsed:       0,
		ClrImportant:  0,
	}
	b := make([]byte, HeaderSize+8)
	want.Put(b)
	b[HeaderSize] = 0xAA // trailing bytes are not part of the header

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.False(t, got.BottomUp())
	require.Equal(t, uint64(3), got.AbsWidth())
	require.Equal(t, uint64(2), got.AbsHeight())
}

func TestParseHeaderLittleEndian(t *testing.T) {
	b := make([]byte, HeaderSize)
	// BITMAPV5HEADER, width 256, height -1, 32 bpp
	copy(b[0:4], []byte{0x7c, 0, 0, 0})
	copy(b[4:8], []byte{0x00, 0x01, 0, 0})
	copy(b[8:12], []byte{0xff, 0xff, 0xff, 0xff})
	copy(b[14:16], []byte{32, 0})

	h, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint32(124), h.Size)
	require.Equal(t, int32(256), h.Width)
	require.Equal(t, int32(-1), h.Height)
	require.Equal(t, uint16(32), h.BitCount)
}

// Every truncated length must fail without touching bytes it doesn't have.
func TestParseHeaderTruncated(t *testing.T) {
	full := make([]byte, HeaderSize)
	for i := range full {
		full[i] = 0xff
	}
	for n := 0; n < HeaderSize; n++ {
		h, err := ParseHeader(full[:n:n])
		require.ErrorIs(t, err, ErrTooShort, "len %d", n)
		require.Equal(t, Header{}, h, "len %d", n)

		_, err = ToPNG(full[:n:n])
		require.ErrorIs(t, err, ErrTooShort, "len %d", n)
	}
}

func TestAbsMinInt32(t *testing.T) {
	h := Header{Width: -1 << 31, Height: -1 << 31}
	require.Equal(t, uint64(1<<31), h.AbsWidth())
	require.Equal(t, uint64(1<<31), h.AbsHeight())
}
