package dib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowStride(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		bitCount uint16
		want     int
		ok       bool
	}{
		{"3px 24bit", 3, 24, 12, true},
		{"1px 32bit", 1, 32, 4, true},
		{"1px 24bit padded", 1, 24, 4, true},
		{"5px 24bit", 5, 24, 16, true},
		{"1px 1bit", 1, 1, 4, true},
		{"zero width", 0, 24, 0, false},
		{"negative width", -4, 24, 0, false},
		{"zero depth", 4, 0, 0, false},
		{"overflow", math.MaxInt, 32, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := RowStride(tc.width, tc.bitCount)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPaletteSize(t *testing.T) {
	n, ok := PaletteSize(24, 0)
	require.True(t, ok)
	require.Zero(t, n)

	n, ok = PaletteSize(32, 256) // ignored for true color
	require.True(t, ok)
	require.Zero(t, n)

	n, ok = PaletteSize(8, 0)
	require.True(t, ok)
	require.Equal(t, 256*4, n)

	n, ok = PaletteSize(4, 3)
	require.True(t, ok)
	require.Equal(t, 12, n)

	n, ok = PaletteSize(1, 0)
	require.True(t, ok)
	require.Equal(t, 8, n)
}

func TestPixelOffset(t *testing.T) {
	tests := []struct {
		name string
		h    Header
		want int
		ok   bool
	}{
		{"minimal 24bit", Header{Size: HeaderSize, BitCount: 24}, HeaderSize, true},
		{"bitfields after info header", Header{Size: HeaderSize, BitCount: 32, Compression: BIBitfields}, HeaderSize + 12, true},
		{"alpha bitfields after info header", Header{Size: HeaderSize, BitCount: 32, Compression: BIAlphaBitfields}, HeaderSize + 16, true},
		{"v5 header holds masks", Header{Size: 124, BitCount: 32, Compression: BIBitfields}, 124, true},
		{"v4 header alpha bitfields", Header{Size: 108, BitCount: 32, Compression: BIAlphaBitfields}, 108, true},
		{"8bit palette", Header{Size: HeaderSize, BitCount: 8}, HeaderSize + 1024, true},
		{"declared palette", Header{Size: HeaderSize, BitCount: 8, ClrUsed: 16}, HeaderSize + 64, true},
		{"header too small", Header{Size: 12, BitCount: 24}, 0, false},
		{"zero header", Header{}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PixelOffset(tc.h)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPixelOffsetHugePalette(t *testing.T) {
	h := Header{Size: math.MaxUint32, BitCount: 8, ClrUsed: math.MaxUint32}
	off, ok := PixelOffset(h)
	if math.MaxInt == math.MaxInt64 {
		require.True(t, ok)
		require.Equal(t, int64(math.MaxUint32)*5, int64(off))
	} else {
		require.False(t, ok)
	}
}

func TestCopySize(t *testing.T) {
	n, ok := CopySize(Header{Size: HeaderSize, Width: 3, Height: 2, BitCount: 24})
	require.True(t, ok)
	require.Equal(t, HeaderSize+12*2, n)

	n, ok = CopySize(Header{Size: HeaderSize, Width: 3, Height: -2, BitCount: 32, Compression: BIBitfields})
	require.True(t, ok)
	require.Equal(t, HeaderSize+12+12*2, n)

	_, ok = CopySize(Header{Size: HeaderSize, Width: 0, Height: 2, BitCount: 24})
	require.False(t, ok)
}

// stride*height for the largest int32 dimensions exceeds any address space
// once a 32-bit depth is involved, so layout has to refuse it.
func TestLayoutOverflow(t *testing.T) {
	for _, h := range []Header{
		{Size: HeaderSize, Width: math.MaxInt32, Height: math.MaxInt32, BitCount: 32},
		{Size: HeaderSize, Width: math.MinInt32, Height: math.MinInt32, BitCount: 32},
		{Size: math.MaxUint32, Width: math.MaxInt32, Height: math.MaxInt32, BitCount: 24},
	} {
		_, ok := CopySize(h)
		require.False(t, ok, "%+v", h)

		_, err := NewLayout(h)
		require.ErrorIs(t, err, ErrOverflow, "%+v", h)
	}
}

func TestNewLayout(t *testing.T) {
	l, err := NewLayout(Header{Size: HeaderSize, Width: 3, Height: 2, BitCount: 24})
	require.NoError(t, err)
	require.Equal(t, Layout{
		PixelOffset: HeaderSize,
		Stride:      12,
		Width:       3,
		Height:      2,
		Channels:    3,
		BottomUp:    true,
		End:         HeaderSize + 24,
	}, l)

	l, err = NewLayout(Header{Size: HeaderSize, Width: 1, Height: -5, BitCount: 32, Compression: BIAlphaBitfields})
	require.NoError(t, err)
	require.False(t, l.BottomUp)
	require.Equal(t, 4, l.Channels)
	require.Equal(t, HeaderSize+16, l.PixelOffset)
	require.Equal(t, HeaderSize+16+4*5, l.End)
}

func TestNewLayoutRejects(t *testing.T) {
	tests := []struct {
		name string
		h    Header
		err  error
	}{
		{"8bit", Header{Size: HeaderSize, Width: 1, Height: 1, BitCount: 8}, ErrUnsupported},
		{"16bit", Header{Size: HeaderSize, Width: 1, Height: 1, BitCount: 16}, ErrUnsupported},
		{"1bit", Header{Size: HeaderSize, Width: 1, Height: 1, BitCount: 1}, ErrUnsupported},
		{"rle8", Header{Size: HeaderSize, Width: 1, Height: 1, BitCount: 24, Compression: 1}, ErrUnsupported},
		{"jpeg", Header{Size: HeaderSize, Width: 1, Height: 1, BitCount: 32, Compression: 4}, ErrUnsupported},
		{"zero width", Header{Size: HeaderSize, Width: 0, Height: 1, BitCount: 24}, ErrUnsupported},
		{"zero height", Header{Size: HeaderSize, Width: 1, Height: 0, BitCount: 24}, ErrUnsupported},
		{"core header", Header{Size: 12, Width: 1, Height: 1, BitCount: 24}, ErrTooShort},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLayout(tc.h)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestClampCopySize(t *testing.T) {
	h := Header{Size: HeaderSize, Width: 3, Height: 2, BitCount: 24} // 64 bytes

	require.Equal(t, 64, ClampCopySize(h, 4096), "allocation larger than bitmap")
	require.Equal(t, 50, ClampCopySize(h, 50), "allocation smaller than claimed")
	require.Zero(t, ClampCopySize(h, HeaderSize-1))

	big := Header{Size: HeaderSize, Width: 1 << 14, Height: 1 << 14, BitCount: 32} // 1 GiB
	require.Equal(t, MaxDIBSize, ClampCopySize(big, math.MaxInt))

	broken := Header{Size: 0}
	require.Equal(t, 1000, ClampCopySize(broken, 1000))
	require.Equal(t, MaxDIBSize, ClampCopySize(broken, MaxDIBSize+1))
}
