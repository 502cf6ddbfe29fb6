package dib

import (
	"fmt"
	"math"
	"math/bits"
)

// MaxDIBSize bounds how many bytes are ever copied out of a clipboard
// allocation, whatever its header claims.
const MaxDIBSize = 100 << 20

// Layout locates the pixel rows of a DIB.
type Layout struct {
	PixelOffset int
	Stride      int // bytes per row, padded to 4
	Width       int
	Height      int
	Channels    int // 3 (BGR) or 4 (BGRA)
	BottomUp    bool
	End         int // PixelOffset + Stride*Height
}

// NewLayout validates h and computes where its pixels live. It fails with
// ErrUnsupported for anything other than uncompressed or bit-field 24/32-bit
// bitmaps, and with ErrTooShort or ErrOverflow when the declared sizes are
// inconsistent.
func NewLayout(h Header) (Layout, error) {
	if h.BitCount != 24 && h.BitCount != 32 {
		return Layout{}, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.BitCount)
	}
	switch h.Compression {
	case BIRGB, BIBitfields, BIAlphaBitfields:
	default:
		return Layout{}, fmt.Errorf("%w: compression %d", ErrUnsupported, h.Compression)
	}
	if h.Width == 0 || h.Height == 0 {
		return Layout{}, fmt.Errorf("%w: %dx%d", ErrUnsupported, h.Width, h.Height)
	}
	if h.Size < HeaderSize {
		return Layout{}, fmt.Errorf("%w: header size %d", ErrTooShort, h.Size)
	}

	width, ok := toInt(h.AbsWidth())
	if !ok {
		return Layout{}, ErrOverflow
	}
	height, ok := toInt(h.AbsHeight())
	if !ok {
		return Layout{}, ErrOverflow
	}
	off, ok := PixelOffset(h)
	if !ok {
		return Layout{}, fmt.Errorf("%w: pixel offset", ErrOverflow)
	}
	stride, ok := RowStride(width, h.BitCount)
	if !ok {
		return Layout{}, fmt.Errorf("%w: row stride", ErrOverflow)
	}
	size, ok := mulInt(stride, height)
	if !ok {
		return Layout{}, fmt.Errorf("%w: image size", ErrOverflow)
	}
	end, ok := addInt(off, size)
	if !ok {
		return Layout{}, fmt.Errorf("%w: image end", ErrOverflow)
	}

	return Layout{
		PixelOffset: off,
		Stride:      stride,
		Width:       width,
		Height:      height,
		Channels:    int(h.BitCount) / 8,
		BottomUp:    h.BottomUp(),
		End:         end,
	}, nil
}

// RowStride is ceil(width*bitCount/32)*4.
func RowStride(width int, bitCount uint16) (int, bool) {
	if width <= 0 || bitCount == 0 {
		return 0, false
	}
	rowBits, ok := mulInt(width, int(bitCount))
	if !ok {
		return 0, false
	}
	rowBits, ok = addInt(rowBits, 31)
	if !ok {
		return 0, false
	}
	return mulInt(rowBits/32, 4)
}

// PaletteSize is the color table length in bytes. True-color bitmaps have
// none; paletted ones have ClrUsed entries, or 2^bitCount when that is 0.
func PaletteSize(bitCount uint16, clrUsed uint32) (int, bool) {
	if bitCount > 8 {
		return 0, true
	}
	entries := 1 << bitCount
	if clrUsed > 0 {
		n, ok := toInt(uint64(clrUsed))
		if !ok {
			return 0, false
		}
		entries = n
	}
	return mulInt(entries, 4)
}

// PixelOffset is where the pixel rows start: header, then the channel
// masks that follow a bare BITMAPINFOHEADER, then the color table.
func PixelOffset(h Header) (int, bool) {
	size, ok := toInt(uint64(h.Size))
	if !ok || size < HeaderSize {
		return 0, false
	}

	// V4/V5 headers hold the masks themselves.
	masks := 0
	if size == HeaderSize {
		switch h.Compression {
		case BIBitfields:
			masks = 12
		case BIAlphaBitfields:
			masks = 16
		}
	}

	palette, ok := PaletteSize(h.BitCount, h.ClrUsed)
	if !ok {
		return 0, false
	}
	off, ok := addInt(size, masks)
	if !ok {
		return 0, false
	}
	return addInt(off, palette)
}

// CopySize is the number of bytes a well-formed DIB with header h occupies.
func CopySize(h Header) (int, bool) {
	off, ok := PixelOffset(h)
	if !ok {
		return 0, false
	}
	width, ok := toInt(h.AbsWidth())
	if !ok {
		return 0, false
	}
	height, ok := toInt(h.AbsHeight())
	if !ok {
		return 0, false
	}
	stride, ok := RowStride(width, h.BitCount)
	if !ok {
		return 0, false
	}
	size, ok := mulInt(stride, height)
	if !ok {
		return 0, false
	}
	return addInt(off, size)
}

// ClampCopySize decides how many bytes to copy out of an allocation of the
// given size holding a DIB with header h. The header's own estimate is used
// when it can be computed; either way the result never exceeds the
// allocation or MaxDIBSize. Allocations too small for a header yield 0.
func ClampCopySize(h Header, allocated int) int {
	if allocated < HeaderSize {
		return 0
	}
	n, ok := CopySize(h)
	if !ok {
		n = allocated
	}
	return min(n, allocated, MaxDIBSize)
}

/*────── checked arithmetic ───────────────────────────────────*/

func toInt(v uint64) (int, bool) {
	if v > math.MaxInt {
		return 0, false
	}
	return int(v), true
}

func mulInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul(uint(a), uint(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

func addInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	sum := uint(a) + uint(b) // cannot wrap: both are <= MaxInt
	if sum > math.MaxInt {
		return 0, false
	}
	return int(sum), true
}
