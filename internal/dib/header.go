// Package dib decodes packed device-independent bitmaps, the CF_DIB and
// CF_DIBV5 clipboard formats, into PNG.
//
// A packed DIB is a BITMAPINFOHEADER (or a larger V4/V5 header), followed
// by optional channel masks and an optional color table, followed by the
// pixel rows. Every size in the header comes from whichever program put the
// bitmap on the clipboard, so nothing in it is trusted: all offsets are
// computed with overflow checks and every read is bounds-checked.
package dib

import (
	"encoding/binary"
	"errors"
)

// HeaderSize is the size of BITMAPINFOHEADER, the smallest header a
// clipboard DIB can carry.
const HeaderSize = 40

// Compression modes (biCompression).
const (
	BIRGB            uint32 = 0
	BIBitfields      uint32 = 3
	BIAlphaBitfields uint32 = 6
)

/*────── errors ───────────────────────────────────────────────*/
var (
	ErrTooShort    = errors.New("dib: buffer shorter than header")
	ErrUnsupported = errors.New("dib: unsupported bitmap format")
	ErrOverflow    = errors.New("dib: size arithmetic overflow")
	ErrTruncated   = errors.New("dib: pixel data exceeds buffer")
	ErrEncode      = errors.New("dib: png encode failed")
)

// Header holds the BITMAPINFOHEADER fields. Larger headers start with the
// same 40 bytes, so only those are read.
type Header struct {
	Size          uint32
	Width         int32
	Height        int32 // > 0 bottom-up, < 0 top-down
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// ParseHeader reads the header from the first HeaderSize bytes of b. A
// shorter buffer yields the zero Header and ErrTooShort.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrTooShort
	}
	b = b[:HeaderSize]
	le := binary.LittleEndian
	return Header{
		Size:          le.Uint32(b[0:4]),
		Width:         int32(le.Uint32(b[4:8])),
		Height:        int32(le.Uint32(b[8:12])),
		Planes:        le.Uint16(b[12:14]),
		BitCount:      le.Uint16(b[14:16]),
		Compression:   le.Uint32(b[16:20]),
		SizeImage:     le.Uint32(b[20:24]),
		XPelsPerMeter: int32(le.Uint32(b[24:28])),
		YPelsPerMeter: int32(le.Uint32(b[28:32])),
		ClrUsed:       le.Uint32(b[32:36]),
		ClrImportant:  le.Uint32(b[36:40]),
	}, nil
}

// Put writes h into the first HeaderSize bytes of b.
func (h Header) Put(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[0:4], h.Size)
	le.PutUint32(b[4:8], uint32(h.Width))
	le.PutUint32(b[8:12], uint32(h.Height))
	le.PutUint16(b[12:14], h.Planes)
	le.PutUint16(b[14:16], h.BitCount)
	le.PutUint32(b[16:20], h.Compression)
	le.PutUint32(b[20:24], h.SizeImage)
	le.PutUint32(b[24:28], uint32(h.XPelsPerMeter))
	le.PutUint32(b[28:32], uint32(h.YPelsPerMeter))
	le.PutUint32(b[32:36], h.ClrUsed)
	le.PutUint32(b[36:40], h.ClrImportant)
}

// BottomUp reports whether rows are stored starting with the bottom one.
func (h Header) BottomUp() bool { return h.Height > 0 }

// AbsWidth and AbsHeight return the magnitudes; -2^31 is representable.
func (h Header) AbsWidth() uint64  { return absInt32(h.Width) }
func (h Header) AbsHeight() uint64 { return absInt32(h.Height) }

func absInt32(v int32) uint64 {
	n := int64(v)
	if n < 0 {
		n = -n
	}
	return uint64(n)
}
