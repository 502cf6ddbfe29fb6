package dib

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// referenceImage is a small grid where every pixel differs, so any row or
// channel mix-up shows.
func referenceImage(w, h int, opaque bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0xff)
			if !opaque {
				a = uint8(40*x + 7*y + 1)
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(10*x + 1),
				G: uint8(20*y + 2),
				B: uint8(30*x + 5*y + 3),
				A: a,
			})
		}
	}
	return img
}

func requireSameGrid(t *testing.T, want *image.NRGBA, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	for y := 0; y < want.Bounds().Dy(); y++ {
		for x := 0; x < want.Bounds().Dx(); x++ {
			g := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA)
			require.Equal(t, want.NRGBAAt(x, y), g, "pixel (%d,%d)", x, y)
		}
	}
}

// withFileHeader turns a packed DIB into a .bmp file.
func withFileHeader(t *testing.T, d []byte) []byte {
	t.Helper()
	h, err := ParseHeader(d)
	require.NoError(t, err)
	off, ok := PixelOffset(h)
	require.True(t, ok)

	fh := make([]byte, 14)
	copy(fh, "BM")
	binary.LittleEndian.PutUint32(fh[2:6], uint32(14+len(d)))
	binary.LittleEndian.PutUint32(fh[10:14], uint32(14+off))
	return append(fh, d...)
}

/*────── round trips ─────────────────────────────────────────*/

func TestToPNGBottomUp(t *testing.T) {
	for _, tc := range []struct {
		name     string
		bitCount uint16
		opaque   bool
	}{
		{"24bit", 24, true},
		{"32bit opaque", 32, true},
		{"32bit alpha", 32, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ref := referenceImage(5, 3, tc.opaque)
			d, err := FromImage(ref, tc.bitCount)
			require.NoError(t, err)

			h, err := ParseHeader(d)
			require.NoError(t, err)
			require.True(t, h.BottomUp())

			out, err := ToPNG(d)
			require.NoError(t, err)
			decoded, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			requireSameGrid(t, ref, decoded)
		})
	}
}

func TestDecodeMatchesReferenceDecoder(t *testing.T) {
	for _, bitCount := range []uint16{24, 32} {
		ref := referenceImage(7, 4, true)
		d, err := FromImage(ref, bitCount)
		require.NoError(t, err)

		want, err := bmp.Decode(bytes.NewReader(withFileHeader(t, d)))
		require.NoError(t, err)

		got, err := Decode(d)
		require.NoError(t, err)
		for y := 0; y < 4; y++ {
			for x := 0; x < 7; x++ {
				w := color.NRGBAModel.Convert(want.At(x, y)).(color.NRGBA)
				require.Equal(t, w, got.NRGBAAt(x, y), "%d bpp pixel (%d,%d)", bitCount, x, y)
			}
		}
	}
}

// flipTopDown rewrites a bottom-up DIB as its top-down equivalent.
func flipTopDown(t *testing.T, d []byte) []byte {
	t.Helper()
	h, err := ParseHeader(d)
	require.NoError(t, err)
	l, err := NewLayout(h)
	require.NoError(t, err)

	out := append([]byte(nil), d...)
	for y := 0; y < l.Height; y++ {
		src := d[l.PixelOffset+y*l.Stride : l.PixelOffset+(y+1)*l.Stride]
		dst := out[l.PixelOffset+(l.Height-1-y)*l.Stride:]
		copy(dst[:l.Stride], src)
	}
	h.Height = -h.Height
	h.Put(out)
	return out
}

func TestDecodeTopDown(t *testing.T) {
	ref := referenceImage(3, 4, false)
	d, err := FromImage(ref, 32)
	require.NoError(t, err)
	td := flipTopDown(t, d)

	img, err := Decode(td)
	require.NoError(t, err)
	requireSameGrid(t, ref, img)
}

func TestDecodeBitfieldsMasks(t *testing.T) {
	ref := referenceImage(2, 2, false)
	d, err := FromImage(ref, 32)
	require.NoError(t, err)

	// splice the three BI_BITFIELDS masks between header and pixels
	masks := []byte{
		0x00, 0x00, 0xff, 0x00,
		0x00, 0xff, 0x00, 0x00,
		0xff, 0x00, 0x00, 0x00,
	}
	bf := append(append(append([]byte(nil), d[:HeaderSize]...), masks...), d[HeaderSize:]...)
	h, err := ParseHeader(bf)
	require.NoError(t, err)
	h.Compression = BIBitfields
	h.Put(bf)

	img, err := Decode(bf)
	require.NoError(t, err)
	requireSameGrid(t, ref, img)
}

func TestDecodeLargerHeader(t *testing.T) {
	ref := referenceImage(4, 2, true)
	d, err := FromImage(ref, 24)
	require.NoError(t, err)

	// pad out to a 124-byte V5 header
	v5 := make([]byte, 124, 124+len(d)-HeaderSize)
	copy(v5, d[:HeaderSize])
	v5 = append(v5, d[HeaderSize:]...)
	h, err := ParseHeader(v5)
	require.NoError(t, err)
	h.Size = 124
	h.Put(v5)

	img, err := Decode(v5)
	require.NoError(t, err)
	requireSameGrid(t, ref, img)
}

// Clipboard allocations are often rounded up; trailing bytes are ignored.
func TestDecodeTrailingSlack(t *testing.T) {
	ref := referenceImage(3, 3, true)
	d, err := FromImage(ref, 24)
	require.NoError(t, err)
	d = append(d, make([]byte, 37)...)

	img, err := Decode(d)
	require.NoError(t, err)
	requireSameGrid(t, ref, img)
}

/*────── failures ────────────────────────────────────────────*/

func TestToPNGTruncatedPixels(t *testing.T) {
	ref := referenceImage(4, 4, true)
	d, err := FromImage(ref, 32)
	require.NoError(t, err)

	for _, cut := range []int{1, 4, 16, len(d) - HeaderSize} {
		_, err := ToPNG(d[:len(d)-cut])
		require.ErrorIs(t, err, ErrTruncated, "cut %d", cut)
	}
}

func TestToPNGUnsupported(t *testing.T) {
	d := make([]byte, HeaderSize+1024+16)
	Header{Size: HeaderSize, Width: 2, Height: 2, Planes: 1, BitCount: 8}.Put(d)
	_, err := ToPNG(d)
	require.ErrorIs(t, err, ErrUnsupported)

	Header{Size: HeaderSize, Width: 0, Height: 2, Planes: 1, BitCount: 24}.Put(d)
	_, err = ToPNG(d)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestConvertRejectsShortBuffer(t *testing.T) {
	l := Layout{PixelOffset: HeaderSize, Stride: 4, Width: 1, Height: 2, Channels: 4, BottomUp: true, End: HeaderSize + 8}
	_, err := Convert(make([]byte, HeaderSize+7), l)
	require.ErrorIs(t, err, ErrTruncated)

	// a layout whose End understates the rows is still caught per pixel
	l.End = HeaderSize
	_, err = Convert(make([]byte, HeaderSize+4), l)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestEncodeMismatch(t *testing.T) {
	_, err := Encode(Pixels{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 11)})
	require.ErrorIs(t, err, ErrEncode)

	_, err = Encode(Pixels{Width: 0, Height: 2, Channels: 3})
	require.ErrorIs(t, err, ErrEncode)

	_, err = Encode(Pixels{Width: 1, Height: 1, Channels: 2, Pix: make([]byte, 2)})
	require.ErrorIs(t, err, ErrEncode)
}

func TestFromImageRejectsDepth(t *testing.T) {
	_, err := FromImage(referenceImage(1, 1, true), 16)
	require.ErrorIs(t, err, ErrUnsupported)
}

// FuzzToPNG only checks that hostile input never panics.
func FuzzToPNG(f *testing.F) {
	d, err := FromImage(referenceImage(3, 2, false), 32)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(d)
	f.Add(d[:HeaderSize])
	f.Add(make([]byte, HeaderSize-1))
	f.Fuzz(func(t *testing.T, b []byte) {
		if len(b) > MaxDIBSize {
			return
		}
		_, _ = ToPNG(b)
	})
}
