package dib

import (
	"fmt"
	"image"
	"image/draw"
)

/*───── FromImage: image.Image → packed DIB ─────────────────────*/

// FromImage packs img as a bottom-up BI_RGB DIB with a bare
// BITMAPINFOHEADER. bitCount must be 24 or 32.
func FromImage(img image.Image, bitCount uint16) ([]byte, error) {
	if bitCount != 24 && bitCount != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, bitCount)
	}

	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	width, height := b.Dx(), b.Dy()
	stride, ok := RowStride(width, bitCount)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d", ErrUnsupported, width, height)
	}
	size, ok := mulInt(stride, height)
	if !ok {
		return nil, ErrOverflow
	}

	out := make([]byte, HeaderSize+size)
	Header{
		Size:        HeaderSize,
		Width:       int32(width),
		Height:      int32(height),
		Planes:      1,
		BitCount:    bitCount,
		Compression: BIRGB,
		SizeImage:   uint32(size),
	}.Put(out)

	ch := int(bitCount) / 8
	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		dst := out[HeaderSize+(height-1-y)*stride:] // bottom-up
		for x := 0; x < width; x++ {
			dst[x*ch+0] = src[x*4+2] // B
			dst[x*ch+1] = src[x*4+1] // G
			dst[x*ch+2] = src[x*4+0] // R
			if ch == 4 {
				dst[x*ch+3] = src[x*4+3] // A
			}
		}
	}
	return out, nil
}
