package dib

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Pixels is a tightly packed RGB or RGBA buffer, rows top to bottom.
type Pixels struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

/*───── ToPNG: DIB bytes → PNG bytes ────────────────────────────*/

// ToPNG decodes a packed DIB and encodes it as PNG.
func ToPNG(b []byte) ([]byte, error) {
	p, err := decodePixels(b)
	if err != nil {
		return nil, err
	}
	return Encode(p)
}

// Decode decodes a packed DIB into an image.
func Decode(b []byte) (*image.NRGBA, error) {
	p, err := decodePixels(b)
	if err != nil {
		return nil, err
	}
	return p.Image()
}

func decodePixels(b []byte) (Pixels, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return Pixels{}, err
	}
	l, err := NewLayout(h)
	if err != nil {
		return Pixels{}, err
	}
	return Convert(b, l)
}

// Convert reorders the rows of b described by l top to bottom and swaps
// BGR(A) to RGB(A).
func Convert(b []byte, l Layout) (Pixels, error) {
	if l.Channels != 3 && l.Channels != 4 {
		return Pixels{}, fmt.Errorf("%w: %d channels", ErrUnsupported, l.Channels)
	}
	if l.End > len(b) {
		return Pixels{}, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, l.End, len(b))
	}
	n, ok := mulInt(l.Width, l.Height)
	if ok {
		n, ok = mulInt(n, l.Channels)
	}
	if !ok {
		return Pixels{}, ErrOverflow
	}

	pix := make([]byte, 0, n)
	for y := 0; y < l.Height; y++ {
		src := y
		if l.BottomUp {
			src = l.Height - 1 - y
		}
		row := l.PixelOffset + src*l.Stride
		for x := 0; x < l.Width; x++ {
			i := row + x*l.Channels
			if i+l.Channels > len(b) {
				return Pixels{}, fmt.Errorf("%w: pixel (%d,%d)", ErrTruncated, x, y)
			}
			pix = append(pix, b[i+2], b[i+1], b[i])
			if l.Channels == 4 {
				pix = append(pix, b[i+3])
			}
		}
	}

	return Pixels{Width: l.Width, Height: l.Height, Channels: l.Channels, Pix: pix}, nil
}

// Image wraps the buffer in an NRGBA image. DIB alpha is straight, not
// premultiplied, so NRGBA keeps it byte for byte; RGB gets alpha 0xff.
func (p Pixels) Image() (*image.NRGBA, error) {
	if p.Width <= 0 || p.Height <= 0 || (p.Channels != 3 && p.Channels != 4) {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrEncode, p.Width, p.Height, p.Channels)
	}
	want, ok := mulInt(p.Width, p.Height)
	if ok {
		want, ok = mulInt(want, p.Channels)
	}
	if !ok || want != len(p.Pix) {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d", ErrEncode, len(p.Pix), p.Width, p.Height, p.Channels)
	}

	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	if p.Channels == 4 {
		copy(img.Pix, p.Pix)
		return img, nil
	}
	for i, j := 0, 0; i < len(p.Pix); i, j = i+3, j+4 {
		img.Pix[j+0] = p.Pix[i+0]
		img.Pix[j+1] = p.Pix[i+1]
		img.Pix[j+2] = p.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

// Encode compresses p as PNG.
func Encode(p Pixels) ([]byte, error) {
	img, err := p.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
