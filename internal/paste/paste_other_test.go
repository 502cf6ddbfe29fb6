//go:build !windows

package paste

import (
	"testing"

	"github.com/stretchr/testify/require"

	"clipwsl/internal/clip"
)

type textBoard struct {
	text   string
	closed bool
}

func (b *textBoard) HasBitmap() bool          { return false }
func (b *textBoard) Seq() uint32              { return 0 }
func (b *textBoard) ReadDIB() ([]byte, error) { return nil, clip.ErrNoBitmap }
func (b *textBoard) Close()                   { b.closed = true }

func (b *textBoard) WriteText(s string) error {
	if b.closed {
		return clip.ErrClosed
	}
	b.text = s
	return nil
}

func TestKeyboardLeavesTextOnClipboard(t *testing.T) {
	b := &textBoard{}
	k := New(b)

	require.NoError(t, k.PasteText("/mnt/c/temp/clip.png"))
	require.Equal(t, "/mnt/c/temp/clip.png", b.text)
	require.NoError(t, k.PasteClipboard())

	restore, err := k.Switch()
	require.NoError(t, err)
	require.Nil(t, restore)

	b.Close()
	require.ErrorIs(t, k.PasteText("x"), clip.ErrClosed)
}
