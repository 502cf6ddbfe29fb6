//go:build !windows

package clip

import (
	"bytes"
	"fmt"
	"image/png"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"

	core "clipwsl/internal"
	"clipwsl/internal/dib"
)

// Clipboard reads through golang.design/x/clipboard, which hands out
// images as PNG and has no sequence number. Images are re-packed as 32-bit
// DIBs, and a sequence number is kept here that advances whenever the
// image bytes differ from the last ones seen.
type Clipboard struct {
	read  func(clipboard.Format) []byte
	write func(clipboard.Format, []byte)

	mu      sync.Mutex
	seq     uint32
	lastKey string
	closed  bool
}

var _ Source = (*Clipboard)(nil)

// New returns the clipboard, or a headless one that never has a bitmap if
// no display is available. clipboard.Init is called here rather than in
// init() so commands that never touch the clipboard don't warn.
func New() *Clipboard {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newClipboard(nil, nil)
	}
	return newClipboard(clipboard.Read, writeHook(clipboard.Write))
}

// writeHook adapts clipboard.Write. Its channel fires only once another
// program takes the clipboard, so it is not waited on.
func writeHook(w func(clipboard.Format, []byte) <-chan struct{}) func(clipboard.Format, []byte) {
	return func(f clipboard.Format, b []byte) { w(f, b) }
}

func newClipboard(read func(clipboard.Format) []byte, write func(clipboard.Format, []byte)) *Clipboard {
	return &Clipboard{read: read, write: write}
}

func (c *Clipboard) image() []byte {
	if c.read == nil {
		return nil
	}
	return c.read(clipboard.FmtImage)
}

func (c *Clipboard) HasBitmap() bool {
	return len(c.image()) > 0
}

func (c *Clipboard) Seq() uint32 {
	key := core.QuickKey(c.image())

	c.mu.Lock()
	defer c.mu.Unlock()
	if key != c.lastKey {
		c.lastKey = key
		c.seq++
		if c.seq == 0 { // 0 is reserved for "unknown"
			c.seq = 1
		}
	}
	return c.seq
}

func (c *Clipboard) ReadDIB() ([]byte, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	data := c.image()
	if len(data) == 0 {
		return nil, ErrNoBitmap
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoBitmap, err)
	}
	return dib.FromImage(img, 32)
}

func (c *Clipboard) WriteText(s string) error {
	if c.isClosed() {
		return ErrClosed
	}
	if c.write != nil {
		c.write(clipboard.FmtText, []byte(s))
	}
	return nil
}

func (c *Clipboard) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Clipboard) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
