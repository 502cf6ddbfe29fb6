// Package capture turns the clipboard bitmap into a PNG snapshot with its
// file paths, decoding at most once per clipboard sequence number.
package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	core "clipwsl/internal"
	"clipwsl/internal/clip"
	"clipwsl/internal/dib"
	"clipwsl/internal/wslpath"
)

// ErrNoImage wraps every reason a capture produced nothing.
var ErrNoImage = errors.New("no image available")

// DefaultRetryDelay is how long to wait before the one retry of a busy
// clipboard.
const DefaultRetryDelay = 10 * time.Millisecond

// Capturer reads, decodes and caches clipboard bitmaps. It is safe for
// concurrent use; two captures racing on the same new sequence number may
// both decode, and the later Store wins.
type Capturer struct {
	src        clip.Source
	paths      *wslpath.Synthesizer
	cache      *Cache
	now        func() time.Time
	retryDelay time.Duration
}

type Option func(*Capturer)

// WithClock sets the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(c *Capturer) { c.now = now }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Capturer) { c.retryDelay = d }
}

func New(src clip.Source, paths *wslpath.Synthesizer, opts ...Option) *Capturer {
	c := &Capturer{
		src:        src,
		paths:      paths,
		cache:      &Cache{},
		now:        time.Now,
		retryDelay: DefaultRetryDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Cache exposes the snapshot cache.
func (c *Capturer) Cache() *Cache { return c.cache }

// Capture returns the snapshot for the current clipboard content. A failed
// capture leaves the cache as it was.
func (c *Capturer) Capture() (core.Snapshot, error) {
	seq := c.src.Seq()
	if snap, ok := c.cache.Lookup(seq); ok {
		slog.Debug("clipboard image cached", "seq", seq)
		return snap, nil
	}

	raw, err := c.acquire()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	data, err := dib.ToPNG(raw)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("%w: %w", ErrNoImage, err)
	}

	snap := core.Snapshot{
		Seq:   seq,
		PNG:   data,
		Paths: c.paths.Next(c.now()),
	}
	c.cache.Store(snap)
	slog.Info("clipboard image decoded",
		"seq", seq, "dib_bytes", len(raw), "png_bytes", len(data), "path", snap.Paths.Native)
	return snap, nil
}

// acquire reads the raw DIB, retrying once if the clipboard is held by
// another process.
func (c *Capturer) acquire() ([]byte, error) {
	raw, err := c.src.ReadDIB()
	if errors.Is(err, clip.ErrClipboardBusy) {
		slog.Debug("clipboard busy, retrying", "delay", c.retryDelay)
		time.Sleep(c.retryDelay)
		raw, err = c.src.ReadDIB()
	}
	return raw, err
}
