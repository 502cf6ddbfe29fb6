// Package app reacts to hotkey presses: it captures the clipboard bitmap,
// pastes the file path in its place and queues the PNG for writing.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	core "clipwsl/internal"
	"clipwsl/internal/clip"
	"clipwsl/internal/config"
	"clipwsl/internal/paste"
	"clipwsl/internal/saver"
)

// Capturer produces the snapshot for the current clipboard content.
type Capturer interface {
	Capture() (core.Snapshot, error)
}

// Submitter queues a file for writing.
type Submitter interface {
	Submit(ctx context.Context, j saver.Job) error
}

// Deps are the collaborators of an App.
type Deps struct {
	Source   clip.Source
	Capturer Capturer
	Injector paste.Injector
	Layout   paste.Layout
	Saver    Submitter
}

// ErrActivationsClosed is returned by Run when the activation source stops
// before ctx is done.
var ErrActivationsClosed = errors.New("app: activation source closed")

type App struct {
	d Deps

	mu   sync.Mutex
	mode config.Mode
}

func New(d Deps, mode config.Mode) *App {
	return &App{d: d, mode: mode}
}

// SetMode switches between fast and safe pasting for later activations.
func (a *App) SetMode(m config.Mode) {
	a.mu.Lock()
	old := a.mode
	a.mode = m
	a.mu.Unlock()
	if old != m {
		slog.Info("mode changed", "from", old, "to", m)
	}
}

func (a *App) Mode() config.Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run handles activations until ctx is done. A channel that closes while
// ctx is still live yields ErrActivationsClosed.
func (a *App) Run(ctx context.Context, activations <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-activations:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrActivationsClosed
			}
			if err := a.HandleActivation(ctx); err != nil {
				slog.Error("paste failed", "err", err)
			}
		}
	}
}

// HandleActivation runs one hotkey press. Without a usable bitmap it falls
// back to an ordinary paste.
func (a *App) HandleActivation(ctx context.Context) error {
	if !a.d.Source.HasBitmap() {
		slog.Debug("no bitmap on clipboard, plain paste")
		return a.plainPaste()
	}

	snap, err := a.d.Capturer.Capture()
	if err != nil {
		slog.Warn("clipboard image unavailable, plain paste", "err", err)
		return a.plainPaste()
	}

	text := snap.Paths.WSL
	if text == "" {
		text = snap.Paths.Native
	}

	var g *paste.Guard
	if a.Mode() == config.ModeSafe {
		g = paste.Acquire(a.d.Layout)
	}
	defer g.Release()

	slog.Info("pasting path", "path", text, "seq", snap.Seq)
	if err := a.d.Injector.PasteText(text); err != nil {
		return fmt.Errorf("pasting path: %w", err)
	}

	// The path is already in the target window; the file may land later.
	if err := a.d.Saver.Submit(ctx, saver.Job{Path: snap.Paths.Native, Data: snap.PNG}); err != nil {
		slog.Warn("image not queued for saving", "path", snap.Paths.Native, "err", err)
	}
	return nil
}

func (a *App) plainPaste() error {
	if err := a.d.Injector.PasteClipboard(); err != nil {
		return fmt.Errorf("plain paste: %w", err)
	}
	return nil
}

/*──────── prefetch (seq-based watcher) ────────────────────────*/

// Prefetch polls the clipboard sequence number every interval and decodes
// new bitmaps ahead of the hotkey press so it finds them cached. It
// returns when ctx is done.
func (a *App) Prefetch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastSeq := a.d.Source.Seq()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		seq := a.d.Source.Seq()
		if seq == lastSeq || seq == 0 {
			continue // clipboard unchanged, or no counter to go by
		}
		lastSeq = seq
		if !a.d.Source.HasBitmap() {
			continue
		}
		if _, err := a.d.Capturer.Capture(); err != nil && !errors.Is(err, clip.ErrNoBitmap) {
			slog.Debug("prefetch failed", "seq", seq, "err", err)
		}
	}
}
