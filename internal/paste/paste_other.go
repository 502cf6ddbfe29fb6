//go:build !windows

package paste

import (
	"fmt"
	"log/slog"

	"clipwsl/internal/clip"
)

// Keyboard can't inject keystrokes here; it leaves the text on the
// clipboard for the user to paste.
type Keyboard struct {
	cb clip.Source
}

var (
	_ Injector = (*Keyboard)(nil)
	_ Layout   = (*Keyboard)(nil)
)

func New(cb clip.Source) *Keyboard {
	return &Keyboard{cb: cb}
}

func (k *Keyboard) PasteText(s string) error {
	if err := k.cb.WriteText(s); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	slog.Info("path copied to clipboard", "text", s)
	return nil
}

func (k *Keyboard) PasteClipboard() error { return nil }

func (k *Keyboard) Switch() (func(), error) { return nil, nil }
