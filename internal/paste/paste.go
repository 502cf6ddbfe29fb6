// Package paste types text into the focused window and, in safe mode,
// holds the English keyboard layout while it does so.
package paste

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// SettleDelay is how long a layout switch is given to take effect.
	SettleDelay = 60 * time.Millisecond
	// RestoreDelay is how long after Release the previous layout returns.
	RestoreDelay = 120 * time.Millisecond
)

// Injector delivers keystrokes to whatever window has focus.
type Injector interface {
	// PasteText puts s on the clipboard and pastes it.
	PasteText(s string) error
	// PasteClipboard pastes the clipboard as it is.
	PasteClipboard() error
}

// Layout switches the focused window to the English layout. restore puts
// the previous one back; it is nil when nothing was switched.
type Layout interface {
	Switch() (restore func(), err error)
}

// Guard keeps the English layout active until Release.
type Guard struct {
	restore func()
	delay   time.Duration
	once    sync.Once
}

// Acquire switches l and returns the guard for it. A failed switch is
// logged and yields a guard with nothing to restore.
func Acquire(l Layout) *Guard {
	restore, err := l.Switch()
	if err != nil {
		slog.Warn("input layout switch failed", "err", err)
	}
	return &Guard{restore: restore, delay: RestoreDelay}
}

// Release schedules the restore and returns at once. It is safe to call on
// a nil Guard and more than once.
func (g *Guard) Release() {
	if g == nil {
		return
	}
	g.once.Do(func() {
		if g.restore != nil {
			time.AfterFunc(g.delay, g.restore)
		}
	})
}
