// Package clip reads bitmaps from, and writes text to, the OS clipboard.
// Build constraints select the implementation:
//
//	clip_windows.go: Win32 clipboard via golang.org/x/sys/windows, owned by
//	                 one locked OS thread
//	clip_other.go:   golang.design/x/clipboard elsewhere; PNG images are
//	                 re-packed as DIBs so the decode path is the same
package clip

import "errors"

/*────── errors ───────────────────────────────────────────────*/
var (
	ErrClipboardBusy = errors.New("clipboard busy")
	ErrNoBitmap      = errors.New("no bitmap on clipboard")
	ErrClosed        = errors.New("clipboard source closed")
)

// Source is the clipboard as the capture pipeline sees it.
type Source interface {
	// HasBitmap probes for a bitmap format without opening the clipboard.
	HasBitmap() bool

	// Seq returns the clipboard sequence number. It changes whenever the
	// clipboard content changes; 0 means the platform can't tell.
	Seq() uint32

	// ReadDIB opens the clipboard, copies the packed DIB out and closes it
	// again on every path. ErrClipboardBusy means it could not be opened.
	ReadDIB() ([]byte, error)

	// WriteText replaces the clipboard content with s.
	WriteText(s string) error

	// Close stops the source. Further calls fail with ErrClosed.
	Close()
}
