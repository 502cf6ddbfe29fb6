//go:build windows

package hotkey

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

const (
	wmQuit      = 0x0012
	wmHotkey    = 0x0312
	modNoRepeat = 0x4000

	hotkeyID = 1
)

type point struct{ x, y int32 }

type msg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// Listen registers b system-wide and returns a channel that receives one
// value per press. Presses arriving while the previous one is still unread
// are coalesced. The channel closes and the hotkey is released when ctx is
// done.
func Listen(ctx context.Context, b Binding) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)
	ready := make(chan error, 1)

	go func() {
		// RegisterHotKey posts WM_HOTKEY to the registering thread's queue.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		r, _, err := procRegisterHotKey.Call(0, hotkeyID, uintptr(b.Mods)|modNoRepeat, uintptr(b.Key))
		if r == 0 {
			ready <- fmt.Errorf("hotkey: registering %s: %v", b, err)
			return
		}
		defer procUnregisterHotKey.Call(0, hotkeyID)
		defer close(out)

		tid := windows.GetCurrentThreadId()
		stop := context.AfterFunc(ctx, func() {
			procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
		})
		defer stop()

		slog.Info("hotkey registered", "combo", b.String())
		ready <- nil

		var m msg
		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 { // WM_QUIT or failure
				return
			}
			if m.message == wmHotkey && m.wParam == hotkeyID {
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	if err := <-ready; err != nil {
		return nil, err
	}
	return out, nil
}
