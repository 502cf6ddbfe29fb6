//go:build windows

package paste

import (
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"clipwsl/internal/clip"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSendInput                = user32.NewProc("SendInput")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procLoadKeyboardLayoutW      = user32.NewProc("LoadKeyboardLayoutW")
	procPostMessageW             = user32.NewProc("PostMessageW")
)

const (
	inputKeyboard  = 1
	keyeventfKeyUp = 0x0002
	klfActivate    = 0x0001

	wmInputLangChangeRequest = 0x0050

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLMenu   = 0xA4
	vkV       = 0x56

	englishUS = "00000409"
)

type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// input is INPUT with the keyboard member; the padding makes up the size
// of the larger MOUSEINPUT member of the union.
type input struct {
	typ uint32
	ki  keybdInput
	_   [8]byte
}

// Keyboard injects input with SendInput and writes text through the
// clipboard thread.
type Keyboard struct {
	cb      clip.Source
	english uintptr
}

var (
	_ Injector = (*Keyboard)(nil)
	_ Layout   = (*Keyboard)(nil)
)

// New loads the English layout once so later switches are instant.
func New(cb clip.Source) *Keyboard {
	k := &Keyboard{cb: cb}
	id, err := windows.UTF16PtrFromString(englishUS)
	if err == nil {
		k.english, _, _ = procLoadKeyboardLayoutW.Call(uintptr(unsafe.Pointer(id)), klfActivate)
	}
	slog.Debug("english layout preloaded", "hkl", fmt.Sprintf("%#x", k.english))
	return k
}

func (k *Keyboard) PasteText(s string) error {
	if err := k.cb.WriteText(s); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	return sendCtrlV()
}

func (k *Keyboard) PasteClipboard() error {
	return sendCtrlV()
}

// Switch posts a layout change request to the foreground window if it is
// not already using the English layout.
func (k *Keyboard) Switch() (func(), error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 || k.english == 0 {
		return nil, nil
	}
	tid, _, _ := procGetWindowThreadProcessId.Call(hwnd, 0)
	if tid == 0 {
		return nil, nil
	}
	prev, _, _ := procGetKeyboardLayout.Call(tid)
	if prev == k.english {
		return nil, nil
	}

	if r, _, err := procPostMessageW.Call(hwnd, wmInputLangChangeRequest, 0, k.english); r == 0 {
		return nil, fmt.Errorf("paste: layout switch: %v", err)
	}
	slog.Debug("input layout switched", "from", fmt.Sprintf("%#x", prev), "to", fmt.Sprintf("%#x", k.english))
	time.Sleep(SettleDelay)

	return func() {
		if r, _, err := procPostMessageW.Call(hwnd, wmInputLangChangeRequest, 0, prev); r == 0 {
			slog.Warn("restoring input layout failed", "err", err)
			return
		}
		slog.Debug("input layout restored", "hkl", fmt.Sprintf("%#x", prev))
	}, nil
}

/*────── SendInput ────────────────────────────────────────────*/

func key(vk uint16, up bool) input {
	in := input{typ: inputKeyboard, ki: keybdInput{vk: vk}}
	if up {
		in.ki.flags = keyeventfKeyUp
	}
	return in
}

// sendInput is replaced in tests.
var sendInput = send

func send(inputs []input) error {
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("paste: SendInput sent %d of %d: %v", n, len(inputs), err)
	}
	return nil
}

// sendCtrlV releases the hotkey's modifiers first so the target sees a
// clean Ctrl+V.
func sendCtrlV() error {
	if err := sendInput([]input{
		key(vkMenu, true),
		key(vkLMenu, true),
		key(vkControl, true),
		key(vkShift, true),
	}); err != nil {
		slog.Debug("releasing modifiers failed", "err", err)
	}
	return sendInput([]input{
		key(vkControl, false),
		key(vkV, false),
		key(vkV, true),
		key(vkControl, true),
	})
}
