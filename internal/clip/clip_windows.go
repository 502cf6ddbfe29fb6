//go:build windows

package clip

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"clipwsl/internal/dib"
)

/*────── DLL and procedure loading (LazyDLL) ───────────────────*/
var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procOpenClipboard           = user32.NewProc("OpenClipboard")
	procCloseClipboard          = user32.NewProc("CloseClipboard")
	procEmptyClipboard          = user32.NewProc("EmptyClipboard")
	procSetClipboardData        = user32.NewProc("SetClipboardData")
	procGetClipboardData        = user32.NewProc("GetClipboardData")
	procIsClipboardFormatAvail  = user32.NewProc("IsClipboardFormatAvailable")
	procGetClipboardSequenceNum = user32.NewProc("GetClipboardSequenceNumber")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalSize   = kernel32.NewProc("GlobalSize")
)

/*────── constants ────────────────────────────────────────────*/
const (
	cfBitmap      = 2
	cfDIB         = 8
	cfUnicodeText = 13
	cfDIBV5       = 17
	gmemMoveable  = 0x0002

	openRetryDelay = 10 * time.Millisecond
)

/*────── requests served by the clipboard thread ─────────────*/
type reqKind uint8

const (
	reqReadDIB reqKind = iota
	reqWriteText
)

type req struct {
	kind reqKind
	text string
	resp chan resp
}

type resp struct {
	data []byte
	err  error
}

// Clipboard is the Win32 clipboard. Every open/read/write happens on one
// goroutine locked to its OS thread; the format probe and the sequence
// number need no open clipboard and are called directly.
type Clipboard struct {
	reqs chan req
	done chan struct{}
	once sync.Once
}

var _ Source = (*Clipboard)(nil)

// New starts the clipboard thread.
func New() *Clipboard {
	c := &Clipboard{
		reqs: make(chan req),
		done: make(chan struct{}),
	}
	go c.thread()
	return c
}

func (c *Clipboard) thread() {
	runtime.LockOSThread() // critical
	defer runtime.UnlockOSThread()
	for {
		select {
		case <-c.done:
			return
		case r := <-c.reqs:
			switch r.kind {
			case reqReadDIB:
				data, err := readDIB()
				r.resp <- resp{data: data, err: err}
			case reqWriteText:
				r.resp <- resp{err: writeText(r.text)}
			}
		}
	}
}

func (c *Clipboard) do(r req) resp {
	r.resp = make(chan resp, 1)
	select {
	case c.reqs <- r:
	case <-c.done:
		return resp{err: ErrClosed}
	}
	return <-r.resp
}

func (c *Clipboard) HasBitmap() bool {
	return isAvail(cfBitmap) || isAvail(cfDIB) || isAvail(cfDIBV5)
}

func (c *Clipboard) Seq() uint32 {
	seq, _, _ := procGetClipboardSequenceNum.Call()
	return uint32(seq)
}

func (c *Clipboard) ReadDIB() ([]byte, error) {
	r := c.do(req{kind: reqReadDIB})
	return r.data, r.err
}

func (c *Clipboard) WriteText(s string) error {
	return c.do(req{kind: reqWriteText, text: s}).err
}

func (c *Clipboard) Close() {
	c.once.Do(func() { close(c.done) })
}

/*────── low-level: open/close clipboard ──────────────────────*/
func openCB() error {
	if ret, _, _ := procOpenClipboard.Call(0); ret != 0 {
		return nil
	}
	return ErrClipboardBusy
}

func closeCB() {
	procCloseClipboard.Call()
}

/*────── read CF_DIB / CF_DIBV5 ──────────────────────────────*/
func readDIB() ([]byte, error) {
	if err := openCB(); err != nil {
		return nil, err
	}
	defer closeCB()

	for _, f := range []uintptr{cfDIB, cfDIBV5} {
		h, _, _ := procGetClipboardData.Call(f)
		if h == 0 {
			continue
		}
		return copyGlobal(h)
	}
	return nil, ErrNoBitmap
}

// copyGlobal copies a DIB out of a clipboard-owned HGLOBAL. The length is
// what the header says the bitmap needs, capped by the allocation size and
// dib.MaxDIBSize.
func copyGlobal(h uintptr) ([]byte, error) {
	p := lock(h)
	if p == nil {
		return nil, errors.New("GlobalLock failed")
	}
	defer procGlobalUnlock.Call(h)

	size := globalSize(h)
	if size < dib.HeaderSize {
		return nil, fmt.Errorf("%w: %d byte allocation", dib.ErrTooShort, size)
	}
	mem := unsafe.Slice((*byte)(p), size)
	hdr, _ := dib.ParseHeader(mem)
	n := dib.ClampCopySize(hdr, size)

	data := make([]byte, n)
	copy(data, mem[:n])
	return data, nil
}

/*────── write CF_UNICODETEXT ─────────────────────────────────*/
func writeText(s string) error {
	if err := openCB(); err != nil {
		time.Sleep(openRetryDelay)
		if err := openCB(); err != nil {
			return err
		}
	}
	defer closeCB()

	if ret, _, err := procEmptyClipboard.Call(); ret == 0 {
		return fmt.Errorf("EmptyClipboard: %w", err)
	}

	utf16, err := windows.UTF16FromString(s) // NUL-terminated
	if err != nil {
		return err
	}
	h := alloc(2 * len(utf16))
	if h == 0 {
		return errors.New("GlobalAlloc failed")
	}
	p := lock(h)
	if p == nil {
		procGlobalFree.Call(h)
		return errors.New("GlobalLock failed")
	}
	copy(unsafe.Slice((*uint16)(p), len(utf16)), utf16)
	procGlobalUnlock.Call(h)

	if ret, _, err := procSetClipboardData.Call(cfUnicodeText, h); ret == 0 {
		procGlobalFree.Call(h) // still ours when SetClipboardData fails
		return fmt.Errorf("SetClipboardData: %w", err)
	}
	return nil
}

/*────── helpers ─────────────────────────────────────────────*/
func isAvail(format uintptr) bool {
	ret, _, _ := procIsClipboardFormatAvail.Call(format)
	return ret != 0
}

func alloc(size int) uintptr {
	h, _, _ := procGlobalAlloc.Call(gmemMoveable, uintptr(size))
	return h
}

func lock(h uintptr) unsafe.Pointer {
	p, _, _ := procGlobalLock.Call(h)
	return unsafe.Pointer(p)
}

func globalSize(h uintptr) int {
	ret, _, _ := procGlobalSize.Call(h)
	return int(ret)
}
