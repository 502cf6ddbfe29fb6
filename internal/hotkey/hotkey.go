// Package hotkey parses hotkey combos and delivers a signal each time the
// registered combo is pressed.
//
// Combos are written either with AutoHotkey prefixes (^ Ctrl, ! Alt,
// + Shift, # Win) followed by a key, as in "!v" or "^!v", or spelled out,
// as in "Ctrl+Alt+V". Keys are a-z, 0-9 and Enter.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier flags, numerically equal to the Win32 MOD_* values.
type Modifier uint32

const (
	ModAlt   Modifier = 0x0001
	ModCtrl  Modifier = 0x0002
	ModShift Modifier = 0x0004
	ModWin   Modifier = 0x0008
)

const vkReturn = 0x0D

var ErrInvalid = errors.New("hotkey: invalid combo")

// Binding is a parsed combo. Key is a Win32 virtual-key code.
type Binding struct {
	Mods Modifier
	Key  uint16
}

// String renders b in the spelled-out form, e.g. "Ctrl+Alt+V".
func (b Binding) String() string {
	var parts []string
	for _, m := range []struct {
		mod  Modifier
		name string
	}{{ModCtrl, "Ctrl"}, {ModAlt, "Alt"}, {ModShift, "Shift"}, {ModWin, "Win"}} {
		if b.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, keyName(b.Key)), "+")
}

// Parse reads a combo in either notation. At least one modifier is
// required.
func Parse(combo string) (Binding, error) {
	s := strings.TrimSpace(combo)
	if s == "" {
		return Binding{}, fmt.Errorf("%w: empty", ErrInvalid)
	}
	if b, ok := parsePrefixed(s); ok {
		return b, nil
	}
	if b, ok := parseSpelled(s); ok {
		return b, nil
	}
	return Binding{}, fmt.Errorf("%w: %q", ErrInvalid, combo)
}

func parsePrefixed(s string) (Binding, bool) {
	var b Binding
	i := 0
loop:
	for ; i < len(s); i++ {
		switch s[i] {
		case '^':
			b.Mods |= ModCtrl
		case '!':
			b.Mods |= ModAlt
		case '+':
			b.Mods |= ModShift
		case '#':
			b.Mods |= ModWin
		default:
			break loop
		}
	}
	key, ok := keyCode(s[i:])
	if !ok || b.Mods == 0 {
		return Binding{}, false
	}
	b.Key = key
	return b, true
}

func parseSpelled(s string) (Binding, bool) {
	parts := strings.Split(s, "+")
	if len(parts) < 2 {
		return Binding{}, false
	}
	var b Binding
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			b.Mods |= ModCtrl
		case "alt":
			b.Mods |= ModAlt
		case "shift":
			b.Mods |= ModShift
		case "win":
			b.Mods |= ModWin
		default:
			return Binding{}, false
		}
	}
	key, ok := keyCode(strings.TrimSpace(parts[len(parts)-1]))
	if !ok {
		return Binding{}, false
	}
	b.Key = key
	return b, true
}

func keyCode(name string) (uint16, bool) {
	if strings.EqualFold(name, "enter") {
		return vkReturn, true
	}
	if len(name) != 1 {
		return 0, false
	}
	c := name[0]
	switch {
	case 'a' <= c && c <= 'z':
		return uint16(c - 'a' + 'A'), true
	case 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return uint16(c), true
	}
	return 0, false
}

func keyName(vk uint16) string {
	if vk == vkReturn {
		return "Enter"
	}
	return string(rune(vk))
}
