package x11input

import (
	"strconv"
	"strings"
)

// KeysymName maps a dispatcher key name (lowercase, as produced by the
// dispatch tables) to the X keysym name understood by keybind.
func KeysymName(name string) (string, bool) {
	token := strings.ToLower(strings.TrimSpace(name))

	switch token {
	case "ctrl", "control":
		return "Control_L", true
	case "alt":
		return "Alt_L", true
	case "shift":
		return "Shift_L", true
	case "win", "super", "meta":
		return "Super_L", true
	case "enter", "return":
		return "Return", true
	case "esc", "escape":
		return "Escape", true
	case "tab":
		return "Tab", true
	case "space":
		return "space", true
	case "backspace":
		return "BackSpace", true
	case "delete", "del":
		return "Delete", true
	case "insert":
		return "Insert", true
	case "home":
		return "Home", true
	case "end":
		return "End", true
	case "pageup", "pgup":
		return "Page_Up", true
	case "pagedown", "pgdn":
		return "Page_Down", true
	case "up":
		return "Up", true
	case "down":
		return "Down", true
	case "left":
		return "Left", true
	case "right":
		return "Right", true
	case "menu":
		return "Menu", true
	case "pause":
		return "Pause", true
	case "capslock":
		return "Caps_Lock", true
	case "printscreen", "print":
		return "Print", true
	}

	if strings.HasPrefix(token, "f") && len(token) > 1 {
		if n, err := strconv.Atoi(token[1:]); err == nil && n >= 1 && n <= 24 {
			return "F" + token[1:], true
		}
	}
	if len(token) == 1 {
		c := token[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return token, true
		}
	}
	return "", false
}

const (
	keysymReturn    uint32 = 0xff0d
	keysymTab       uint32 = 0xff09
	keysymBackSpace uint32 = 0xff08
	unicodeKeysym   uint32 = 0x01000000
)

// RuneKeysym returns the keysym that produces r: Latin-1 characters map to
// themselves, everything else to the Unicode keysym range.
func RuneKeysym(r rune) uint32 {
	switch r {
	case '\n', '\r':
		return keysymReturn
	case '\t':
		return keysymTab
	case '\b':
		return keysymBackSpace
	}
	if (r >= 0x20 && r <= 0x7e) || (r >= 0xa0 && r <= 0xff) {
		return uint32(r)
	}
	return unicodeKeysym | uint32(r)
}
