//go:build linux

package linuxinput

import (
	"fmt"
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

var keyAliases = map[string]string{
	"CTRL":      "KEY_LEFTCTRL",
	"CONTROL":   "KEY_LEFTCTRL",
	"ALT":       "KEY_LEFTALT",
	"SHIFT":     "KEY_LEFTSHIFT",
	"WIN":       "KEY_LEFTMETA",
	"SUPER":     "KEY_LEFTMETA",
	"META":      "KEY_LEFTMETA",
	"RETURN":    "KEY_ENTER",
	"ESCAPE":    "KEY_ESC",
	"DEL":       "KEY_DELETE",
	"PGUP":      "KEY_PAGEUP",
	"PGDN":      "KEY_PAGEDOWN",
	"PRINT":     "KEY_SYSRQ",
	"CAPSLOCK":  "KEY_CAPSLOCK",
	"BACKSPACE": "KEY_BACKSPACE",
}

type runeKey struct {
	name  string
	shift bool
}

// US layout. uinput sends scancodes, so the target session must use a
// matching keymap for the symbols to come out as written.
var runeKeys = map[rune]runeKey{
	' ': {"KEY_SPACE", false}, '\n': {"KEY_ENTER", false}, '\r': {"KEY_ENTER", false},
	'\t': {"KEY_TAB", false}, '\b': {"KEY_BACKSPACE", false},
	'-': {"KEY_MINUS", false}, '_': {"KEY_MINUS", true},
	'=': {"KEY_EQUAL", false}, '+': {"KEY_EQUAL", true},
	'[': {"KEY_LEFTBRACE", false}, '{': {"KEY_LEFTBRACE", true},
	']': {"KEY_RIGHTBRACE", false}, '}': {"KEY_RIGHTBRACE", true},
	';': {"KEY_SEMICOLON", false}, ':': {"KEY_SEMICOLON", true},
	'\'': {"KEY_APOSTROPHE", false}, '"': {"KEY_APOSTROPHE", true},
	'`': {"KEY_GRAVE", false}, '~': {"KEY_GRAVE", true},
	'\\': {"KEY_BACKSLASH", false}, '|': {"KEY_BACKSLASH", true},
	',': {"KEY_COMMA", false}, '<': {"KEY_COMMA", true},
	'.': {"KEY_DOT", false}, '>': {"KEY_DOT", true},
	'/': {"KEY_SLASH", false}, '?': {"KEY_SLASH", true},
	'!': {"KEY_1", true}, '@': {"KEY_2", true}, '#': {"KEY_3", true},
	'$': {"KEY_4", true}, '%': {"KEY_5", true}, '^': {"KEY_6", true},
	'&': {"KEY_7", true}, '*': {"KEY_8", true}, '(': {"KEY_9", true},
	')': {"KEY_0", true},
}

// CodeForKey resolves a dispatcher key name such as "ctrl", "f5" or "v" to
// an evdev key code.
func CodeForKey(name string) (evdev.EvCode, error) {
	raw := strings.ToUpper(strings.TrimSpace(name))
	if raw == "" {
		return 0, fmt.Errorf("key name is empty")
	}
	if alias, ok := keyAliases[raw]; ok {
		raw = alias
	} else if !strings.HasPrefix(raw, "KEY_") {
		raw = "KEY_" + raw
	}
	if code, ok := evdev.KEYFromString[raw]; ok {
		return code, nil
	}
	if runes := []rune(name); len(runes) == 1 {
		if code, _, err := CodeForRune(runes[0]); err == nil {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// CodeForRune returns the key code and shift state that type ch on a US
// keyboard.
func CodeForRune(ch rune) (evdev.EvCode, bool, error) {
	var (
		name  string
		shift bool
	)
	switch {
	case ch >= 'a' && ch <= 'z':
		name = "KEY_" + strings.ToUpper(string(ch))
	case ch >= 'A' && ch <= 'Z':
		name, shift = "KEY_"+string(ch), true
	case ch >= '0' && ch <= '9':
		name = "KEY_" + string(ch)
	default:
		rk, ok := runeKeys[ch]
		if !ok {
			return 0, false, fmt.Errorf("no key types %q", ch)
		}
		name, shift = rk.name, rk.shift
	}
	code, ok := evdev.KEYFromString[name]
	if !ok {
		return 0, false, fmt.Errorf("no key types %q", ch)
	}
	return code, shift, nil
}

func FormatCodeName(code evdev.EvCode) string {
	name := evdev.CodeName(evdev.EV_KEY, code)
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}

func keyboardCodes() map[evdev.EvCode]struct{} {
	codes := make(map[evdev.EvCode]struct{})
	add := func(name string) {
		if code, ok := evdev.KEYFromString[name]; ok {
			codes[code] = struct{}{}
		}
	}
	for c := 'A'; c <= 'Z'; c++ {
		add("KEY_" + string(c))
	}
	for c := '0'; c <= '9'; c++ {
		add("KEY_" + string(c))
	}
	for i := 1; i <= 24; i++ {
		add("KEY_F" + strconv.Itoa(i))
	}
	for _, name := range keyAliases {
		add(name)
	}
	for _, rk := range runeKeys {
		add(rk.name)
	}
	for _, name := range []string{
		"KEY_TAB", "KEY_SPACE", "KEY_INSERT", "KEY_HOME", "KEY_END",
		"KEY_UP", "KEY_DOWN", "KEY_LEFT", "KEY_RIGHT", "KEY_MENU", "KEY_PAUSE",
	} {
		add(name)
	}
	return codes
}
