//go:build linux

package linuxinput

import "testing"

func TestCodeForKey(t *testing.T) {
	tests := map[string]string{
		"ctrl":      "KEY_LEFTCTRL",
		"alt":       "KEY_LEFTALT",
		"shift":     "KEY_LEFTSHIFT",
		"enter":     "KEY_ENTER",
		"esc":       "KEY_ESC",
		"tab":       "KEY_TAB",
		"space":     "KEY_SPACE",
		"backspace": "KEY_BACKSPACE",
		"delete":    "KEY_DELETE",
		"f12":       "KEY_F12",
		"pageup":    "KEY_PAGEUP",
		"v":         "KEY_V",
		"KEY_HOME":  "KEY_HOME",
		"=":         "KEY_EQUAL",
	}
	for in, want := range tests {
		code, err := CodeForKey(in)
		if err != nil {
			t.Fatalf("CodeForKey(%q) error = %v", in, err)
		}
		if got := FormatCodeName(code); got != want {
			t.Fatalf("CodeForKey(%q) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"", "hyper", "ç"} {
		if _, err := CodeForKey(in); err == nil {
			t.Fatalf("CodeForKey(%q) expected error", in)
		}
	}
}

func TestCodeForRune(t *testing.T) {
	tests := []struct {
		in    rune
		name  string
		shift bool
	}{
		{'a', "KEY_A", false},
		{'Z', "KEY_Z", true},
		{'5', "KEY_5", false},
		{'%', "KEY_5", true},
		{'[', "KEY_LEFTBRACE", false},
		{'~', "KEY_GRAVE", true},
		{' ', "KEY_SPACE", false},
		{'\n', "KEY_ENTER", false},
	}
	for _, tc := range tests {
		code, shift, err := CodeForRune(tc.in)
		if err != nil {
			t.Fatalf("CodeForRune(%q) error = %v", tc.in, err)
		}
		if got := FormatCodeName(code); got != tc.name || shift != tc.shift {
			t.Fatalf("CodeForRune(%q) = %s,%v want %s,%v", tc.in, got, shift, tc.name, tc.shift)
		}
	}
}

func TestKeyboardCodesCoverRuneTable(t *testing.T) {
	codes := keyboardCodes()
	for r := range runeKeys {
		code, _, err := CodeForRune(r)
		if err != nil {
			t.Fatalf("CodeForRune(%q) error = %v", r, err)
		}
		if _, ok := codes[code]; !ok {
			t.Fatalf("capabilities missing %s for %q", FormatCodeName(code), r)
		}
	}
}
