package x11input

import "testing"

func TestKeysymName(t *testing.T) {
	tests := map[string]string{
		"ctrl":      "Control_L",
		"alt":       "Alt_L",
		"shift":     "Shift_L",
		"enter":     "Return",
		"esc":       "Escape",
		"tab":       "Tab",
		"space":     "space",
		"backspace": "BackSpace",
		"delete":    "Delete",
		"f1":        "F1",
		"F12":       "F12",
		"pageup":    "Page_Up",
		"home":      "Home",
		"v":         "v",
		"7":         "7",
	}
	for in, want := range tests {
		got, ok := KeysymName(in)
		if !ok || got != want {
			t.Fatalf("KeysymName(%q) = %q,%v want %q", in, got, ok, want)
		}
	}

	for _, in := range []string{"", "f0", "f25", "ctrlx", "é", "+"} {
		if got, ok := KeysymName(in); ok {
			t.Fatalf("KeysymName(%q) = %q, want unknown", in, got)
		}
	}
}

func TestRuneKeysym(t *testing.T) {
	tests := map[rune]uint32{
		'a':  0x61,
		'A':  0x41,
		'~':  0x7e,
		'ç':  0xe7,
		'ã':  0xe3,
		'\n': 0xff0d,
		'\t': 0xff09,
		'€':  0x010020ac,
		'ő':  0x01000151,
	}
	for in, want := range tests {
		if got := RuneKeysym(in); got != want {
			t.Fatalf("RuneKeysym(%q) = %#x, want %#x", in, got, want)
		}
	}
}
