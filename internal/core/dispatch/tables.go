package dispatch

import (
	"sort"
	"strings"
)

// The tables below are part of the layout file contract: existing layouts
// rely on exactly these names.
var modifierTable = map[string]string{
	"CTRL":  "ctrl",
	"ALT":   "alt",
	"SHIFT": "shift",
}

var specialKeyTable = map[string]string{
	"ENTER":     "enter",
	"ESC":       "esc",
	"TAB":       "tab",
	"SPACE":     "space",
	"BACKSPACE": "backspace",
	"DELETE":    "delete",
	"F1":        "f1",
	"F2":        "f2",
	"F3":        "f3",
	"F4":        "f4",
	"F5":        "f5",
	"F6":        "f6",
	"F7":        "f7",
	"F8":        "f8",
	"F9":        "f9",
	"F10":       "f10",
	"F11":       "f11",
	"F12":       "f12",
}

var defaultMarkers = []string{"vnc", "viewer", "editor de texto", "gedit", "documento"}

// PasteThreshold is the length (in characters) a literal must exceed before
// it is pasted through the clipboard instead of typed.
const PasteThreshold = 3

func LookupModifier(part string) (string, bool) {
	name, ok := modifierTable[strings.ToUpper(part)]
	return name, ok
}

func LookupSpecialKey(part string) (string, bool) {
	name, ok := specialKeyTable[strings.ToUpper(part)]
	return name, ok
}

func Modifiers() []string {
	return sortedValues(modifierTable)
}

func SpecialKeys() []string {
	return sortedValues(specialKeyTable)
}

func DefaultMarkers() []string {
	out := make([]string, len(defaultMarkers))
	copy(out, defaultMarkers)
	return out
}

// MatchMarker reports the first marker contained in title, ignoring case.
func MatchMarker(title string, markers []string) (string, bool) {
	lower := strings.ToLower(title)
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(marker)) {
			return marker, true
		}
	}
	return "", false
}

// MarkersWithHint puts a layout's target window hint in front of base.
// An empty hint, or one already present in base, leaves base unchanged.
func MarkersWithHint(hint string, base []string) []string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	out := make([]string, 0, len(base)+1)
	if hint != "" {
		out = append(out, hint)
	}
	for _, marker := range base {
		if hint != "" && strings.ToLower(marker) == hint {
			continue
		}
		out = append(out, marker)
	}
	return out
}

func sortedValues(table map[string]string) []string {
	out := make([]string, 0, len(table))
	for _, value := range table {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
