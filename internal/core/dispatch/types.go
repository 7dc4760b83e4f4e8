package dispatch

import "time"

// Kind is the category a return string resolves to.
type Kind int

const (
	KindModifierCombo Kind = iota
	KindSpecialKey
	KindClipboardPaste
	KindTypedLiteral
)

func (k Kind) String() string {
	switch k {
	case KindModifierCombo:
		return "modifier-combo"
	case KindSpecialKey:
		return "special-key"
	case KindClipboardPaste:
		return "clipboard-paste"
	case KindTypedLiteral:
		return "typed-literal"
	default:
		return "unknown"
	}
}

type TokenKind int

const (
	TokenModifier TokenKind = iota
	TokenSpecialKey
	TokenLiteral
)

// Token is one "+"-separated component of a chord, already mapped to the
// key name handed to the injector.
type Token struct {
	Kind TokenKind
	Name string
}

// Resolution is the outcome of Classify. Keys is set for chords and special
// keys; Text always carries the return string untouched.
type Resolution struct {
	Kind Kind
	Keys []Token
	Text string
}

func (r Resolution) KeyNames() []string {
	names := make([]string, 0, len(r.Keys))
	for _, key := range r.Keys {
		names = append(names, key.Name)
	}
	return names
}

type Window struct {
	ID    uint64
	Title string
}

// Injector emits synthetic keyboard input to whichever window holds focus.
// Key names are the lowercase names produced by Classify (modifiers, special
// keys and literal chord parts).
type Injector interface {
	KeyChord(keys ...string) error
	KeyPress(key string) error
	TypeRune(ch rune) error
	Close() error
}

type WindowManager interface {
	ListWindows() ([]Window, error)
	ActivateWindow(win Window) error
}

type Clipboard interface {
	WriteText(text string) error
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type FocusResult int

const (
	FocusActivated FocusResult = iota
	FocusNoMatch
	FocusUnavailable
	FocusFailed
)

func (f FocusResult) String() string {
	switch f {
	case FocusActivated:
		return "activated"
	case FocusNoMatch:
		return "no-match"
	case FocusUnavailable:
		return "unavailable"
	case FocusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FocusOutcome reports what the focus step did. Err is informational only;
// a failed focus never aborts a dispatch.
type FocusOutcome struct {
	Result FocusResult
	Window Window
	Marker string
	Err    error
}

type PasteResult int

const (
	PasteDone PasteResult = iota
	PasteSkipped
	PasteFailed
)

func (p PasteResult) String() string {
	switch p {
	case PasteDone:
		return "done"
	case PasteSkipped:
		return "skipped"
	case PasteFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Config struct {
	Markers     []string
	FocusSettle time.Duration
	TypeDelay   time.Duration
	Clipboard   bool
}

func DefaultConfig() Config {
	return Config{
		Markers:     DefaultMarkers(),
		FocusSettle: 300 * time.Millisecond,
		TypeDelay:   20 * time.Millisecond,
		Clipboard:   true,
	}
}
