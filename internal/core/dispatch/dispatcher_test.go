package dispatch

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingInjector struct {
	mu       sync.Mutex
	calls    []string
	chordErr map[string]error
	pressErr error
	typeErr  error
	closed   bool
}

func (r *recordingInjector) KeyChord(keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	combo := strings.Join(keys, "+")
	if err := r.chordErr[combo]; err != nil {
		return err
	}
	r.calls = append(r.calls, "chord:"+combo)
	return nil
}

func (r *recordingInjector) KeyPress(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pressErr != nil {
		return r.pressErr
	}
	r.calls = append(r.calls, "press:"+key)
	return nil
}

func (r *recordingInjector) TypeRune(ch rune) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.typeErr != nil {
		return r.typeErr
	}
	r.calls = append(r.calls, "type:"+string(ch))
	return nil
}

func (r *recordingInjector) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingInjector) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

type fakeWindows struct {
	windows     []Window
	listErr     error
	activateErr error
	activated   []Window
}

func (f *fakeWindows) ListWindows() ([]Window, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.windows, nil
}

func (f *fakeWindows) ActivateWindow(win Window) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated = append(f.activated, win)
	return nil
}

type fakeClipboard struct {
	writes []string
	err    error
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, text)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type harness struct {
	injector  *recordingInjector
	windows   *fakeWindows
	clipboard *fakeClipboard
	sleeps    []time.Duration
	d         *Dispatcher
}

func newHarness(t *testing.T, windows ...Window) *harness {
	t.Helper()
	h := &harness{
		injector:  &recordingInjector{},
		windows:   &fakeWindows{windows: windows},
		clipboard: &fakeClipboard{},
	}
	d, err := NewDispatcher(DefaultConfig(), h.injector, h.windows, h.clipboard, noopLogger{})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	d.sleep = func(dur time.Duration) {
		h.sleeps = append(h.sleeps, dur)
	}
	h.d = d
	return h
}

func TestNewDispatcherValidates(t *testing.T) {
	if _, err := NewDispatcher(DefaultConfig(), nil, nil, nil, noopLogger{}); err == nil {
		t.Fatalf("expected error for nil injector")
	}
	if _, err := NewDispatcher(DefaultConfig(), &recordingInjector{}, nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
	cfg := DefaultConfig()
	cfg.TypeDelay = -time.Millisecond
	if _, err := NewDispatcher(cfg, &recordingInjector{}, nil, nil, noopLogger{}); err == nil {
		t.Fatalf("expected error for negative type delay")
	}
}

func TestDispatchEnterPressesSpecialKey(t *testing.T) {
	h := newHarness(t)

	if err := h.d.Dispatch("ENTER"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got, want := h.injector.snapshot(), []string{"press:enter"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if len(h.clipboard.writes) != 0 {
		t.Fatalf("clipboard touched: %v", h.clipboard.writes)
	}
}

func TestDispatchChordPressesAllKeysTogether(t *testing.T) {
	h := newHarness(t)

	if err := h.d.Dispatch("CTRL+F"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got, want := h.injector.snapshot(), []string{"chord:ctrl+f"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if len(h.clipboard.writes) != 0 {
		t.Fatalf("clipboard touched: %v", h.clipboard.writes)
	}
}

func TestDispatchShortLiteralTypesWithDelay(t *testing.T) {
	h := newHarness(t)

	if err := h.d.Dispatch("ab"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got, want := h.injector.snapshot(), []string{"type:a", "type:b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if want := []time.Duration{20 * time.Millisecond, 20 * time.Millisecond}; !reflect.DeepEqual(h.sleeps, want) {
		t.Fatalf("sleeps = %v, want %v", h.sleeps, want)
	}
	if len(h.clipboard.writes) != 0 {
		t.Fatalf("clipboard touched: %v", h.clipboard.writes)
	}
}

func TestDispatchLongLiteralPastes(t *testing.T) {
	h := newHarness(t)

	if err := h.d.Dispatch("HelloWorld"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if want := []string{"HelloWorld"}; !reflect.DeepEqual(h.clipboard.writes, want) {
		t.Fatalf("clipboard = %v, want %v", h.clipboard.writes, want)
	}
	if got, want := h.injector.snapshot(), []string{"chord:ctrl+v"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func TestDispatchFallsBackToTypingWhenClipboardFails(t *testing.T) {
	h := newHarness(t)
	h.clipboard.err = errors.New("no clipboard owner")

	if err := h.d.Dispatch("Abcd"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	want := []string{"type:A", "type:b", "type:c", "type:d"}
	if got := h.injector.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func TestDispatchFallsBackToTypingWhenPasteChordFails(t *testing.T) {
	h := newHarness(t)
	h.injector.chordErr = map[string]error{"ctrl+v": errors.New("xtest refused")}

	if err := h.d.Dispatch("ESC[13~"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	got := h.injector.snapshot()
	if len(got) != len("ESC[13~") || got[0] != "type:E" || got[len(got)-1] != "type:~" {
		t.Fatalf("calls = %v, want literal typed unchanged", got)
	}
}

func TestDispatchTypesWhenClipboardDisabled(t *testing.T) {
	h := newHarness(t)
	h.d.cfg.Clipboard = false

	if err := h.d.Dispatch("abcd"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(h.clipboard.writes) != 0 {
		t.Fatalf("clipboard touched: %v", h.clipboard.writes)
	}
	if got := h.injector.snapshot(); len(got) != 4 {
		t.Fatalf("calls = %v, want 4 typed runes", got)
	}
}

func TestDispatchFocusesFirstMatchingWindow(t *testing.T) {
	h := newHarness(t,
		Window{ID: 1, Title: "Terminal"},
		Window{ID: 2, Title: "TigerVNC Viewer: caixa"},
		Window{ID: 3, Title: "notes - gedit"},
	)

	if err := h.d.Dispatch("ENTER"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(h.windows.activated) != 1 || h.windows.activated[0].ID != 2 {
		t.Fatalf("activated = %v, want window 2 only", h.windows.activated)
	}
	if len(h.sleeps) != 1 || h.sleeps[0] != 300*time.Millisecond {
		t.Fatalf("sleeps = %v, want single settle delay", h.sleeps)
	}
}

func TestDispatchWithoutMatchingWindowStillSends(t *testing.T) {
	h := newHarness(t, Window{ID: 1, Title: "Terminal"}, Window{ID: 2, Title: "Browser"})

	if err := h.d.Dispatch("CTRL+F"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(h.windows.activated) != 0 {
		t.Fatalf("activated = %v, want none", h.windows.activated)
	}
	if len(h.sleeps) != 0 {
		t.Fatalf("sleeps = %v, want none", h.sleeps)
	}
	if got, want := h.injector.snapshot(), []string{"chord:ctrl+f"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func TestFocusErrorsAreNotFatal(t *testing.T) {
	h := newHarness(t)
	h.windows.listErr = errors.New("no _NET_CLIENT_LIST")
	if err := h.d.Dispatch("F5"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if outcome := h.d.focusTarget(); outcome.Result != FocusFailed || outcome.Err == nil {
		t.Fatalf("focusTarget() = %#v, want FocusFailed with error", outcome)
	}

	h = newHarness(t, Window{ID: 9, Title: "vnc"})
	h.windows.activateErr = errors.New("BadWindow")
	if err := h.d.Dispatch("F5"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(h.sleeps) != 0 {
		t.Fatalf("sleeps = %v, want none after failed activation", h.sleeps)
	}
	if got, want := h.injector.snapshot(), []string{"press:f5"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func TestFocusUnavailableWithoutWindowManager(t *testing.T) {
	d, err := NewDispatcher(DefaultConfig(), &recordingInjector{}, nil, nil, noopLogger{})
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	if outcome := d.focusTarget(); outcome.Result != FocusUnavailable {
		t.Fatalf("focusTarget() = %v, want FocusUnavailable", outcome.Result)
	}
}

func TestInjectionErrorsPropagate(t *testing.T) {
	h := newHarness(t)
	h.injector.pressErr = errors.New("device gone")
	if err := h.d.Dispatch("TAB"); err == nil || !strings.Contains(err.Error(), "device gone") {
		t.Fatalf("Dispatch() error = %v, want press failure", err)
	}

	h = newHarness(t)
	h.injector.chordErr = map[string]error{"alt+f4": errors.New("denied")}
	if err := h.d.Dispatch("ALT+F4"); err == nil {
		t.Fatalf("expected chord failure to propagate")
	}

	h = newHarness(t)
	h.injector.typeErr = errors.New("no keycode")
	if err := h.d.Dispatch("xy"); err == nil {
		t.Fatalf("expected typing failure to propagate")
	}
}

func TestSetMarkersChangesFocusTarget(t *testing.T) {
	h := newHarness(t, Window{ID: 1, Title: "PDV Caixa 01"}, Window{ID: 2, Title: "gedit"})
	h.d.SetMarkers(MarkersWithHint("pdv caixa", h.d.Markers()))

	if err := h.d.Dispatch("ENTER"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(h.windows.activated) != 1 || h.windows.activated[0].ID != 1 {
		t.Fatalf("activated = %v, want window 1", h.windows.activated)
	}
}

func TestCloseClosesInjectorOnce(t *testing.T) {
	h := newHarness(t)
	if err := h.d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.d.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !h.injector.closed {
		t.Fatalf("expected injector to be closed")
	}
}

func TestSendErrorFormatsReport(t *testing.T) {
	base := errors.New("boom")
	err := &SendError{Label: "Buscar", Spec: "CTRL+F", Err: base}
	if got, want := err.Error(), "Tecla: Buscar\nRetorno: CTRL+F\n\nboom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected SendError to unwrap to cause")
	}
}
