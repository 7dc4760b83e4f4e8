package dispatch

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type Dispatcher struct {
	injector  Injector
	windows   WindowManager
	clipboard Clipboard
	logger    Logger
	sleep     func(time.Duration)

	mu        sync.Mutex
	cfg       Config
	closeOnce sync.Once
}

// NewDispatcher wires the injection backends. windows and clipboard are
// optional: without them the focus step reports FocusUnavailable and long
// literals are typed instead of pasted.
func NewDispatcher(cfg Config, injector Injector, windows WindowManager, clipboard Clipboard, logger Logger) (*Dispatcher, error) {
	if injector == nil {
		return nil, fmt.Errorf("injector is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if cfg.FocusSettle < 0 {
		return nil, fmt.Errorf("focus settle must be >= 0")
	}
	if cfg.TypeDelay < 0 {
		return nil, fmt.Errorf("type delay must be >= 0")
	}
	cfg.Markers = append([]string(nil), cfg.Markers...)

	return &Dispatcher{
		injector:  injector,
		windows:   windows,
		clipboard: clipboard,
		logger:    logger,
		sleep:     time.Sleep,
		cfg:       cfg,
	}, nil
}

// Dispatch focuses a target window, then sends spec according to Classify.
// Only errors from the final emission are returned. Calls are serialised: a
// second Dispatch waits until the first one has finished typing.
func (d *Dispatcher) Dispatch(spec string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	focus := d.focusTarget()
	res := Classify(spec)
	d.logger.Debug("Dispatch", "kind", res.Kind.String(), "focus", focus.Result.String(), "window", focus.Window.Title)

	switch res.Kind {
	case KindModifierCombo:
		keys := res.KeyNames()
		if err := d.injector.KeyChord(keys...); err != nil {
			return fmt.Errorf("key chord %s: %w", strings.Join(keys, "+"), err)
		}
		return nil
	case KindSpecialKey:
		name := res.Keys[0].Name
		if err := d.injector.KeyPress(name); err != nil {
			return fmt.Errorf("key %s: %w", name, err)
		}
		return nil
	case KindClipboardPaste:
		if d.paste(res.Text) == PasteDone {
			return nil
		}
	}
	return d.typeText(res.Text)
}

// SetMarkers replaces the window title markers used by the focus step.
func (d *Dispatcher) SetMarkers(markers []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg.Markers = append([]string(nil), markers...)
}

func (d *Dispatcher) Markers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.cfg.Markers...)
}

func (d *Dispatcher) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		err = d.injector.Close()
	})
	return err
}

func (d *Dispatcher) focusTarget() FocusOutcome {
	if d.windows == nil {
		return FocusOutcome{Result: FocusUnavailable}
	}

	windows, err := d.windows.ListWindows()
	if err != nil {
		d.logger.Warn("Window enumeration failed", "err", err)
		return FocusOutcome{Result: FocusFailed, Err: err}
	}

	for _, win := range windows {
		marker, ok := MatchMarker(win.Title, d.cfg.Markers)
		if !ok {
			continue
		}
		if err := d.windows.ActivateWindow(win); err != nil {
			d.logger.Warn("Window activation failed", "title", win.Title, "err", err)
			return FocusOutcome{Result: FocusFailed, Window: win, Marker: marker, Err: err}
		}
		if d.cfg.FocusSettle > 0 {
			d.sleep(d.cfg.FocusSettle)
		}
		return FocusOutcome{Result: FocusActivated, Window: win, Marker: marker}
	}
	return FocusOutcome{Result: FocusNoMatch}
}

func (d *Dispatcher) paste(text string) PasteResult {
	if !d.cfg.Clipboard || d.clipboard == nil {
		return PasteSkipped
	}
	if err := d.clipboard.WriteText(text); err != nil {
		d.logger.Debug("Clipboard write failed, typing instead", "err", err)
		return PasteFailed
	}
	if err := d.injector.KeyChord("ctrl", "v"); err != nil {
		d.logger.Debug("Paste chord failed, typing instead", "err", err)
		return PasteFailed
	}
	return PasteDone
}

func (d *Dispatcher) typeText(text string) error {
	for _, ch := range text {
		if err := d.injector.TypeRune(ch); err != nil {
			return fmt.Errorf("type %q: %w", ch, err)
		}
		if d.cfg.TypeDelay > 0 {
			d.sleep(d.cfg.TypeDelay)
		}
	}
	return nil
}
