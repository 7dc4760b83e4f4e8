//go:build linux

package linuxinput

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"

	evdev "github.com/holoplot/go-evdev"
)

const (
	DeviceName = "teclado-virtual"

	// Compositors need a moment to attach a freshly created device before
	// its first events are delivered.
	deviceSettle = 250 * time.Millisecond
)

type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// Runtime is a uinput virtual keyboard. It works under Wayland and on the
// console, but cannot see or activate windows.
type Runtime struct {
	dev    eventWriter
	logger dispatch.Logger

	mu        sync.Mutex
	shiftCode evdev.EvCode
	closeOnce sync.Once
}

func NewRuntime(logger dispatch.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x2,
		Version: 1,
	}
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: sortedCodes(keyboardCodes()),
	}

	dev, err := evdev.CreateDevice(DeviceName, id, capabilities)
	if err != nil {
		return nil, err
	}
	logger.Info("Created virtual keyboard", "name", DeviceName, "keys", len(capabilities[evdev.EV_KEY]))
	time.Sleep(deviceSettle)

	return newRuntime(dev, logger)
}

func newRuntime(dev eventWriter, logger dispatch.Logger) (*Runtime, error) {
	shift, err := CodeForKey("shift")
	if err != nil {
		return nil, err
	}
	return &Runtime{dev: dev, logger: logger, shiftCode: shift}, nil
}

func (r *Runtime) KeyChord(keys ...string) error {
	codes := make([]evdev.EvCode, 0, len(keys))
	for _, key := range keys {
		code, err := CodeForKey(key)
		if err != nil {
			return err
		}
		codes = append(codes, code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stroke(codes)
}

func (r *Runtime) KeyPress(key string) error {
	return r.KeyChord(key)
}

func (r *Runtime) TypeRune(ch rune) error {
	code, shift, err := CodeForRune(ch)
	if err != nil {
		return err
	}
	codes := []evdev.EvCode{code}
	if shift {
		codes = []evdev.EvCode{r.shiftCode, code}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stroke(codes)
}

func (r *Runtime) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.dev != nil {
			err = r.dev.Close()
		}
	})
	return err
}

// stroke presses codes in order and releases them in reverse. Keys already
// pressed are released even when a later press fails.
func (r *Runtime) stroke(codes []evdev.EvCode) error {
	pressed := make([]evdev.EvCode, 0, len(codes))
	var strokeErr error
	for _, code := range codes {
		if err := r.writeKey(code, 1); err != nil {
			strokeErr = err
			break
		}
		pressed = append(pressed, code)
	}
	for i := len(pressed) - 1; i >= 0; i-- {
		if err := r.writeKey(pressed[i], 0); err != nil && strokeErr == nil {
			strokeErr = err
		}
	}
	return strokeErr
}

func (r *Runtime) writeKey(code evdev.EvCode, value int32) error {
	if err := r.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}); err != nil {
		return err
	}
	return r.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0})
}

func sortedCodes(values map[evdev.EvCode]struct{}) []evdev.EvCode {
	codes := make([]evdev.EvCode, 0, len(values))
	for code := range values {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return codes[i] < codes[j]
	})
	return codes
}
