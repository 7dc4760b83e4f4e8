//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
)

const allDesktops = 0xFFFFFFFF

type keyStroke struct {
	keycode xproto.Keycode
	shift   bool
}

// Runtime injects keys through XTEST and finds windows through EWMH. It
// implements both dispatch.Injector and dispatch.WindowManager on one
// connection.
type Runtime struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window
	logger  dispatch.Logger

	mu         sync.Mutex
	minKeycode xproto.Keycode
	perKeycode int
	keysyms    []xproto.Keysym
	scratch    xproto.Keycode
	shiftCode  xproto.Keycode

	closeOnce sync.Once
}

func NewRuntime(logger dispatch.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	keybind.Initialize(xu)

	r := &Runtime{
		xu:      xu,
		conn:    conn,
		rootWin: xu.RootWin(),
		logger:  logger,
	}
	if err := r.loadKeymap(); err != nil {
		conn.Close()
		return nil, err
	}

	shift, err := r.resolveNamed("shift")
	if err != nil {
		conn.Close()
		return nil, err
	}
	r.shiftCode = shift
	return r, nil
}

func (r *Runtime) loadKeymap() error {
	setup := r.xu.Setup()
	count := int(setup.MaxKeycode) - int(setup.MinKeycode) + 1
	reply, err := xproto.GetKeyboardMapping(r.conn, setup.MinKeycode, byte(count)).Reply()
	if err != nil {
		return fmt.Errorf("keyboard mapping: %w", err)
	}

	r.minKeycode = setup.MinKeycode
	r.perKeycode = int(reply.KeysymsPerKeycode)
	r.keysyms = reply.Keysyms
	r.scratch = 0

	// Highest keycode with no symbols is used to type characters the
	// active layout cannot produce.
	for i := count - 1; i >= 0; i-- {
		if r.emptyAt(i) {
			r.scratch = r.minKeycode + xproto.Keycode(i)
			break
		}
	}
	return nil
}

func (r *Runtime) emptyAt(index int) bool {
	base := index * r.perKeycode
	for col := 0; col < r.perKeycode && base+col < len(r.keysyms); col++ {
		if r.keysyms[base+col] != 0 {
			return false
		}
	}
	return true
}

func (r *Runtime) KeyChord(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]xproto.Keycode, 0, len(keys))
	for _, key := range keys {
		code, err := r.resolveNamed(key)
		if err != nil {
			return err
		}
		codes = append(codes, code)
	}

	pressed := make([]xproto.Keycode, 0, len(codes))
	var pressErr error
	for _, code := range codes {
		if err := r.fake(xproto.KeyPress, code); err != nil {
			pressErr = err
			break
		}
		pressed = append(pressed, code)
	}
	for i := len(pressed) - 1; i >= 0; i-- {
		if err := r.fake(xproto.KeyRelease, pressed[i]); err != nil && pressErr == nil {
			pressErr = err
		}
	}
	r.xu.Sync()
	return pressErr
}

func (r *Runtime) KeyPress(key string) error {
	return r.KeyChord(key)
}

func (r *Runtime) TypeRune(ch rune) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stroke, remapped, err := r.strokeForRune(ch)
	if err != nil {
		return err
	}
	if remapped {
		defer r.restoreScratch()
	}

	if stroke.shift {
		if err := r.fake(xproto.KeyPress, r.shiftCode); err != nil {
			return err
		}
		defer func() {
			_ = r.fake(xproto.KeyRelease, r.shiftCode)
			r.xu.Sync()
		}()
	}
	if err := r.fake(xproto.KeyPress, stroke.keycode); err != nil {
		return err
	}
	if err := r.fake(xproto.KeyRelease, stroke.keycode); err != nil {
		return err
	}
	r.xu.Sync()
	return nil
}

func (r *Runtime) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.conn != nil {
			r.conn.Close()
		}
	})
	return nil
}

func (r *Runtime) ListWindows() ([]dispatch.Window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, err := ewmh.ClientListGet(r.xu)
	if err != nil {
		return nil, fmt.Errorf("client list: %w", err)
	}

	windows := make([]dispatch.Window, 0, len(clients))
	for _, win := range clients {
		title, err := ewmh.WmNameGet(r.xu, win)
		if err != nil || title == "" {
			title, err = icccm.WmNameGet(r.xu, win)
			if err != nil {
				r.logger.Debug("Window has no title", "window", uint32(win), "err", err)
				continue
			}
		}
		windows = append(windows, dispatch.Window{ID: uint64(win), Title: title})
	}
	return windows, nil
}

func (r *Runtime) ActivateWindow(target dispatch.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	win := xproto.Window(target.ID)
	if desktop, err := ewmh.WmDesktopGet(r.xu, win); err == nil && desktop != allDesktops {
		if err := ewmh.CurrentDesktopReq(r.xu, int(desktop)); err != nil {
			r.logger.Debug("Desktop switch failed", "desktop", desktop, "err", err)
		}
	}
	if err := ewmh.ActiveWindowReq(r.xu, win); err != nil {
		return fmt.Errorf("activate window %#x: %w", target.ID, err)
	}
	r.xu.Sync()
	return nil
}

func (r *Runtime) fake(eventType byte, code xproto.Keycode) error {
	return xtest.FakeInputChecked(
		r.conn,
		eventType,
		byte(code),
		xproto.TimeCurrentTime,
		r.rootWin,
		0,
		0,
		0,
	).Check()
}

func (r *Runtime) resolveNamed(name string) (xproto.Keycode, error) {
	if keysymName, ok := KeysymName(name); ok {
		keycodes := keybind.StrToKeycodes(r.xu, keysymName)
		if len(keycodes) > 0 {
			sort.Slice(keycodes, func(i, j int) bool { return keycodes[i] < keycodes[j] })
			return keycodes[0], nil
		}
	}

	runes := []rune(name)
	if len(runes) == 1 {
		if stroke, ok := r.lookupKeysym(xproto.Keysym(RuneKeysym(runes[0]))); ok {
			return stroke.keycode, nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

func (r *Runtime) lookupKeysym(sym xproto.Keysym) (keyStroke, bool) {
	if r.perKeycode == 0 {
		return keyStroke{}, false
	}
	columns := min(r.perKeycode, 2)
	for col := 0; col < columns; col++ {
		for i := 0; i*r.perKeycode+col < len(r.keysyms); i++ {
			if r.keysyms[i*r.perKeycode+col] == sym {
				return keyStroke{keycode: r.minKeycode + xproto.Keycode(i), shift: col == 1}, true
			}
		}
	}
	return keyStroke{}, false
}

func (r *Runtime) strokeForRune(ch rune) (keyStroke, bool, error) {
	sym := xproto.Keysym(RuneKeysym(ch))
	if stroke, ok := r.lookupKeysym(sym); ok {
		return stroke, false, nil
	}
	if r.scratch == 0 {
		return keyStroke{}, false, fmt.Errorf("no keycode produces %q", ch)
	}

	syms := make([]xproto.Keysym, r.perKeycode)
	for i := range syms {
		syms[i] = sym
	}
	if err := xproto.ChangeKeyboardMappingChecked(r.conn, 1, r.scratch, byte(r.perKeycode), syms).Check(); err != nil {
		return keyStroke{}, false, fmt.Errorf("remap keycode for %q: %w", ch, err)
	}
	r.xu.Sync()
	return keyStroke{keycode: r.scratch}, true, nil
}

func (r *Runtime) restoreScratch() {
	syms := make([]xproto.Keysym, r.perKeycode)
	if err := xproto.ChangeKeyboardMappingChecked(r.conn, 1, r.scratch, byte(r.perKeycode), syms).Check(); err != nil {
		r.logger.Warn("Failed to restore scratch keycode", "keycode", r.scratch, "err", err)
	}
	r.xu.Sync()
}
