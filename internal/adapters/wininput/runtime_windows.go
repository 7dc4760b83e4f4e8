//go:build windows

package wininput

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"

	"golang.org/x/sys/windows"
)

const (
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
	keyeventfUnicode     = 0x0004

	swShow    = 5
	swRestore = 9
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSendInput            = user32.NewProc("SendInput")
	procEnumWindows          = user32.NewProc("EnumWindows")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procIsIconic             = user32.NewProc("IsIconic")
	procShowWindow           = user32.NewProc("ShowWindow")
	procBringWindowToTop     = user32.NewProc("BringWindowToTop")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")

	enumWindowsCallback = windows.NewCallback(enumWindowsProc)

	// enumMu serialises EnumWindows calls; enumCollected is only valid while held.
	enumMu        sync.Mutex
	enumCollected []dispatch.Window
)

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input mirrors INPUT. The trailing pad covers the difference between
// KEYBDINPUT and MOUSEINPUT, the largest union member, on 32 and 64 bit.
type input struct {
	Type uint32
	Ki   keybdInput
	_    [8]byte
}

func keyInput(vk uint16, scan uint16, flags uint32) input {
	if vk != 0 && isExtendedVK(vk) {
		flags |= keyeventfExtendedKey
	}
	return input{
		Type: inputKeyboard,
		Ki:   keybdInput{WVk: vk, WScan: scan, DwFlags: flags},
	}
}

// Runtime injects keys with SendInput and finds top-level windows by title.
type Runtime struct {
	logger dispatch.Logger
	mu     sync.Mutex
}

func NewRuntime(logger dispatch.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if err := procSendInput.Find(); err != nil {
		return nil, err
	}
	return &Runtime{logger: logger}, nil
}

func (r *Runtime) KeyChord(keys ...string) error {
	vks := make([]uint16, 0, len(keys))
	for _, key := range keys {
		vk, ok := VKForKey(key)
		if !ok {
			return fmt.Errorf("unknown key %q", key)
		}
		vks = append(vks, vk)
	}

	inputs := make([]input, 0, len(vks)*2)
	for _, vk := range vks {
		inputs = append(inputs, keyInput(vk, 0, 0))
	}
	for i := len(vks) - 1; i >= 0; i-- {
		inputs = append(inputs, keyInput(vks[i], 0, keyeventfKeyUp))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return send(inputs)
}

func (r *Runtime) KeyPress(key string) error {
	return r.KeyChord(key)
}

func (r *Runtime) TypeRune(ch rune) error {
	units, vk := unicodeUnits(ch)
	var inputs []input
	if vk != 0 {
		inputs = []input{keyInput(vk, 0, 0), keyInput(vk, 0, keyeventfKeyUp)}
	} else {
		inputs = make([]input, 0, len(units)*2)
		for _, cu := range units {
			inputs = append(inputs,
				keyInput(0, cu, keyeventfUnicode),
				keyInput(0, cu, keyeventfUnicode|keyeventfKeyUp),
			)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return send(inputs)
}

func (r *Runtime) Close() error {
	return nil
}

func (r *Runtime) ListWindows() ([]dispatch.Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()
	enumCollected = make([]dispatch.Window, 0, 32)
	defer func() { enumCollected = nil }()

	ok, _, err := procEnumWindows.Call(enumWindowsCallback, 0)
	if ok == 0 {
		if err != nil && !errors.Is(err, windows.Errno(0)) {
			return nil, err
		}
		return nil, errors.New("EnumWindows failed")
	}
	return enumCollected, nil
}

// enumWindowsProc collects visible titled windows into enumCollected.
func enumWindowsProc(hwnd, _ uintptr) uintptr {
	visible, _, _ := procIsWindowVisible.Call(hwnd)
	if visible == 0 {
		return 1
	}
	title := strings.TrimSpace(windowText(hwnd))
	if title == "" {
		return 1
	}
	enumCollected = append(enumCollected, dispatch.Window{ID: uint64(hwnd), Title: title})
	return 1
}

func (r *Runtime) ActivateWindow(win dispatch.Window) error {
	hwnd := uintptr(win.ID)
	if hwnd == 0 {
		return errors.New("invalid window handle")
	}

	minimized, _, _ := procIsIconic.Call(hwnd)
	if minimized != 0 {
		procShowWindow.Call(hwnd, swRestore)
	} else {
		procShowWindow.Call(hwnd, swShow)
	}
	procBringWindowToTop.Call(hwnd)
	ok, _, _ := procSetForegroundWindow.Call(hwnd)
	if ok == 0 {
		r.logger.Debug("SetForegroundWindow refused", "title", win.Title)
	}
	return nil
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), n+1)
	return windows.UTF16ToString(buf)
}

func send(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}
	sent, _, callErr := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if sent != uintptr(len(inputs)) {
		if callErr != nil && !errors.Is(callErr, windows.Errno(0)) {
			return callErr
		}
		return fmt.Errorf("SendInput sent %d of %d inputs", sent, len(inputs))
	}
	return nil
}
