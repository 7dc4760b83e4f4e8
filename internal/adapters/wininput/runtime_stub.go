//go:build !windows

package wininput

import (
	"errors"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"
)

var errUnsupported = errors.New("windows input runtime is only available on Windows")

type Runtime struct{}

func NewRuntime(logger dispatch.Logger) (*Runtime, error) {
	return nil, errUnsupported
}

func (r *Runtime) KeyChord(keys ...string) error { return errUnsupported }

func (r *Runtime) KeyPress(key string) error { return errUnsupported }

func (r *Runtime) TypeRune(ch rune) error { return errUnsupported }

func (r *Runtime) Close() error { return nil }

func (r *Runtime) ListWindows() ([]dispatch.Window, error) { return nil, errUnsupported }

func (r *Runtime) ActivateWindow(win dispatch.Window) error { return errUnsupported }
