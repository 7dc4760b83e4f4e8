//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/adapters/linuxinput"
	"github.com/aleleonardi/teclado-virutal-programavel/internal/adapters/x11input"
	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"
)

type backend struct {
	name     string
	injector dispatch.Injector
	windows  dispatch.WindowManager
}

func parseBackendChoice(value string) (string, error) {
	choice := strings.ToLower(strings.TrimSpace(value))
	if choice == "" {
		choice = "auto"
	}
	switch choice {
	case "auto", "wayland", "x11", "uinput":
		return choice, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (linux supports auto|wayland|x11)", value)
	}
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend. On Wayland grant write access to /dev/uinput (root or a udev rule). On X11 ensure an active X11 session and DISPLAY is set."
}

// openBackend returns the X11 runtime for both roles, or the uinput keyboard
// without window focusing on Wayland.
func openBackend(choice string, logger *slog.Logger) (backend, error) {
	switch resolveLinuxBackend(choice) {
	case "x11":
		rt, err := x11input.NewRuntime(logger)
		if err != nil {
			return backend{}, err
		}
		return backend{name: "x11", injector: rt, windows: rt}, nil
	default:
		rt, err := linuxinput.NewRuntime(logger)
		if err != nil {
			return backend{}, err
		}
		logger.Warn("Wayland backend cannot focus other windows; focus the target manually")
		return backend{name: "wayland", injector: rt}, nil
	}
}

func resolveLinuxBackend(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		choice = "auto"
	}
	if choice == "uinput" {
		choice = "wayland"
	}
	if choice != "auto" {
		return choice
	}

	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "wayland"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "wayland"
}
