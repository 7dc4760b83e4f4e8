//go:build windows

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/adapters/wininput"
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
	case "auto", "windows":
		return choice, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (windows supports auto|windows)", value)
	}
}

func permissionDeniedHint() string {
	return "Permission denied sending input. Windows blocks SendInput into elevated windows; run as Administrator when the target runs elevated."
}

func openBackend(_ string, logger *slog.Logger) (backend, error) {
	rt, err := wininput.NewRuntime(logger)
	if err != nil {
		return backend{}, err
	}
	return backend{name: "windows", injector: rt, windows: rt}, nil
}
