//go:build !linux && !windows

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"
)

type backend struct {
	name     string
	injector dispatch.Injector
	windows  dispatch.WindowManager
}

func parseBackendChoice(value string) (string, error) {
	choice := strings.ToLower(strings.TrimSpace(value))
	if choice == "" || choice == "auto" {
		return "auto", nil
	}
	return "", fmt.Errorf("invalid --backend %q (unsupported platform)", value)
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend."
}

func openBackend(_ string, _ *slog.Logger) (backend, error) {
	return backend{}, fmt.Errorf("key injection is not supported on this platform")
}
