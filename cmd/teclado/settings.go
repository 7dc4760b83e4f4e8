package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/layout"
)

const (
	minWindowSide = 240
	maxWindowSide = 8192
)

// uiSettings is what the GUI remembers between runs: the last layout picked
// and the window size.
type uiSettings struct {
	Layout string  `json:"layout"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// normalize drops values the GUI cannot use. The layout must be a bare file
// name inside the layouts dir with a layout extension, and the window size is
// discarded unless both sides are within range.
func (s *uiSettings) normalize() {
	if s.Layout != "" && (filepath.Base(s.Layout) != s.Layout || !layout.Supported(s.Layout)) {
		s.Layout = ""
	}
	if !windowSideOK(s.Width) || !windowSideOK(s.Height) {
		s.Width, s.Height = 0, 0
	}
}

func windowSideOK(v float32) bool {
	return v >= minWindowSide && v <= maxWindowSide
}

var uiSettingsPath = func() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", ".teclado-settings.json"), nil
	}
	return filepath.Join(configDir, "teclado", "settings.json"), nil
}

// loadUISettings returns nil when nothing was saved yet.
func loadUISettings() (*uiSettings, error) {
	path, err := uiSettingsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var s uiSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	s.normalize()
	return &s, nil
}

func saveUISettings(s uiSettings) error {
	s.normalize()
	path, err := uiSettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}
