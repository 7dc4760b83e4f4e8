package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

var ErrUnsupportedFormat = errors.New("unsupported layout format")

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Supported reports whether name has a layout file extension.
func Supported(name string) bool {
	return isJSON(name) || isYAML(name)
}

func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var l Layout
	switch {
	case isJSON(path):
		err = json.Unmarshal(data, &l)
	case isYAML(path):
		err = yaml.Unmarshal(data, &l)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	return &l, nil
}

func Save(path string, l *Layout) error {
	if l == nil {
		return errors.New("layout is nil")
	}
	if err := l.Validate(); err != nil {
		return err
	}

	out := l.Clone()
	out.Rows = l.RowCount()
	out.Columns = l.ColumnCount()
	if out.Keys == nil {
		out.Keys = []Key{}
	}

	data, err := encode(path, out)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create layouts dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to persist layout: %w", err)
	}
	return nil
}

func encode(path string, l *Layout) ([]byte, error) {
	switch {
	case isJSON(path):
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(l); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case isYAML(path):
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// List returns the layout file names in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// EnsureDefault creates dir and writes the starter layout when dir holds no
// layout files yet. It returns the names present afterwards.
func EnsureDefault(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create layouts dir: %w", err)
	}
	names, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return names, nil
	}
	if err := Save(filepath.Join(dir, DefaultLayoutName), Default()); err != nil {
		return nil, err
	}
	return []string{DefaultLayoutName}, nil
}
