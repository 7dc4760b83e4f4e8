package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/adapters/clipboard"
	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"
	"github.com/aleleonardi/teclado-virutal-programavel/internal/layout"
)

// clipboardHold keeps the process alive after a one-shot paste so the
// clipboard owner can still serve the target window's request.
const clipboardHold = 300 * time.Millisecond

type config struct {
	layoutsDir      string
	layoutName      string
	backend         string
	send            string
	sendSet         bool
	listWindows     bool
	typeDelay       time.Duration
	focusSettle     time.Duration
	noClipboard     bool
	useLayoutTarget bool
	ui              bool
	logLevel        slog.Level
}

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

func newSlogLogger(level slog.Level, sink func(line string)) *slog.Logger {
	if !debugLogsEnabled() {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		}))
	}

	out := io.Writer(os.Stderr)
	if sink != nil {
		out = io.MultiWriter(os.Stderr, &lineSinkWriter{sink: sink})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func exeDir() string {
	p, err := os.Executable()
	if err != nil || p == "" {
		if wd, err2 := os.Getwd(); err2 == nil && wd != "" {
			return wd
		}
		return "."
	}
	return filepath.Dir(p)
}

func parseConfig(args []string, stderr io.Writer) (config, error) {
	defaults := dispatch.DefaultConfig()
	cfg := config{}
	flags := flag.NewFlagSet("teclado", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var backendRaw string
	var logLevelRaw string
	var typeDelayMS int
	var focusSettleMS int
	var cliMode bool

	flags.StringVar(&cfg.layoutsDir, "layouts", filepath.Join(exeDir(), "layouts"), "Directory holding layout files (.json, .yaml).")
	flags.StringVar(&cfg.layoutName, "layout", layout.DefaultLayoutName, "Layout file name inside --layouts to open first.")
	flags.StringVar(&backendRaw, "backend", "auto", "Injection backend. Linux: auto|x11|wayland. Windows: auto|windows.")
	flags.StringVar(&cfg.send, "send", "", "Send one return string (e.g. CTRL+F, ENTER, ESC[13~) to the target window and exit.")
	flags.BoolVar(&cfg.listWindows, "list-windows", false, "Print the windows the focus step can see and exit.")
	flags.IntVar(&typeDelayMS, "type-delay-ms", int(defaults.TypeDelay/time.Millisecond), "Pause after each typed character in ms.")
	flags.IntVar(&focusSettleMS, "focus-settle-ms", int(defaults.FocusSettle/time.Millisecond), "Pause after activating the target window in ms.")
	flags.BoolVar(&cfg.noClipboard, "no-clipboard", false, "Always type literals instead of pasting long ones.")
	flags.BoolVar(&cfg.useLayoutTarget, "use-layout-target", false, "Also match the layout's janela_alvo against window titles.")
	flags.BoolVar(&cfg.ui, "ui", true, "Start desktop GUI (Fyne) by default. Use --ui=false or --cli for terminal mode.")
	flags.BoolVar(&cliMode, "cli", false, "Force terminal mode (disables GUI).")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "send" {
			cfg.sendSet = true
		}
	})
	if typeDelayMS < 0 {
		return cfg, fmt.Errorf("--type-delay-ms must be >= 0")
	}
	if focusSettleMS < 0 {
		return cfg, fmt.Errorf("--focus-settle-ms must be >= 0")
	}
	if strings.TrimSpace(cfg.layoutName) == "" {
		return cfg, fmt.Errorf("--layout must not be empty")
	}
	if !layout.Supported(cfg.layoutName) {
		return cfg, fmt.Errorf("--layout %q must end in .json, .yaml or .yml", cfg.layoutName)
	}
	if cliMode {
		cfg.ui = false
	}

	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	backendChoice, err := parseBackendChoice(backendRaw)
	if err != nil {
		return cfg, err
	}

	cfg.typeDelay = time.Duration(typeDelayMS) * time.Millisecond
	cfg.focusSettle = time.Duration(focusSettleMS) * time.Millisecond
	cfg.backend = backendChoice
	cfg.logLevel = parsedLevel
	return cfg, nil
}

func (c config) dispatchConfig() dispatch.Config {
	out := dispatch.DefaultConfig()
	out.TypeDelay = c.typeDelay
	out.FocusSettle = c.focusSettle
	out.Clipboard = !c.noClipboard
	return out
}

// targetMarkers returns the marker list for l: the built-in markers, plus the
// layout's janela_alvo when --use-layout-target is set.
func (c config) targetMarkers(l *layout.Layout) []string {
	base := dispatch.DefaultMarkers()
	if !c.useLayoutTarget || l == nil {
		return base
	}
	return dispatch.MarkersWithHint(l.TargetWindow, base)
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

// newDispatcher opens the platform backend and the clipboard and wires them
// into a dispatcher.
func newDispatcher(cfg config, logger *slog.Logger) (*dispatch.Dispatcher, error) {
	be, err := openBackend(cfg.backend, logger)
	if err != nil {
		return nil, err
	}

	var clip dispatch.Clipboard
	if !cfg.noClipboard {
		writer := clipboard.New()
		if err := writer.Available(); err != nil {
			logger.Warn("Clipboard disabled, long literals will be typed", "err", err)
		} else {
			clip = writer
		}
	}

	d, err := dispatch.NewDispatcher(cfg.dispatchConfig(), be.injector, be.windows, clip, logger)
	if err != nil {
		_ = be.injector.Close()
		return nil, err
	}
	logger.Info("Backend", "name", be.name, "focus", be.windows != nil, "clipboard", clip != nil)
	return d, nil
}

func reportStartError(stderr io.Writer, err error) {
	if isPermissionError(err) {
		fmt.Fprintln(stderr, permissionDeniedHint())
		return
	}
	fmt.Fprintln(stderr, err)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.listWindows {
		if err := listWindows(cfg.backend, stdout, newSlogLogger(cfg.logLevel, nil)); err != nil {
			reportStartError(stderr, err)
			return 1
		}
		return 0
	}

	if cfg.sendSet {
		if err := sendOnce(cfg, cfg.send); err != nil {
			reportStartError(stderr, err)
			return 1
		}
		return 0
	}

	if cfg.ui {
		if err := runUI(cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if err := runCLI(cfg, stdin, stdout); err != nil {
		reportStartError(stderr, err)
		return 1
	}
	return 0
}

func listWindows(backend string, out io.Writer, logger *slog.Logger) error {
	be, err := openBackend(backend, logger)
	if err != nil {
		return err
	}
	defer be.injector.Close()

	if be.windows == nil {
		return fmt.Errorf("backend %s cannot list windows", be.name)
	}
	windows, err := be.windows.ListWindows()
	if err != nil {
		return err
	}
	markers := dispatch.DefaultMarkers()
	for _, win := range windows {
		tag := ""
		if marker, ok := dispatch.MatchMarker(win.Title, markers); ok {
			tag = "  [alvo: " + marker + "]"
		}
		fmt.Fprintf(out, "0x%08x  %s%s\n", win.ID, win.Title, tag)
	}
	return nil
}

func sendOnce(cfg config, spec string) error {
	logger := newSlogLogger(cfg.logLevel, nil)
	d, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.useLayoutTarget {
		if l, err := layout.Load(filepath.Join(cfg.layoutsDir, cfg.layoutName)); err == nil {
			d.SetMarkers(cfg.targetMarkers(l))
		} else {
			logger.Warn("Layout target unavailable", "err", err)
		}
	}

	if err := d.Dispatch(spec); err != nil {
		return &dispatch.SendError{Label: "--send", Spec: spec, Err: err}
	}
	time.Sleep(clipboardHold)
	return nil
}

// selectKey resolves terminal input to a key: a 1-based position in the
// layout or a key name (case-insensitive).
func selectKey(l *layout.Layout, input string) (layout.Key, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return layout.Key{}, fmt.Errorf("empty selection")
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(l.Keys) {
			return layout.Key{}, fmt.Errorf("no key %d (layout has %d)", n, len(l.Keys))
		}
		return l.Keys[n-1], nil
	}
	for _, k := range l.Keys {
		if strings.EqualFold(k.Name, input) {
			return k, nil
		}
	}
	return layout.Key{}, fmt.Errorf("no key named %q", input)
}

func printLayout(out io.Writer, l *layout.Layout) {
	fmt.Fprintf(out, "%s (%dx%d)\n", l.Title(), l.RowCount(), l.ColumnCount())
	for i, k := range l.Keys {
		fmt.Fprintf(out, "%3d  %s\n", i+1, k.ListLabel())
	}
}

func runCLI(cfg config, stdin io.Reader, stdout io.Writer) error {
	logger := newSlogLogger(cfg.logLevel, nil)
	if _, err := layout.EnsureDefault(cfg.layoutsDir); err != nil {
		return err
	}
	l, err := layout.Load(filepath.Join(cfg.layoutsDir, cfg.layoutName))
	if err != nil {
		return err
	}

	d, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()
	d.SetMarkers(cfg.targetMarkers(l))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	printLayout(stdout, l)
	fmt.Fprintln(stdout, "Digite o número ou o nome da tecla (Ctrl+C para sair).")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			key, err := selectKey(l, line)
			if err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			if err := d.Dispatch(key.Return); err != nil {
				fmt.Fprintln(stdout, "Erro ao enviar:", (&dispatch.SendError{Label: key.Name, Spec: key.Return, Err: err}).Error())
				continue
			}
			logger.Info("Sent", "key", key.Name)
		}
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
