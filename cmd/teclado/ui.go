package main

import (
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/core/dispatch"
	"github.com/aleleonardi/teclado-virutal-programavel/internal/layout"
)

const hintText = "Passe o mouse sobre uma tecla para ver a descrição | Clique para enviar o retorno à janela alvo"

type tecladoTheme struct {
	base fyne.Theme
}

func newTecladoTheme() fyne.Theme {
	return &tecladoTheme{base: theme.DarkTheme()}
}

func (t *tecladoTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
	case theme.ColorNameHeaderBackground:
		return color.NRGBA{R: 0x25, G: 0x25, B: 0x26, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x2d, G: 0x2d, B: 0x30, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x25, G: 0x25, B: 0x26, A: 0xff}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return color.NRGBA{R: 0x3c, G: 0x3c, B: 0x3c, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{R: 0x00, G: 0x7b, B: 0xff, A: 0xff}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0x33, G: 0x95, B: 0xff, A: 0x66}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0x33, G: 0x95, B: 0xff, A: 0x22}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x00, G: 0x7b, B: 0xff, A: 0x44}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	case theme.ColorNamePlaceHolder:
		return color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x82, A: 0xff}
	}
	return t.base.Color(name, variant)
}

func (t *tecladoTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *tecladoTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *tecladoTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding, theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInputRadius:
		return 6
	}
	return t.base.Size(name)
}

func runUI(baseCfg config) error {
	fApp := app.New()
	fApp.Settings().SetTheme(newTecladoTheme())

	window := fApp.NewWindow("Teclado Virtual Programável")

	settingsLoadWarning := ""
	layoutName := baseCfg.layoutName
	winSize := fyne.NewSize(640, 420)
	stored, err := loadUISettings()
	if err != nil {
		settingsLoadWarning = fmt.Sprintf("Failed to load saved settings: %v", err)
	} else if stored != nil {
		if stored.Layout != "" && baseCfg.layoutName == layout.DefaultLayoutName {
			layoutName = stored.Layout
		}
		if stored.Width > 0 && stored.Height > 0 {
			winSize = fyne.NewSize(stored.Width, stored.Height)
		}
	}
	window.Resize(winSize)
	window.CenterOnScreen()

	logGrid := widget.NewTextGrid()
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 120))

	const maxUILogLines = 50
	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	debugLogs := debugLogsEnabled()
	appendLogLine := func(line string) {
		if !debugLogs {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}
	logger := newSlogLogger(baseCfg.logLevel, appendLogLine)
	if settingsLoadWarning != "" {
		logger.Warn(settingsLoadWarning)
	}

	names, err := layout.EnsureDefault(baseCfg.layoutsDir)
	if err != nil {
		return err
	}
	if !slices.Contains(names, layoutName) {
		layoutName = names[0]
	}

	var (
		stateMu    sync.Mutex
		dispatcher *dispatch.Dispatcher
		backendErr error
		current    *layout.Layout
	)

	statusText := canvas.NewText("Iniciando backend de entrada...", theme.Color(theme.ColorNamePlaceHolder))
	descLabel := widget.NewLabel("")
	descLabel.TextStyle = fyne.TextStyle{Italic: true}
	descLabel.Alignment = fyne.TextAlignCenter
	hintLabel := widget.NewLabel(hintText)
	hintLabel.Alignment = fyne.TextAlignCenter
	hintLabel.Wrapping = fyne.TextWrapWord

	showSendError := func(key layout.Key, err error) {
		sendErr := &dispatch.SendError{Label: key.Name, Spec: key.Return, Err: err}
		logger.Error("Send failed", "key", key.Name, "err", err)
		fyne.Do(func() {
			dialog.ShowInformation("Erro ao enviar", sendErr.Error(), window)
		})
	}

	sendKey := func(key layout.Key) {
		stateMu.Lock()
		d, initErr := dispatcher, backendErr
		stateMu.Unlock()

		if d == nil {
			if initErr == nil {
				initErr = fmt.Errorf("input backend is still starting")
			}
			showSendError(key, initErr)
			return
		}
		go func() {
			if err := d.Dispatch(key.Return); err != nil {
				showSendError(key, err)
				return
			}
			logger.Info("Sent", "key", key.Name)
		}()
	}

	onHover := func(key layout.Key, inside bool) {
		if inside {
			descLabel.SetText(key.Description)
			return
		}
		descLabel.SetText("")
	}

	board := container.NewStack()
	renderBoard := func(l *layout.Layout) {
		cells := layout.Grid(l)
		objs := make([]fyne.CanvasObject, 0, len(cells))
		for _, cell := range cells {
			if cell.Index < 0 {
				objs = append(objs, canvas.NewRectangle(color.Transparent))
				continue
			}
			objs = append(objs, newKeyButton(l.Keys[cell.Index], sendKey, onHover))
		}
		board.Objects = []fyne.CanvasObject{container.NewGridWithColumns(l.ColumnCount(), objs...)}
		board.Refresh()
	}

	applyLayout := func(name string, l *layout.Layout) {
		stateMu.Lock()
		layoutName = name
		current = l
		d := dispatcher
		stateMu.Unlock()
		if d != nil {
			d.SetMarkers(baseCfg.targetMarkers(l))
		}
		renderBoard(l)
	}

	loadLayout := func(name string) {
		l, err := layout.Load(filepath.Join(baseCfg.layoutsDir, name))
		if err != nil {
			logger.Error("Failed to load layout", "name", name, "err", err)
			dialog.ShowError(err, window)
			return
		}
		applyLayout(name, l)
	}

	picker := widget.NewSelect(names, func(name string) {
		stateMu.Lock()
		same := name == layoutName && current != nil
		stateMu.Unlock()
		if !same {
			loadLayout(name)
		}
	})

	persistUISettings := func() {
		stateMu.Lock()
		name := layoutName
		stateMu.Unlock()
		size := window.Canvas().Size()
		if err := saveUISettings(uiSettings{Layout: name, Width: size.Width, Height: size.Height}); err != nil {
			logger.Warn("Failed to save settings", "err", err)
		}
	}

	testBtn := widget.NewButton("Teste retorno", func() {
		dialog.ShowInformation("Teste", "Foque a janela alvo e clique em uma tecla para ver o retorno digitado.", window)
	})
	editBtn := widget.NewButton("Editar Layout", func() {
		stateMu.Lock()
		name, l := layoutName, current
		stateMu.Unlock()
		if l == nil {
			return
		}
		openEditor(fApp, window, baseCfg.layoutsDir, name, l, func(saved *layout.Layout) {
			applyLayout(name, saved)
		})
	})
	editBtn.Importance = widget.HighImportance

	watcher, err := layout.NewWatcher(baseCfg.layoutsDir, layout.DefaultDebounce,
		func(name string) {
			fyne.Do(func() {
				list, err := layout.List(baseCfg.layoutsDir)
				if err != nil {
					logger.Warn("Failed to list layouts", "err", err)
					return
				}
				picker.SetOptions(list)

				stateMu.Lock()
				active := layoutName
				stateMu.Unlock()
				if name != active {
					return
				}
				if l, err := layout.Load(filepath.Join(baseCfg.layoutsDir, name)); err == nil {
					logger.Info("Layout reloaded", "name", name)
					applyLayout(name, l)
				}
			})
		},
		func(err error) {
			logger.Warn("Layout watcher", "err", err)
		},
	)
	if err != nil {
		logger.Warn("Layout watcher disabled", "err", err)
	}

	go func() {
		d, err := newDispatcher(baseCfg, logger)
		stateMu.Lock()
		dispatcher, backendErr = d, err
		l := current
		stateMu.Unlock()
		if d != nil {
			d.SetMarkers(baseCfg.targetMarkers(l))
		}

		fyne.Do(func() {
			switch {
			case err == nil:
				statusText.Text = ""
			case isPermissionError(err):
				statusText.Text = permissionDeniedHint()
				statusText.Color = theme.Color(theme.ColorNameError)
			default:
				statusText.Text = err.Error()
				statusText.Color = theme.Color(theme.ColorNameError)
			}
			statusText.Refresh()
		})
		if err != nil {
			logger.Error("Input backend unavailable", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			if watcher != nil {
				_ = watcher.Close()
			}
			stateMu.Lock()
			d := dispatcher
			stateMu.Unlock()
			if d != nil {
				_ = d.Close()
			}
		})
	}

	requestQuit := func() {
		fyne.Do(func() {
			persistUISettings()
			cleanup()
			if currentApp := fyne.CurrentApp(); currentApp != nil {
				currentApp.Quit()
				return
			}
			window.SetCloseIntercept(nil)
			window.Close()
		})
	}

	go func() {
		<-sigCh
		requestQuit()
	}()

	// Some GUI backends can leave Ctrl+C as raw ETX byte instead of SIGINT.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && buf[0] == 3 {
				requestQuit()
				return
			}
		}
	}()

	window.SetCloseIntercept(func() {
		persistUISettings()
		cleanup()
		if currentApp := fyne.CurrentApp(); currentApp != nil {
			currentApp.Quit()
			return
		}
		window.SetCloseIntercept(nil)
		window.Close()
	})

	header := container.NewBorder(nil, nil, widget.NewLabel("Layout:"), container.NewHBox(testBtn, editBtn), picker)
	footer := container.NewVBox(widget.NewSeparator(), descLabel, hintLabel, statusText)
	mainPanel := container.NewPadded(container.NewBorder(header, footer, nil, nil, board))

	var rootContent fyne.CanvasObject = mainPanel
	if debugLogs {
		logsCard := widget.NewCard("Logs", "", logScroll)
		split := container.NewVSplit(mainPanel, logsCard)
		split.SetOffset(0.75)
		rootContent = split
	}

	picker.SetSelected(layoutName)
	window.SetContent(rootContent)
	window.ShowAndRun()
	cleanup()
	return nil
}
