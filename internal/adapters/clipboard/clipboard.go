// Package clipboard writes text to the system clipboard for paste-based
// dispatch of long literals.
package clipboard

import (
	"fmt"
	"sync"

	xclipboard "golang.design/x/clipboard"
)

type Writer struct {
	initOnce sync.Once
	initErr  error
	init     func() error
	write    func(text string)
}

func New() *Writer {
	return &Writer{
		init: xclipboard.Init,
		write: func(text string) {
			xclipboard.Write(xclipboard.FmtText, []byte(text))
		},
	}
}

// Available initialises the clipboard on first use and reports whether it
// can be written.
func (w *Writer) Available() error {
	w.initOnce.Do(func() {
		if err := w.init(); err != nil {
			w.initErr = fmt.Errorf("clipboard unavailable: %w", err)
		}
	})
	return w.initErr
}

func (w *Writer) WriteText(text string) error {
	if err := w.Available(); err != nil {
		return err
	}
	w.write(text)
	return nil
}
