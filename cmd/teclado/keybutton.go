package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/layout"
)

var keyLabelColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// keyButton is one cell of the virtual keyboard: a coloured tile that sends
// its return on tap and shows its description while hovered.
type keyButton struct {
	widget.BaseWidget

	key     layout.Key
	fill    color.Color
	onTap   func(layout.Key)
	onHover func(layout.Key, bool)

	bg      *canvas.Rectangle
	tooltip *widget.PopUp
}

var (
	_ fyne.Tappable     = (*keyButton)(nil)
	_ desktop.Hoverable = (*keyButton)(nil)
)

func newKeyButton(key layout.Key, onTap func(layout.Key), onHover func(layout.Key, bool)) *keyButton {
	fill, err := layout.ParseColor(key.DisplayColor())
	if err != nil {
		fill, _ = layout.ParseColor(layout.DefaultKeyColor)
	}
	b := &keyButton{key: key, fill: fill, onTap: onTap, onHover: onHover}
	b.ExtendBaseWidget(b)
	return b
}

func (b *keyButton) CreateRenderer() fyne.WidgetRenderer {
	b.bg = canvas.NewRectangle(b.fill)
	b.bg.CornerRadius = theme.InputRadiusSize()
	b.bg.SetMinSize(fyne.NewSize(96, 56))

	label := canvas.NewText(b.key.DisplayName(), keyLabelColor)
	label.TextStyle = fyne.TextStyle{Bold: true}
	label.TextSize = 16
	label.Alignment = fyne.TextAlignCenter

	return widget.NewSimpleRenderer(container.NewStack(b.bg, container.NewCenter(label)))
}

func (b *keyButton) Tapped(*fyne.PointEvent) {
	b.hideTooltip()
	if b.onTap != nil {
		b.onTap(b.key)
	}
}

func (b *keyButton) MouseIn(ev *desktop.MouseEvent) {
	if b.bg != nil {
		b.bg.FillColor = highlight(b.fill)
		b.bg.Refresh()
	}
	if b.onHover != nil {
		b.onHover(b.key, true)
	}
	b.showTooltip(ev.AbsolutePosition)
}

func (b *keyButton) MouseMoved(*desktop.MouseEvent) {}

func (b *keyButton) MouseOut() {
	if b.bg != nil {
		b.bg.FillColor = b.fill
		b.bg.Refresh()
	}
	b.hideTooltip()
	if b.onHover != nil {
		b.onHover(b.key, false)
	}
}

func (b *keyButton) showTooltip(at fyne.Position) {
	if b.key.Description == "" {
		return
	}
	c := fyne.CurrentApp().Driver().CanvasForObject(b)
	if c == nil {
		return
	}
	if b.tooltip == nil {
		b.tooltip = widget.NewPopUp(widget.NewLabel(b.key.Description), c)
	}
	b.tooltip.ShowAtPosition(at.Add(fyne.NewPos(12, 16)))
}

func (b *keyButton) hideTooltip() {
	if b.tooltip != nil {
		b.tooltip.Hide()
	}
}

// highlight lightens c for the hover state.
func highlight(c color.Color) color.Color {
	r, g, bl, a := c.RGBA()
	lift := func(v uint32) uint8 {
		v8 := uint8(v >> 8)
		return v8 + (0xff-v8)/5
	}
	return color.NRGBA{R: lift(r), G: lift(g), B: lift(bl), A: uint8(a >> 8)}
}
