package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/aleleonardi/teclado-virutal-programavel/internal/layout"
)

func dimensionOptions() []string {
	opts := make([]string, 0, layout.MaxDimension-layout.MinDimension+1)
	for n := layout.MinDimension; n <= layout.MaxDimension; n++ {
		opts = append(opts, strconv.Itoa(n))
	}
	return opts
}

func parseDimension(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < layout.MinDimension || n > layout.MaxDimension {
		return fallback
	}
	return n
}

// keyFormEntries returns the three prompts shared by add and edit.
func keyFormEntries(name, ret, desc string) (*widget.Entry, *widget.Entry, *widget.Entry) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(name)
	retEntry := widget.NewEntry()
	retEntry.SetText(ret)
	retEntry.SetPlaceHolder("ESC[13~ ou CTRL+F")
	descEntry := widget.NewEntry()
	descEntry.SetText(desc)
	return nameEntry, retEntry, descEntry
}

// colorField is a form row that opens the colour picker. Dismissing the
// picker keeps the current value.
type colorField struct {
	value   string
	changed bool
	swatch  *canvas.Rectangle
	button  *widget.Button
}

func newColorField(title, initial string, parent fyne.Window) *colorField {
	f := &colorField{value: initial}
	fill, err := layout.ParseColor(initial)
	if err != nil {
		fill, _ = layout.ParseColor(layout.DefaultKeyColor)
	}
	f.swatch = canvas.NewRectangle(fill)
	f.swatch.SetMinSize(fyne.NewSize(28, 28))
	f.button = widget.NewButton(initial, func() {
		picker := dialog.NewColorPicker(title, "", func(c color.Color) {
			f.value = layout.FormatColor(c)
			f.changed = true
			f.swatch.FillColor = c
			f.swatch.Refresh()
			f.button.SetText(f.value)
		}, parent)
		picker.Advanced = true
		if c, err := layout.ParseColor(f.value); err == nil {
			picker.SetColor(c)
		}
		picker.Show()
	})
	return f
}

func (f *colorField) row() fyne.CanvasObject {
	return container.NewBorder(nil, nil, f.swatch, nil, f.button)
}

// openEditor edits a copy of current in its own window. onSaved receives the
// saved layout after it has been written to dir/name.
func openEditor(fApp fyne.App, parent fyne.Window, dir, name string, current *layout.Layout, onSaved func(*layout.Layout)) {
	working := current.Clone()

	w := fApp.NewWindow("Editor de Layout")
	w.Resize(fyne.NewSize(720, 520))

	header := widget.NewLabel("Editando: " + working.Title())
	header.TextStyle = fyne.TextStyle{Bold: true}

	target := widget.NewEntry()
	target.SetText(working.TargetWindow)

	// Older files may carry counts the selects do not offer.
	rowCount := layout.ClampDimension(working.RowCount())
	colCount := layout.ClampDimension(working.ColumnCount())
	rows := widget.NewSelect(dimensionOptions(), nil)
	rows.SetSelected(strconv.Itoa(rowCount))
	cols := widget.NewSelect(dimensionOptions(), nil)
	cols.SetSelected(strconv.Itoa(colCount))

	selected := -1
	keys := widget.NewList(
		func() int { return len(working.Keys) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(working.Keys) {
				obj.(*widget.Label).SetText(working.Keys[id].ListLabel())
			}
		},
	)
	keys.OnSelected = func(id widget.ListItemID) { selected = id }
	keys.OnUnselected = func(widget.ListItemID) { selected = -1 }

	refresh := func() {
		keys.UnselectAll()
		selected = -1
		keys.Refresh()
	}

	addBtn := widget.NewButton("➕ Adicionar", func() {
		nameEntry, retEntry, descEntry := keyFormEntries("", "", "")
		colorIn := newColorField("Escolher cor da tecla", layout.DefaultEditorColor, w)
		items := []*widget.FormItem{
			widget.NewFormItem("Nome da tecla:", nameEntry),
			widget.NewFormItem("Retorno (ex.: ESC[13~ ou CTRL+F):", retEntry),
			widget.NewFormItem("Descrição da função:", descEntry),
			widget.NewFormItem("Cor:", colorIn.row()),
		}
		dialog.ShowForm("Nova tecla", "OK", "Cancelar", items, func(ok bool) {
			if !ok || nameEntry.Text == "" || retEntry.Text == "" {
				return
			}
			key := layout.Key{Name: nameEntry.Text, Return: retEntry.Text, Color: colorIn.value, Description: descEntry.Text}
			if err := working.Add(key); err != nil {
				dialog.ShowError(err, w)
				return
			}
			refresh()
		}, w)
	})

	editBtn := widget.NewButton("✏️ Editar", func() {
		if selected < 0 || selected >= len(working.Keys) {
			dialog.ShowInformation("Aviso", "Selecione uma tecla.", w)
			return
		}
		idx := selected
		old := working.Keys[idx]
		nameEntry, retEntry, descEntry := keyFormEntries(old.Name, old.Return, old.Description)
		colorIn := newColorField("Escolher nova cor", old.DisplayColor(), w)
		items := []*widget.FormItem{
			widget.NewFormItem("Novo nome:", nameEntry),
			widget.NewFormItem("Novo retorno:", retEntry),
			widget.NewFormItem("Nova descrição:", descEntry),
			widget.NewFormItem("Cor:", colorIn.row()),
		}
		dialog.ShowForm("Editar tecla", "OK", "Cancelar", items, func(ok bool) {
			if !ok {
				return
			}
			key := layout.Key{Name: nameEntry.Text, Return: retEntry.Text, Description: descEntry.Text}
			if colorIn.changed {
				key.Color = colorIn.value
			}
			if err := working.Update(idx, key); err != nil {
				dialog.ShowError(err, w)
				return
			}
			refresh()
		}, w)
	})

	deleteBtn := widget.NewButton("🗑️ Excluir", func() {
		if selected < 0 || selected >= len(working.Keys) {
			dialog.ShowInformation("Aviso", "Selecione uma tecla.", w)
			return
		}
		idx := selected
		dialog.ShowConfirm("Excluir", fmt.Sprintf("Deseja excluir '%s'?", working.Keys[idx].Name), func(ok bool) {
			if !ok {
				return
			}
			if _, err := working.Remove(idx); err != nil {
				dialog.ShowError(err, w)
				return
			}
			refresh()
		}, w)
	})

	saveBtn := widget.NewButton("💾 Salvar", func() {
		working.TargetWindow = target.Text
		working.Rows = parseDimension(rows.Selected, rowCount)
		working.Columns = parseDimension(cols.Selected, colCount)
		if err := layout.Save(filepath.Join(dir, name), working); err != nil {
			dialog.ShowError(err, w)
			return
		}
		if onSaved != nil {
			onSaved(working.Clone())
		}
		w.Close()
		dialog.ShowInformation("Salvo", "Layout atualizado com sucesso!", parent)
	})
	saveBtn.Importance = widget.HighImportance

	form := widget.NewForm(
		widget.NewFormItem("Janela Alvo:", target),
		widget.NewFormItem("Linhas:", rows),
		widget.NewFormItem("Colunas:", cols),
	)
	top := container.NewVBox(header, form)
	actions := container.NewGridWithColumns(4, addBtn, editBtn, deleteBtn, saveBtn)
	w.SetContent(container.NewPadded(container.NewBorder(top, actions, nil, nil, widget.NewCard("Teclas", "", keys))))
	w.Show()
}
