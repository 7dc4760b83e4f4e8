package layout

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	DefaultRows    = 3
	DefaultColumns = 4
	MinDimension   = 1
	MaxDimension   = 10

	DefaultKeyName     = "—"
	DefaultKeyColor    = "#dddddd"
	DefaultEditorColor = "#007bff"
	DefaultLayoutName  = "pdv_principal.json"
)

var ErrIndexOutOfRange = errors.New("key index out of range")

// Key is one programmable button. It is encoded as nome, retorno, cor and
// descricao, the field names written by earlier versions of the tool; see
// codec.go.
type Key struct {
	Name        string
	Return      string
	Color       string
	Description string

	extra *extraFields
}

func (k Key) DisplayName() string {
	if k.Name == "" {
		return DefaultKeyName
	}
	return k.Name
}

func (k Key) DisplayColor() string {
	if k.Color == "" {
		return DefaultKeyColor
	}
	return k.Color
}

// ListLabel is the one-line summary shown in the editor list.
func (k Key) ListLabel() string {
	return fmt.Sprintf("%s  →  %s (%s)", k.Name, k.Return, k.Description)
}

// Layout is encoded as layout, janela_alvo, linhas, colunas and teclas.
// Members it does not know are kept and written back on save.
type Layout struct {
	Name         string
	TargetWindow string
	Rows         int
	Columns      int
	Keys         []Key

	extra *extraFields
}

func (l *Layout) RowCount() int {
	if l.Rows <= 0 {
		return DefaultRows
	}
	return l.Rows
}

func (l *Layout) ColumnCount() int {
	if l.Columns <= 0 {
		return DefaultColumns
	}
	return l.Columns
}

// Title is the editor heading value.
func (l *Layout) Title() string {
	if l.Name == "" {
		return "Sem nome"
	}
	return l.Name
}

func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	out := *l
	out.Keys = append([]Key(nil), l.Keys...)
	return &out
}

// ClampDimension maps a row or column count into the range the editor offers.
// Zero stays zero and means the default.
func ClampDimension(n int) int {
	switch {
	case n == 0:
		return 0
	case n < MinDimension:
		return MinDimension
	case n > MaxDimension:
		return MaxDimension
	}
	return n
}

func (l *Layout) Validate() error {
	if l.Rows != 0 && (l.Rows < MinDimension || l.Rows > MaxDimension) {
		return fmt.Errorf("linhas must be between %d and %d, got %d", MinDimension, MaxDimension, l.Rows)
	}
	if l.Columns != 0 && (l.Columns < MinDimension || l.Columns > MaxDimension) {
		return fmt.Errorf("colunas must be between %d and %d, got %d", MinDimension, MaxDimension, l.Columns)
	}
	for i, k := range l.Keys {
		if k.Color == "" {
			continue
		}
		if _, err := ParseColor(k.Color); err != nil {
			return fmt.Errorf("tecla %d: %w", i+1, err)
		}
	}
	return nil
}

// Add appends a key, filling the editor default color when none was picked.
// Name and return are required for new keys.
func (l *Layout) Add(k Key) error {
	if strings.TrimSpace(k.Name) == "" {
		return errors.New("nome is empty")
	}
	if k.Return == "" {
		return errors.New("retorno is empty")
	}
	if k.Color == "" {
		k.Color = DefaultEditorColor
	}
	if _, err := ParseColor(k.Color); err != nil {
		return err
	}
	l.Keys = append(l.Keys, k)
	return nil
}

// Update merges k into the key at index i. Empty name, return and color keep
// the previous values; the description is always replaced.
func (l *Layout) Update(i int, k Key) error {
	if i < 0 || i >= len(l.Keys) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	prev := l.Keys[i]
	if k.Name == "" {
		k.Name = prev.Name
	}
	if k.Return == "" {
		k.Return = prev.Return
	}
	if k.Color == "" {
		k.Color = prev.Color
	}
	if k.Color != "" {
		if _, err := ParseColor(k.Color); err != nil {
			return err
		}
	}
	k.extra = prev.extra
	l.Keys[i] = k
	return nil
}

func (l *Layout) Remove(i int) (Key, error) {
	if i < 0 || i >= len(l.Keys) {
		return Key{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	removed := l.Keys[i]
	l.Keys = append(l.Keys[:i], l.Keys[i+1:]...)
	return removed, nil
}

// ParseColor accepts "#rgb" and "#rrggbb".
func ParseColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// FormatColor renders c as "#rrggbb", dropping alpha.
func FormatColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Default is the starter layout written into an empty layouts directory.
func Default() *Layout {
	return &Layout{
		Name:         "PDV Principal",
		TargetWindow: "vnc",
		Rows:         DefaultRows,
		Columns:      DefaultColumns,
		Keys: []Key{
			{Name: "Finalizar", Return: "ENTER", Color: "#28a745", Description: "Confirma a operação atual"},
			{Name: "Cancelar", Return: "ESC", Color: "#dc3545", Description: "Cancela a operação atual"},
			{Name: "Buscar", Return: "CTRL+F", Color: "#007bff", Description: "Abre a busca de produtos"},
			{Name: "Subtotal", Return: "F2", Color: "#6f42c1", Description: "Mostra o subtotal da venda"},
			{Name: "Desconto", Return: "F5", Color: "#fd7e14", Description: "Aplica desconto no item"},
			{Name: "Sangria", Return: "F8", Color: "#17a2b8", Description: "Registra sangria de caixa"},
			{Name: "Próximo campo", Return: "TAB", Color: "#6c757d", Description: "Avança para o próximo campo"},
			{Name: "Apagar", Return: "BACKSPACE", Color: "#343a40", Description: "Apaga o último caractere"},
		},
	}
}
