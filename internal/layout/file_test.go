package layout

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const legacyLayout = `{
  "layout": "Caixa",
  "janela_alvo": "TigerVNC",
  "teclas": [
    {"nome": "Finalizar", "retorno": "ENTER", "cor": "#28a745", "descricao": "Fecha a venda"},
    {"retorno": "ESC[13~"}
  ]
}`

func TestLoadLegacyJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "caixa.json")
	if err := os.WriteFile(path, []byte(legacyLayout), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if l.Name != "Caixa" || l.TargetWindow != "TigerVNC" {
		t.Fatalf("Load() = %+v", l)
	}
	if l.RowCount() != 3 || l.ColumnCount() != 4 {
		t.Fatalf("dimensions = %dx%d, want defaults", l.RowCount(), l.ColumnCount())
	}
	if len(l.Keys) != 2 || l.Keys[1].DisplayName() != "—" || l.Keys[1].DisplayColor() != "#dddddd" {
		t.Fatalf("keys = %+v", l.Keys)
	}
}

func TestSaveJSONKeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caixa.json")
	const withExtras = `{
  "versao": 2,
  "layout": "Caixa",
  "linhas": "2",
  "colunas": " 5 ",
  "teclas": [
    {"nome": "Total", "retorno": "F10", "atalho": {"tecla": "t"}},
    {"nome": "Sair", "retorno": "ESC"}
  ]
}`
	if err := os.WriteFile(path, []byte(withExtras), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if l.Rows != 2 || l.Columns != 5 {
		t.Fatalf("dimensions = %dx%d, want 2x5", l.Rows, l.Columns)
	}
	if err := l.Update(0, Key{Name: "Subtotal"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := Save(path, l); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(data)
	for _, want := range []string{`"versao": 2`, `"atalho": {`, `"tecla": "t"`, `"nome": "Subtotal"`, `"linhas": 2`, `"colunas": 5`} {
		if !strings.Contains(text, want) {
			t.Fatalf("saved file missing %s:\n%s", want, text)
		}
	}
	for _, unwanted := range []string{`"cor"`, `"descricao"`} {
		if strings.Contains(text, unwanted) {
			t.Fatalf("saved file gained empty %s:\n%s", unwanted, text)
		}
	}
	if strings.Index(text, `"layout"`) > strings.Index(text, `"versao"`) {
		t.Fatalf("known fields should come first:\n%s", text)
	}
}

func TestLoadAcceptsQuotedDimensions(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json": `{"layout": "A", "linhas": "3", "colunas": 6, "teclas": []}`,
		"b.yaml": "layout: B\nlinhas: \"3\"\ncolunas: 6\nteclas: []\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		l, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		if l.Rows != 3 || l.Columns != 6 {
			t.Fatalf("Load(%s) dimensions = %dx%d, want 3x6", name, l.Rows, l.Columns)
		}
	}

	bad := filepath.Join(dir, "c.json")
	_ = os.WriteFile(bad, []byte(`{"linhas": "tres"}`), 0o644)
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected error for non-numeric linhas")
	}
}

func TestSaveYAMLKeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balcao.yaml")
	body := "layout: Balcao\ntema: escuro\nteclas:\n  - nome: OK\n    retorno: ENTER\n    som: bip\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := Save(path, l); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(data)
	for _, want := range []string{"tema: escuro", "som: bip", "nome: OK"} {
		if !strings.Contains(text, want) {
			t.Fatalf("saved file missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "cor:") || strings.Contains(text, "descricao:") {
		t.Fatalf("saved file gained empty fields:\n%s", text)
	}
}

func TestSaveJSONKeepsNonASCII(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdv.json")
	l := &Layout{Name: "Operação", Keys: []Key{{Name: "Ação", Return: "<ENTER>&", Color: "#fff"}}}

	if err := Save(path, l); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(data)
	for _, want := range []string{`"layout": "Operação"`, `"nome": "Ação"`, `"retorno": "<ENTER>&"`, `"linhas": 3`, `"colunas": 4`} {
		if !strings.Contains(text, want) {
			t.Fatalf("saved file missing %s:\n%s", want, text)
		}
	}
	if !strings.HasSuffix(text, "}\n") {
		t.Fatalf("saved file should end with newline")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(back.Keys, l.Keys) {
		t.Fatalf("Keys = %+v, want %+v", back.Keys, l.Keys)
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "balcao.yaml")
	l := Default()

	if err := Save(path, l); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "janela_alvo: vnc") {
		t.Fatalf("yaml output missing janela_alvo:\n%s", data)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(back, l) {
		t.Fatalf("Load() = %+v, want %+v", back, l)
	}
}

func TestSaveRejectsInvalidLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := Save(path, &Layout{Rows: 20}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("invalid layout should not be written")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("Load(missing) error = %v", err)
	}

	txt := filepath.Join(dir, "notes.txt")
	_ = os.WriteFile(txt, []byte("x"), 0o644)
	if _, err := Load(txt); err == nil {
		t.Fatalf("expected unsupported format error")
	}

	broken := filepath.Join(dir, "broken.json")
	_ = os.WriteFile(broken, []byte("{"), 0o644)
	if _, err := Load(broken); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestListAndEnsureDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "layouts")

	names, err := EnsureDefault(dir)
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}
	if !reflect.DeepEqual(names, []string{DefaultLayoutName}) {
		t.Fatalf("EnsureDefault() = %v", names)
	}

	_ = os.WriteFile(filepath.Join(dir, "a.yml"), []byte("layout: A\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "readme.md"), []byte("#"), 0o644)
	_ = os.Mkdir(filepath.Join(dir, "sub.json"), 0o755)

	names, err = List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"a.yml", DefaultLayoutName}; !reflect.DeepEqual(names, want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}

	names, err = EnsureDefault(dir)
	if err != nil || len(names) != 2 {
		t.Fatalf("EnsureDefault() on populated dir = %v, %v", names, err)
	}
}

func TestWatcherReportsChangedLayout(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 8)
	w, err := NewWatcher(dir, 20*time.Millisecond, func(name string) { changed <- name }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := Save(filepath.Join(dir, "novo.json"), Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)

	select {
	case name := <-changed:
		if name != "novo.json" {
			t.Fatalf("changed = %q, want novo.json", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for watcher callback")
	}

	select {
	case name := <-changed:
		t.Fatalf("unexpected second callback for %q", name)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 0, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
