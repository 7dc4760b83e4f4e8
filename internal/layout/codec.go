package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// extraFields keeps the members of a layout or key object that this program
// does not know, so Save writes them back untouched.
type extraFields struct {
	json map[string]json.RawMessage
	yaml []*yaml.Node // key/value pairs in file order
}

func (e *extraFields) empty() bool {
	return e == nil || (len(e.json) == 0 && len(e.yaml) == 0)
}

// field is one known member of an encoded object.
type field struct {
	name      string
	value     any
	omitEmpty bool
}

func (f field) skip() bool {
	s, ok := f.value.(string)
	return f.omitEmpty && ok && s == ""
}

var (
	layoutFields = []string{"layout", "janela_alvo", "linhas", "colunas", "teclas"}
	keyFields    = []string{"nome", "retorno", "cor", "descricao"}
)

func (l Layout) fields() []field {
	return []field{
		{name: "layout", value: l.Name},
		{name: "janela_alvo", value: l.TargetWindow},
		{name: "linhas", value: l.Rows},
		{name: "colunas", value: l.Columns},
		{name: "teclas", value: l.Keys},
	}
}

func (k Key) fields() []field {
	return []field{
		{name: "nome", value: k.Name},
		{name: "retorno", value: k.Return},
		{name: "cor", value: k.Color, omitEmpty: true},
		{name: "descricao", value: k.Description, omitEmpty: true},
	}
}

func (l *Layout) assign(name string, decode func(any) error) error {
	switch name {
	case "layout":
		return decode(&l.Name)
	case "janela_alvo":
		return decode(&l.TargetWindow)
	case "linhas":
		return decodeDimension(decode, &l.Rows)
	case "colunas":
		return decodeDimension(decode, &l.Columns)
	case "teclas":
		return decode(&l.Keys)
	}
	return nil
}

func (k *Key) assign(name string, decode func(any) error) error {
	switch name {
	case "nome":
		return decode(&k.Name)
	case "retorno":
		return decode(&k.Return)
	case "cor":
		return decode(&k.Color)
	case "descricao":
		return decode(&k.Description)
	}
	return nil
}

// decodeDimension accepts numbers and numeric strings ("3", 3, 3.0) the way
// hand-edited files write them.
func decodeDimension(decode func(any) error, dst *int) error {
	var raw any
	if err := decode(&raw); err != nil {
		return err
	}
	n, err := parseDimensionValue(raw)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseDimensionValue(raw any) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("invalid dimension %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid dimension %q", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("invalid dimension %v", raw)
}

func unmarshalObjectJSON(data []byte, known []string, assign func(string, func(any) error) error) (*extraFields, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	extra := &extraFields{}
	for name, raw := range members {
		if !slices.Contains(known, name) {
			if extra.json == nil {
				extra.json = map[string]json.RawMessage{}
			}
			extra.json[name] = raw
			continue
		}
		if err := assign(name, func(dst any) error { return json.Unmarshal(raw, dst) }); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if extra.empty() {
		return nil, nil
	}
	return extra, nil
}

// marshalObjectJSON writes the known fields in file order, then the unknown ones
// sorted by name. HTML characters are left unescaped.
func marshalObjectJSON(fields []field, extra *extraFields) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	member := func(name string, raw []byte) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := encodeJSONValue(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(raw)
		return nil
	}
	for _, f := range fields {
		if f.skip() {
			continue
		}
		raw, err := encodeJSONValue(f.value)
		if err != nil {
			return nil, err
		}
		if err := member(f.name, raw); err != nil {
			return nil, err
		}
	}
	if extra != nil {
		names := make([]string, 0, len(extra.json))
		for name := range extra.json {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := member(name, extra.json[name]); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSONValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func unmarshalObjectYAML(node *yaml.Node, known []string, assign func(string, func(any) error) error) (*extraFields, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	extra := &extraFields{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if !slices.Contains(known, key.Value) {
			extra.yaml = append(extra.yaml, key, value)
			continue
		}
		if err := assign(key.Value, value.Decode); err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
	}
	if extra.empty() {
		return nil, nil
	}
	return extra, nil
}

func marshalObjectYAML(fields []field, extra *extraFields) (*yaml.Node, error) {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range fields {
		if f.skip() {
			continue
		}
		value := &yaml.Node{}
		if err := value.Encode(f.value); err != nil {
			return nil, err
		}
		out.Content = append(out.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.name}, value)
	}
	if extra != nil {
		out.Content = append(out.Content, extra.yaml...)
	}
	return out, nil
}

func (l *Layout) UnmarshalJSON(data []byte) error {
	var decoded Layout
	extra, err := unmarshalObjectJSON(data, layoutFields, decoded.assign)
	if err != nil {
		return err
	}
	decoded.extra = extra
	*l = decoded
	return nil
}

func (l Layout) MarshalJSON() ([]byte, error) {
	return marshalObjectJSON(l.fields(), l.extra)
}

func (l *Layout) UnmarshalYAML(node *yaml.Node) error {
	var decoded Layout
	extra, err := unmarshalObjectYAML(node, layoutFields, decoded.assign)
	if err != nil {
		return err
	}
	decoded.extra = extra
	*l = decoded
	return nil
}

func (l Layout) MarshalYAML() (any, error) {
	return marshalObjectYAML(l.fields(), l.extra)
}

func (k *Key) UnmarshalJSON(data []byte) error {
	var decoded Key
	extra, err := unmarshalObjectJSON(data, keyFields, decoded.assign)
	if err != nil {
		return err
	}
	decoded.extra = extra
	*k = decoded
	return nil
}

func (k Key) MarshalJSON() ([]byte, error) {
	return marshalObjectJSON(k.fields(), k.extra)
}

func (k *Key) UnmarshalYAML(node *yaml.Node) error {
	var decoded Key
	extra, err := unmarshalObjectYAML(node, keyFields, decoded.assign)
	if err != nil {
		return err
	}
	decoded.extra = extra
	*k = decoded
	return nil
}

func (k Key) MarshalYAML() (any, error) {
	return marshalObjectYAML(k.fields(), k.extra)
}
