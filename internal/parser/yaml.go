package parser

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Map is a decoded YAML mapping that remembers key order, so components are
// reported in the order the author wrote them.
type Map struct {
	keys   []string
	values map[string]any
}

func newMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Keys returns the mapping keys in document order.
func (m *Map) Keys() []string { return m.keys }

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present, even with a null value.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *Map) set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// plain converts the mapping into ordinary Go maps and slices, for custom
// field bags that leave the parser.
func (m *Map) plain() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = plainValue(m.values[k])
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.plain()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

// LoadFile reads and decodes a harness YAML file. Anchors, aliases and
// merge keys are resolved.
func LoadFile(path string) (*Map, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ParserError{Message: "file not found", Path: path, Err: err}
		}
		return nil, &ParserError{Message: "cannot read file", Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &ParserError{Message: "not a file", Path: path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParserError{Message: "cannot read file", Path: path, Err: err}
	}
	root, err := Decode(data)
	if err != nil {
		var perr *ParserError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return root, nil
}

// Decode parses YAML bytes whose root must be a mapping.
func Decode(data []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParserError{Message: fmt.Sprintf("invalid YAML syntax: %v", err), Err: err}
	}
	v, err := decodeNode(&doc)
	if err != nil {
		return nil, &ParserError{Message: fmt.Sprintf("invalid YAML: %v", err), Err: err}
	}
	if v == nil {
		return nil, &ParserError{Message: "empty YAML file"}
	}
	root, ok := v.(*Map)
	if !ok {
		return nil, &ParserError{Message: "YAML root must be a mapping"}
	}
	return root, nil
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeNode(n.Content[0])
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return decodeMapping(n)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

// decodeMapping applies "<<" merge keys after the explicit keys, so explicit
// keys win and earlier merge sources win over later ones.
func decodeMapping(n *yaml.Node) (*Map, error) {
	m := newMap()
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Tag == "!!merge" || k.Value == "<<" {
			merges = append(merges, v)
			continue
		}
		val, err := decodeNode(v)
		if err != nil {
			return nil, err
		}
		m.set(k.Value, val)
	}

	for _, src := range merges {
		if src.Kind == yaml.AliasNode {
			src = src.Alias
		}
		var sources []*yaml.Node
		switch src.Kind {
		case yaml.MappingNode:
			sources = []*yaml.Node{src}
		case yaml.SequenceNode:
			sources = src.Content
		default:
			return nil, fmt.Errorf("line %d: merge value must be a mapping", src.Line)
		}
		for _, s := range sources {
			v, err := decodeNode(s)
			if err != nil {
				return nil, err
			}
			sm, ok := v.(*Map)
			if !ok {
				return nil, fmt.Errorf("line %d: merge value must be a mapping", s.Line)
			}
			for _, k := range sm.keys {
				if !m.Has(k) {
					m.set(k, sm.values[k])
				}
			}
		}
	}
	return m, nil
}
