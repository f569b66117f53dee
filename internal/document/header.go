// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"bytes"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Header is the ordered field block preceding a document body. Field order
// is preserved exactly as authored; duplicate top-level keys are rejected
// at parse time.
type Header struct {
	keys   []string
	fields map[string]Value
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{fields: make(map[string]Value)}
}

func parseHeader(src []byte) (*Header, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return NewHeader(), nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("header is not a mapping")
	}
	v, err := valueFromNode(top)
	if err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	h := &Header{keys: v.Keys, fields: v.Fields}
	if h.fields == nil {
		h.fields = make(map[string]Value)
	}
	return h, nil
}

// Keys returns the field names in authored order.
func (h *Header) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Has reports whether a top-level field exists.
func (h *Header) Has(name string) bool {
	_, ok := h.fields[name]
	return ok
}

// Get returns a value by dotted path (e.g. "links.superseded_by").
func (h *Header) Get(path string) (Value, bool) {
	parts := strings.Split(path, ".")
	cur, ok := h.fields[parts[0]]
	if !ok {
		return Value{}, false
	}
	for _, part := range parts[1:] {
		if cur.Kind != KindMap {
			return Value{}, false
		}
		cur, ok = cur.Fields[part]
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}

// Set stores a value at a dotted path, creating intermediate mappings as
// needed. Existing field order is preserved; new fields append.
func (h *Header) Set(path string, v Value) {
	parts := strings.Split(path, ".")
	top, exists := h.fields[parts[0]]
	if len(parts) == 1 {
		if !exists {
			h.keys = append(h.keys, parts[0])
		}
		h.fields[parts[0]] = v
		return
	}
	if !exists || top.Kind != KindMap {
		top = Value{Kind: KindMap, Fields: make(map[string]Value)}
		if !exists {
			h.keys = append(h.keys, parts[0])
		}
	}
	h.fields[parts[0]] = setNested(top, parts[1:], v)
}

func setNested(m Value, parts []string, v Value) Value {
	key := parts[0]
	next, exists := m.Fields[key]
	if len(parts) == 1 {
		next = v
	} else {
		if !exists || next.Kind != KindMap {
			next = Value{Kind: KindMap, Fields: make(map[string]Value)}
			exists = false
		}
		next = setNested(next, parts[1:], v)
	}
	out := Value{Kind: KindMap, Keys: m.Keys, Fields: make(map[string]Value, len(m.Fields)+1)}
	for k, val := range m.Fields {
		out.Fields[k] = val
	}
	if !exists {
		out.Keys = append(append([]string(nil), m.Keys...), key)
	}
	out.Fields[key] = next
	return out
}

// Remove deletes a top-level field, reporting whether it existed.
func (h *Header) Remove(name string) bool {
	if _, ok := h.fields[name]; !ok {
		return false
	}
	delete(h.fields, name)
	for i, k := range h.keys {
		if k == name {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
	return true
}

func (h *Header) clone() *Header {
	out := &Header{
		keys:   append([]string(nil), h.keys...),
		fields: make(map[string]Value, len(h.fields)),
	}
	for k, v := range h.fields {
		out.fields[k] = v
	}
	return out
}

// marshal renders the header as YAML, fields in authored order.
func (h *Header) marshal() ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range h.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			valueToNode(h.fields[k]))
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	return buf.Bytes(), nil
}
