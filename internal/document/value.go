// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindMap:
		return "mapping"
	}
	return "unknown"
}

// Value is a closed tagged variant for header field values. The kind is
// fixed when the header is decoded, so downstream checks are a static
// switch rather than runtime type inspection.
type Value struct {
	Kind  Kind
	Str   string
	Num   float64
	Bool  bool
	Items []Value
	// Keys preserves mapping order; Fields holds the entries.
	Keys   []string
	Fields map[string]Value
}

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number returns a number Value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Bool returns a bool Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Array returns an array Value.
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }

// Display renders the value as a plain string for output surfaces.
func (v Value) Display() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.Display()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, len(v.Keys))
		for i, k := range v.Keys {
			parts[i] = k + ": " + v.Fields[k].Display()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

// Interface converts the value into plain Go data for encoding with
// encoding/json or compatible encoders.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindArray:
		out := make([]interface{}, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.Keys))
		for _, k := range v.Keys {
			out[k] = v.Fields[k].Interface()
		}
		return out
	}
	return nil
}

// ParseScalar interprets a raw string the way a YAML scalar would be,
// trying bool and number before falling back to string. Bracketed input
// becomes an array of strings.
func ParseScalar(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null", "~":
		return Value{Kind: KindNull}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(f)
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
		if strings.TrimSpace(inner) == "" {
			return Array()
		}
		parts := strings.Split(inner, ",")
		items := make([]Value, len(parts))
		for i, p := range parts {
			items[i] = String(strings.TrimSpace(p))
		}
		return Array(items...)
	}
	return String(trimmed)
}

func valueFromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return Value{Kind: KindNull}, nil
		case "!!bool":
			b, err := strconv.ParseBool(n.Value)
			if err != nil {
				return Value{}, fmt.Errorf("line %d: invalid bool %q", n.Line, n.Value)
			}
			return Bool(b), nil
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return Value{}, fmt.Errorf("line %d: invalid number %q", n.Line, n.Value)
			}
			return Number(f), nil
		default:
			return String(n.Value), nil
		}
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := valueFromNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Value{Kind: KindArray, Items: items}, nil
	case yaml.MappingNode:
		v := Value{Kind: KindMap, Fields: make(map[string]Value, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if _, dup := v.Fields[key]; dup {
				return Value{}, fmt.Errorf("line %d: duplicate key %q", n.Content[i].Line, key)
			}
			child, err := valueFromNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			v.Keys = append(v.Keys, key)
			v.Fields[key] = child
		}
		return v, nil
	case yaml.AliasNode:
		return valueFromNode(n.Alias)
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func valueToNode(v Value) *yaml.Node {
	switch v.Kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case KindNumber:
		tag := "!!float"
		if v.Num == float64(int64(v.Num)) {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: strconv.FormatFloat(v.Num, 'f', -1, 64)}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range v.Items {
			n.Content = append(n.Content, valueToNode(item))
		}
		return n
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.Keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				valueToNode(v.Fields[k]))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
