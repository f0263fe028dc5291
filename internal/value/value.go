// Package value defines the protocol-neutral response tree every protocol
// handler parses into, and the pointer-style path extractor that walks it.
//
// A tree is a plain Go value restricted to the shapes encoding/json produces
// when decoding into an interface{}:
//
//	nil, bool, float64, json.Number, string, []any, map[string]any
//
// Keeping that representation means the same tree can be handed to gojq
// without conversion.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the variants of a tree node.
type Kind int

const (
	// Invalid is returned for Go values outside the tree shapes.
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Sequence
	Mapping
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "invalid"
	}
}

// KindOf reports the kind of a tree node.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case float64, json.Number, int, int64:
		return Number
	case string:
		return String
	case []any:
		return Sequence
	case map[string]any:
		return Mapping
	default:
		return Invalid
	}
}

// IsScalar reports whether v is a leaf node.
func IsScalar(v any) bool {
	switch KindOf(v) {
	case Null, Bool, Number, String:
		return true
	}
	return false
}

// Float returns the numeric value of v. Strings holding a number are
// accepted because XML-derived trees carry every leaf as a string.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// ToString renders a node for display. Scalars render bare, numbers
// without trailing zeros; sequences and mappings render as compact JSON.
func ToString(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case bool:
		return strconv.FormatBool(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case json.Number:
		return n.String()
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// Decode parses a JSON document into a tree. Numbers decode as float64.
func Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
